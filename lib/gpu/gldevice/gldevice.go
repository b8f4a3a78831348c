// Package gldevice implements gpu.Device on top of go-gl's 3.3 core
// profile bindings.
package gldevice

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fosdem/trigl/lib/gpu"
	"github.com/fosdem/trigl/lib/log"
	"github.com/go-gl/gl/v3.3-core/gl"
)

const f32 = 4

type Device struct{}

// New resolves the GL entry points for the context that is current on the
// calling thread. The window must have been created first.
func New() (*Device, error) {
	err := gl.Init()
	if err != nil {
		return nil, &gpu.ContextInitError{Stage: "loader", Err: err}
	}

	d := &Device{}

	// some loaders leave INVALID_ENUM behind while probing extensions
	for _, e := range gpu.DrainErrors(d) {
		log.Module("gl").Debug("discarded error flag left by the loader", slog.String("error", e.String()))
	}

	return d, nil
}

func shaderType(kind gpu.ShaderKind) uint32 {
	switch kind {
	case gpu.VertexShader:
		return gl.VERTEX_SHADER
	case gpu.FragmentShader:
		return gl.FRAGMENT_SHADER
	default:
		panic(fmt.Sprintf("unknown shader kind %s", kind))
	}
}

func (d *Device) CreateShader(kind gpu.ShaderKind) uint32 {
	return gl.CreateShader(shaderType(kind))
}

func (d *Device) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source)
	size := int32(len(source))
	gl.ShaderSource(shader, 1, csources, &size)
	free()
}

func (d *Device) CompileShader(shader uint32) {
	gl.CompileShader(shader)
}

func (d *Device) ShaderCompiled(shader uint32) bool {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (d *Device) ShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}

	clog := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(clog))
	return strings.TrimRight(clog, "\x00")
}

func (d *Device) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (d *Device) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (d *Device) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (d *Device) DetachShader(program, shader uint32) {
	gl.DetachShader(program, shader)
}

func (d *Device) LinkProgram(program uint32) {
	gl.LinkProgram(program)
}

func (d *Device) ProgramLinked(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (d *Device) ProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}

	logmsg := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logmsg))
	return strings.TrimRight(logmsg, "\x00")
}

func (d *Device) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *Device) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (d *Device) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (d *Device) BindBuffer(buffer uint32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
}

func (d *Device) BufferData(data []float32, usage gpu.BufferUsage) {
	var glUsage uint32
	switch usage {
	case gpu.StaticDraw:
		glUsage = gl.STATIC_DRAW
	case gpu.DynamicDraw:
		glUsage = gl.DYNAMIC_DRAW
	default:
		panic(fmt.Sprintf("unknown buffer usage %d", usage))
	}

	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, glUsage)
		return
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*f32, gl.Ptr(data), glUsage)
}

func (d *Device) GetBufferSubData(offset int, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.GetBufferSubData(gl.ARRAY_BUFFER, offset, len(data)*f32, gl.Ptr(data))
}

func (d *Device) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

func (d *Device) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (d *Device) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (d *Device) EnableVertexAttribArray(slot uint32) {
	gl.EnableVertexAttribArray(slot)
}

func (d *Device) VertexAttribPointer(slot uint32, components, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(slot, components, gl.FLOAT, false, stride, uintptr(offset))
}

func (d *Device) DeleteVertexArray(vao uint32) {
	gl.DeleteVertexArrays(1, &vao)
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) ClearColorBuffer() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int32) {
	switch mode {
	case gpu.Triangles:
		gl.DrawArrays(gl.TRIANGLES, first, count)
	default:
		panic(fmt.Sprintf("unknown primitive %d", mode))
	}
}

func (d *Device) GetError() gpu.ErrorCode {
	return gpu.ErrorCode(gl.GetError())
}

func (d *Device) Renderer() string {
	return gl.GoStr(gl.GetString(gl.RENDERER))
}

func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *Device) ShadingLanguageVersion() string {
	return gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))
}

var _ gpu.Device = (*Device)(nil)

// Package gpu describes the slice of OpenGL the renderer needs as a Device
// interface, so the GL-facing code can be driven by go-gl on a real context
// or by the recording fake in gputest.
package gpu

import "fmt"

type ShaderKind uint32

const (
	VertexShader ShaderKind = iota + 1
	FragmentShader
)

func (k ShaderKind) String() string {
	switch k {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderKind(%d)", uint32(k))
	}
}

type Primitive uint32

const (
	Triangles Primitive = iota + 1
)

type BufferUsage uint32

const (
	StaticDraw BufferUsage = iota + 1
	DynamicDraw
)

// ErrorCode is a glGetError value; NoError (0) means the flag was clear.
type ErrorCode uint32

const NoError ErrorCode = 0

func (e ErrorCode) String() string {
	switch e {
	case NoError:
		return "NO_ERROR"
	case 0x0500:
		return "INVALID_ENUM"
	case 0x0501:
		return "INVALID_VALUE"
	case 0x0502:
		return "INVALID_OPERATION"
	case 0x0505:
		return "OUT_OF_MEMORY"
	case 0x0506:
		return "INVALID_FRAMEBUFFER_OPERATION"
	default:
		return fmt.Sprintf("0x%04x", uint32(e))
	}
}

// Device is the set of GL calls used by this program. All methods must be
// called from the thread that owns the context. Buffer operations act on
// the GL_ARRAY_BUFFER target.
type Device interface {
	CreateShader(kind ShaderKind) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	GenBuffer() uint32
	BindBuffer(buffer uint32)
	BufferData(data []float32, usage BufferUsage)
	GetBufferSubData(offset int, data []float32)
	DeleteBuffer(buffer uint32)

	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	EnableVertexAttribArray(slot uint32)
	VertexAttribPointer(slot uint32, components, stride int32, offset int)
	DeleteVertexArray(vao uint32)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	ClearColorBuffer()
	DrawArrays(mode Primitive, first, count int32)

	GetError() ErrorCode
	Renderer() string
	Version() string
	ShadingLanguageVersion() string
}

// DrainErrors pops every pending error flag.
func DrainErrors(dev Device) []ErrorCode {
	var errs []ErrorCode
	// GL records at most one flag per error kind; the bound guards broken drivers
	for i := 0; i < 16; i++ {
		e := dev.GetError()
		if e == NoError {
			break
		}
		errs = append(errs, e)
	}
	return errs
}

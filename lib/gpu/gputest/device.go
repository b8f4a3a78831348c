// Package gputest provides an in-memory gpu.Device that records what was
// asked of it. It compiles nothing, but it checks shader sources closely
// enough to reject obvious syntax errors and mismatched stage interfaces.
package gputest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fosdem/trigl/lib/gpu"
)

type Shader struct {
	Kind     gpu.ShaderKind
	Source   string
	Compiled bool
	Log      string
	Deleted  bool
}

type Program struct {
	Attached []uint32
	Linked   bool
	Log      string
	Deleted  bool
}

type Attrib struct {
	Buffer     uint32
	Components int32
	Stride     int32
	Offset     int
	Enabled    bool
}

type VertexArray struct {
	Attribs map[uint32]*Attrib
	Deleted bool
}

type DrawCall struct {
	Program     uint32
	VertexArray uint32
	Mode        gpu.Primitive
	First       int32
	Count       int32
	Viewport    [4]int32
	ClearColour [4]float32
}

// Device is a fake gpu.Device. Its exported fields may be inspected and
// tweaked by tests; it is not safe for concurrent use, like a GL context.
type Device struct {
	RendererName  string
	VersionString string
	GLSLString    string

	// CompileCheck decides whether a shader compiles; it returns the info
	// log to report. Defaults to CheckSyntax.
	CompileCheck func(kind gpu.ShaderKind, source string) (string, bool)
	// LinkCheck decides whether a program links. Defaults to
	// CheckInterface.
	LinkCheck func(stages map[gpu.ShaderKind]string) (string, bool)

	PendingErrors []gpu.ErrorCode

	Shaders      map[uint32]*Shader
	Programs     map[uint32]*Program
	Buffers      map[uint32][]float32
	VertexArrays map[uint32]*VertexArray

	BoundBuffer      uint32
	BoundVertexArray uint32
	CurrentProgram   uint32
	CurrentViewport  [4]int32
	ClearColour      [4]float32
	Clears           int
	Draws            []DrawCall

	// Deletes counts delete calls per object kind: "shader", "program",
	// "buffer" and "vertex_array".
	Deletes map[string]int
	// Misuse lists calls GL would have flagged with an error.
	Misuse []string
	Calls  []string

	nextID uint32
}

func New() *Device {
	return &Device{
		RendererName:  "gputest renderer",
		VersionString: "3.3 (Core Profile) gputest",
		GLSLString:    "3.30 gputest",
		CompileCheck:  CheckSyntax,
		LinkCheck:     CheckInterface,
		Shaders:       map[uint32]*Shader{},
		Programs:      map[uint32]*Program{},
		Buffers:       map[uint32][]float32{},
		VertexArrays:  map[uint32]*VertexArray{},
		Deletes:       map[string]int{},
	}
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) call(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *Device) misuse(format string, args ...any) {
	d.Misuse = append(d.Misuse, fmt.Sprintf(format, args...))
}

func (d *Device) shader(id uint32) *Shader {
	s, ok := d.Shaders[id]
	if !ok || s.Deleted {
		d.misuse("shader %d does not exist", id)
		return nil
	}
	return s
}

func (d *Device) program(id uint32) *Program {
	p, ok := d.Programs[id]
	if !ok || p.Deleted {
		d.misuse("program %d does not exist", id)
		return nil
	}
	return p
}

func (d *Device) CreateShader(kind gpu.ShaderKind) uint32 {
	id := d.id()
	d.Shaders[id] = &Shader{Kind: kind}
	d.call("CreateShader(%s) = %d", kind, id)
	return id
}

func (d *Device) ShaderSource(shader uint32, source string) {
	if s := d.shader(shader); s != nil {
		s.Source = source
	}
}

func (d *Device) CompileShader(shader uint32) {
	d.call("CompileShader(%d)", shader)
	s := d.shader(shader)
	if s == nil {
		return
	}
	s.Log, s.Compiled = d.CompileCheck(s.Kind, s.Source)
}

func (d *Device) ShaderCompiled(shader uint32) bool {
	if s := d.shader(shader); s != nil {
		return s.Compiled
	}
	return false
}

func (d *Device) ShaderInfoLog(shader uint32) string {
	if s := d.shader(shader); s != nil {
		return s.Log
	}
	return ""
}

func (d *Device) DeleteShader(shader uint32) {
	d.call("DeleteShader(%d)", shader)
	if s := d.shader(shader); s != nil {
		s.Deleted = true
		d.Deletes["shader"]++
	}
}

func (d *Device) CreateProgram() uint32 {
	id := d.id()
	d.Programs[id] = &Program{}
	d.call("CreateProgram() = %d", id)
	return id
}

func (d *Device) AttachShader(program, shader uint32) {
	d.call("AttachShader(%d, %d)", program, shader)
	p, s := d.program(program), d.shader(shader)
	if p == nil || s == nil {
		return
	}
	for _, a := range p.Attached {
		if a == shader {
			d.misuse("shader %d already attached to program %d", shader, program)
			return
		}
	}
	p.Attached = append(p.Attached, shader)
}

func (d *Device) DetachShader(program, shader uint32) {
	d.call("DetachShader(%d, %d)", program, shader)
	p := d.program(program)
	if p == nil {
		return
	}
	for i, a := range p.Attached {
		if a == shader {
			p.Attached = append(p.Attached[:i], p.Attached[i+1:]...)
			return
		}
	}
	d.misuse("shader %d is not attached to program %d", shader, program)
}

func (d *Device) LinkProgram(program uint32) {
	d.call("LinkProgram(%d)", program)
	p := d.program(program)
	if p == nil {
		return
	}

	stages := map[gpu.ShaderKind]string{}
	for _, id := range p.Attached {
		s := d.Shaders[id]
		if !s.Compiled {
			p.Linked, p.Log = false, fmt.Sprintf("error: %s shader %d is not compiled\n", s.Kind, id)
			return
		}
		if _, dup := stages[s.Kind]; dup {
			p.Linked, p.Log = false, fmt.Sprintf("error: more than one %s shader attached\n", s.Kind)
			return
		}
		stages[s.Kind] = s.Source
	}
	p.Log, p.Linked = d.LinkCheck(stages)
}

func (d *Device) ProgramLinked(program uint32) bool {
	if p := d.program(program); p != nil {
		return p.Linked
	}
	return false
}

func (d *Device) ProgramInfoLog(program uint32) string {
	if p := d.program(program); p != nil {
		return p.Log
	}
	return ""
}

func (d *Device) UseProgram(program uint32) {
	d.call("UseProgram(%d)", program)
	if program != 0 {
		p := d.program(program)
		if p == nil {
			return
		}
		if !p.Linked {
			d.misuse("program %d is not linked", program)
			return
		}
	}
	d.CurrentProgram = program
}

func (d *Device) DeleteProgram(program uint32) {
	d.call("DeleteProgram(%d)", program)
	if p := d.program(program); p != nil {
		p.Deleted = true
		d.Deletes["program"]++
		if d.CurrentProgram == program {
			d.CurrentProgram = 0
		}
	}
}

func (d *Device) GenBuffer() uint32 {
	id := d.id()
	d.Buffers[id] = nil
	d.call("GenBuffer() = %d", id)
	return id
}

func (d *Device) BindBuffer(buffer uint32) {
	d.call("BindBuffer(%d)", buffer)
	if _, ok := d.Buffers[buffer]; !ok && buffer != 0 {
		d.misuse("buffer %d does not exist", buffer)
		return
	}
	d.BoundBuffer = buffer
}

func (d *Device) BufferData(data []float32, usage gpu.BufferUsage) {
	d.call("BufferData(%d floats, %d)", len(data), usage)
	if d.BoundBuffer == 0 {
		d.misuse("BufferData with no buffer bound")
		return
	}
	d.Buffers[d.BoundBuffer] = append([]float32(nil), data...)
}

func (d *Device) GetBufferSubData(offset int, data []float32) {
	if d.BoundBuffer == 0 {
		d.misuse("GetBufferSubData with no buffer bound")
		return
	}
	stored := d.Buffers[d.BoundBuffer]
	if offset%4 != 0 || offset/4+len(data) > len(stored) {
		d.misuse("GetBufferSubData out of range")
		return
	}
	copy(data, stored[offset/4:])
}

func (d *Device) DeleteBuffer(buffer uint32) {
	d.call("DeleteBuffer(%d)", buffer)
	if _, ok := d.Buffers[buffer]; !ok {
		d.misuse("buffer %d does not exist", buffer)
		return
	}
	delete(d.Buffers, buffer)
	d.Deletes["buffer"]++
	if d.BoundBuffer == buffer {
		d.BoundBuffer = 0
	}
}

func (d *Device) GenVertexArray() uint32 {
	id := d.id()
	d.VertexArrays[id] = &VertexArray{Attribs: map[uint32]*Attrib{}}
	d.call("GenVertexArray() = %d", id)
	return id
}

func (d *Device) BindVertexArray(vao uint32) {
	d.call("BindVertexArray(%d)", vao)
	if vao != 0 {
		v, ok := d.VertexArrays[vao]
		if !ok || v.Deleted {
			d.misuse("vertex array %d does not exist", vao)
			return
		}
	}
	d.BoundVertexArray = vao
}

func (d *Device) boundAttrib(slot uint32) *Attrib {
	if d.BoundVertexArray == 0 {
		d.misuse("attribute %d set up with no vertex array bound", slot)
		return nil
	}
	v := d.VertexArrays[d.BoundVertexArray]
	a, ok := v.Attribs[slot]
	if !ok {
		a = &Attrib{}
		v.Attribs[slot] = a
	}
	return a
}

func (d *Device) EnableVertexAttribArray(slot uint32) {
	d.call("EnableVertexAttribArray(%d)", slot)
	if a := d.boundAttrib(slot); a != nil {
		a.Enabled = true
	}
}

func (d *Device) VertexAttribPointer(slot uint32, components, stride int32, offset int) {
	d.call("VertexAttribPointer(%d, %d, %d, %d)", slot, components, stride, offset)
	if d.BoundBuffer == 0 {
		d.misuse("VertexAttribPointer with no buffer bound")
		return
	}
	if a := d.boundAttrib(slot); a != nil {
		a.Buffer = d.BoundBuffer
		a.Components = components
		a.Stride = stride
		a.Offset = offset
	}
}

func (d *Device) DeleteVertexArray(vao uint32) {
	d.call("DeleteVertexArray(%d)", vao)
	v, ok := d.VertexArrays[vao]
	if !ok || v.Deleted {
		d.misuse("vertex array %d does not exist", vao)
		return
	}
	v.Deleted = true
	d.Deletes["vertex_array"]++
	if d.BoundVertexArray == vao {
		d.BoundVertexArray = 0
	}
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.call("Viewport(%d, %d, %d, %d)", x, y, width, height)
	d.CurrentViewport = [4]int32{x, y, width, height}
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.ClearColour = [4]float32{r, g, b, a}
}

func (d *Device) ClearColorBuffer() {
	d.call("ClearColorBuffer()")
	d.Clears++
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int32) {
	d.call("DrawArrays(%d, %d, %d)", mode, first, count)
	if d.CurrentProgram == 0 {
		d.misuse("draw with no program in use")
	}
	if d.BoundVertexArray == 0 {
		d.misuse("draw with no vertex array bound")
	}
	d.Draws = append(d.Draws, DrawCall{
		Program:     d.CurrentProgram,
		VertexArray: d.BoundVertexArray,
		Mode:        mode,
		First:       first,
		Count:       count,
		Viewport:    d.CurrentViewport,
		ClearColour: d.ClearColour,
	})
}

func (d *Device) GetError() gpu.ErrorCode {
	if len(d.PendingErrors) == 0 {
		return gpu.NoError
	}
	e := d.PendingErrors[0]
	d.PendingErrors = d.PendingErrors[1:]
	return e
}

func (d *Device) Renderer() string               { return d.RendererName }
func (d *Device) Version() string                { return d.VersionString }
func (d *Device) ShadingLanguageVersion() string { return d.GLSLString }

// LiveShaders counts shader objects that were created and not deleted.
func (d *Device) LiveShaders() int {
	n := 0
	for _, s := range d.Shaders {
		if !s.Deleted {
			n++
		}
	}
	return n
}

// LivePrograms counts program objects that were created and not deleted.
func (d *Device) LivePrograms() int {
	n := 0
	for _, p := range d.Programs {
		if !p.Deleted {
			n++
		}
	}
	return n
}

var _ gpu.Device = (*Device)(nil)

var (
	versionLine = regexp.MustCompile(`^#version\s+\d{3}(\s+core)?\s*$`)
	ioDecl      = regexp.MustCompile(`^(?:layout\s*\([^)]*\)\s*)?(in|out)\s+(\w+)\s+(\w+)\s*;$`)
)

// CheckSyntax is a coarse stand-in for a GLSL front end: a #version line
// first, balanced braces and parentheses, a main function, and statements
// terminated by semicolons.
func CheckSyntax(kind gpu.ShaderKind, source string) (string, bool) {
	lines := strings.Split(strings.TrimSpace(source), "\n")
	if !versionLine.MatchString(strings.TrimSpace(lines[0])) {
		return "0:1(1): error: #version directive required as the first line\n", false
	}

	depth, parens := 0, 0
	for i, line := range lines[1:] {
		n := i + 2
		for _, c := range line {
			switch c {
			case '{':
				depth++
			case '}':
				depth--
			case '(':
				parens++
			case ')':
				parens--
			}
			if depth < 0 || parens < 0 {
				return fmt.Sprintf("0:%d(1): error: syntax error, unexpected '%c'\n", n, c), false
			}
		}

		l := strings.TrimSpace(line)
		if l == "" || strings.HasPrefix(l, "//") || strings.HasSuffix(l, "{") || strings.HasSuffix(l, "}") {
			continue
		}
		if strings.HasPrefix(l, "void ") && strings.HasSuffix(l, ")") {
			continue
		}
		if !strings.HasSuffix(l, ";") {
			return fmt.Sprintf("0:%d(1): error: syntax error, unexpected end of statement, expecting ';'\n", n), false
		}
	}
	if depth != 0 || parens != 0 {
		return fmt.Sprintf("0:%d(1): error: syntax error, unexpected end of file\n", len(lines)), false
	}
	if !strings.Contains(source, "void main()") {
		return fmt.Sprintf("error: %s shader lacks `main'\n", kind), false
	}
	return "", true
}

// CheckInterface links a vertex and a fragment stage if every fragment
// input is written by the vertex stage with the same type.
func CheckInterface(stages map[gpu.ShaderKind]string) (string, bool) {
	vs, ok := stages[gpu.VertexShader]
	if !ok {
		return "error: program lacks a vertex shader\n", false
	}
	fs, ok := stages[gpu.FragmentShader]
	if !ok {
		return "error: program lacks a fragment shader\n", false
	}

	outputs := declarations(vs, "out")
	for name, typ := range declarations(fs, "in") {
		vt, ok := outputs[name]
		if !ok {
			return fmt.Sprintf("error: fragment shader input `%s' has no matching output in the previous stage\n", name), false
		}
		if vt != typ {
			return fmt.Sprintf("error: `%s' declared as type `%s' and type `%s'\n", name, vt, typ), false
		}
	}
	return "", true
}

func declarations(source, qualifier string) map[string]string {
	decls := map[string]string{}
	for _, line := range strings.Split(source, "\n") {
		m := ioDecl.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil && m[1] == qualifier {
			decls[m[3]] = m[2]
		}
	}
	return decls
}

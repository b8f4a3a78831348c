package shaders

import (
	"fmt"
	"log/slog"

	"github.com/fosdem/trigl/lib/gpu"
	"github.com/fosdem/trigl/lib/log"
	"github.com/fosdem/trigl/lib/metrics"
)

// CompiledStage is a shader object that compiled successfully and has not
// been linked yet.
type CompiledStage struct {
	Kind gpu.ShaderKind
	ID   uint32
}

// Program is a linked shader program. It owns no shader objects.
type Program struct {
	ID uint32
}

type CompileError struct {
	Kind gpu.ShaderKind
	// Log is the driver's info log, unmodified
	Log string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Kind, e.Log)
}

type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// Build renders both shader templates, compiles them and links the result.
func Build(dev gpu.Device, data *ShaderData) (Program, error) {
	shaderer, err := NewShaderer()
	if err != nil {
		return Program{}, fmt.Errorf("could not get shaders: %w", err)
	}

	vertexSource, err := shaderer.GetShaderSource(VertexShaderName, data)
	if err != nil {
		return Program{}, fmt.Errorf("could not get vertex shader: %w", err)
	}

	fragmentSource, err := shaderer.GetShaderSource(FragmentShaderName, data)
	if err != nil {
		return Program{}, fmt.Errorf("could not get fragment shader: %w", err)
	}

	return NewProgram(dev, vertexSource, fragmentSource)
}

// NewProgram compiles and links one vertex and one fragment source. On
// error nothing created along the way is left alive.
func NewProgram(dev gpu.Device, vertexSource, fragmentSource string) (Program, error) {
	vertex, err := Compile(dev, gpu.VertexShader, vertexSource)
	if err != nil {
		return Program{}, err
	}

	fragment, err := Compile(dev, gpu.FragmentShader, fragmentSource)
	if err != nil {
		dev.DeleteShader(vertex.ID)
		return Program{}, err
	}

	program, err := Link(dev, vertex, fragment)
	if err != nil {
		return Program{}, err
	}

	log.Module("shaders").Debug("linked program", slog.Uint64("id", uint64(program.ID)))
	return program, nil
}

func Compile(dev gpu.Device, kind gpu.ShaderKind, source string) (CompiledStage, error) {
	shader := dev.CreateShader(kind)

	dev.ShaderSource(shader, source)
	dev.CompileShader(shader)

	if !dev.ShaderCompiled(shader) {
		clog := dev.ShaderInfoLog(shader)
		dev.DeleteShader(shader)
		return CompiledStage{}, &CompileError{Kind: kind, Log: clog}
	}

	return CompiledStage{Kind: kind, ID: shader}, nil
}

// Link consumes both stages: they are released whether linking succeeds
// or not.
func Link(dev gpu.Device, vertex, fragment CompiledStage) (Program, error) {
	if vertex.Kind != gpu.VertexShader || fragment.Kind != gpu.FragmentShader {
		dev.DeleteShader(vertex.ID)
		dev.DeleteShader(fragment.ID)
		return Program{}, &LinkError{
			Log: fmt.Sprintf("expected a vertex and a fragment stage, got %s and %s", vertex.Kind, fragment.Kind),
		}
	}

	program := dev.CreateProgram()

	dev.AttachShader(program, vertex.ID)
	dev.AttachShader(program, fragment.ID)
	dev.LinkProgram(program)

	linked := dev.ProgramLinked(program)
	var logmsg string
	if !linked {
		logmsg = dev.ProgramInfoLog(program)
	}

	dev.DetachShader(program, vertex.ID)
	dev.DetachShader(program, fragment.ID)
	dev.DeleteShader(vertex.ID)
	dev.DeleteShader(fragment.ID)

	if !linked {
		dev.DeleteProgram(program)
		return Program{}, &LinkError{Log: logmsg}
	}

	metrics.GLObjects.WithLabelValues("program", "create").Inc()
	return Program{ID: program}, nil
}

// Release deletes the program. It must not be in use by a later draw.
func (p *Program) Release(dev gpu.Device) {
	if p.ID == 0 {
		return
	}
	dev.DeleteProgram(p.ID)
	metrics.GLObjects.WithLabelValues("program", "delete").Inc()
	p.ID = 0
}

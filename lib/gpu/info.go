package gpu

import (
	"fmt"
	"io"
)

type DriverInfo struct {
	Renderer    string
	Version     string
	GLSLVersion string
}

func QueryDriverInfo(dev Device) DriverInfo {
	return DriverInfo{
		Renderer:    dev.Renderer(),
		Version:     dev.Version(),
		GLSLVersion: dev.ShadingLanguageVersion(),
	}
}

// Print writes the three human-readable driver lines.
func (d DriverInfo) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Renderer: %s\nOpenGL:   %s\nGLSL:     %s\n", d.Renderer, d.Version, d.GLSLVersion)
	return err
}

// ContextInitError is returned when no usable GL context could be made,
// either by the windowing layer or by the entry-point loader.
type ContextInitError struct {
	Stage string
	Err   error
}

func (e *ContextInitError) Error() string {
	return fmt.Sprintf("could not initialise OpenGL context (%s): %s", e.Stage, e.Err)
}

func (e *ContextInitError) Unwrap() error {
	return e.Err
}

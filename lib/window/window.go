// Package window creates the GLFW window and the core-profile GL context
// the rest of the program draws into.
package window

import (
	"fmt"
	"log/slog"

	"github.com/fosdem/trigl/lib/config"
	"github.com/fosdem/trigl/lib/eventloop"
	"github.com/fosdem/trigl/lib/gpu"
	"github.com/fosdem/trigl/lib/log"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type Window struct {
	*glfw.Window
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// New initialises GLFW, opens the window and makes its context current on
// the calling thread, which must be locked to its OS thread.
func New(cfg *config.WindowCfg, ctx *config.ContextCfg) (*Window, error) {
	logger := log.Module("window")
	logger.Debug("initializing window", slog.String("context", ctx.String()))

	if err := glfw.Init(); err != nil {
		return nil, &gpu.ContextInitError{Stage: "glfw", Err: err}
	}

	glfw.WindowHint(glfw.Resizable, glfwBool(cfg.Resizable))
	glfw.WindowHint(glfw.ContextVersionMajor, ctx.Major)
	glfw.WindowHint(glfw.ContextVersionMinor, ctx.Minor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfwBool(ctx.ForwardCompatible))
	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, &gpu.ContextInitError{Stage: "window", Err: fmt.Errorf("no %s context: %w", ctx, err)}
	}

	win.MakeContextCurrent()
	glfw.SwapInterval(cfg.SwapInterval)

	return &Window{Window: win}, nil
}

func (w *Window) FramebufferSize() (int, int) {
	return w.GetFramebufferSize()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Destroy closes the window and shuts GLFW down. The context is gone
// afterwards, so GL objects must be released before.
func (w *Window) Destroy() {
	w.Window.Destroy()
	glfw.Terminate()
}

var _ eventloop.Surface = (*Window)(nil)

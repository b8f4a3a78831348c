// Package eventloop drives a FrameHandler from a window surface: one
// thread, continuous redraw, callbacks dispatched to completion between
// frames.
package eventloop

type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
)

// KeyEvent is either a key press (Key set) or a typed character (Char set).
type KeyEvent struct {
	Key  Key
	Char rune
}

type FrameHandler interface {
	// OnFrame draws one frame into the back buffer.
	OnFrame()
	// OnResize records the framebuffer size for the next frame.
	OnResize(width, height int)
	OnKey(ev KeyEvent)
	// Stop asks the handler to finish; the loop exits after the current frame.
	Stop()
	Stopped() bool
}

// Surface is the window side of the loop.
type Surface interface {
	FramebufferSize() (width, height int)
	SwapBuffers()
	// PollEvents dispatches pending window events to their callbacks
	// without blocking.
	PollEvents()
	ShouldClose() bool
}

// Run draws frames until the handler stops or the surface is closed. It
// returns the number of frames drawn.
func Run(s Surface, h FrameHandler) int {
	h.OnResize(s.FramebufferSize())

	frames := 0
	for !h.Stopped() {
		h.OnFrame()
		s.SwapBuffers()
		frames++

		s.PollEvents()
		if s.ShouldClose() {
			h.Stop()
		}
	}
	return frames
}

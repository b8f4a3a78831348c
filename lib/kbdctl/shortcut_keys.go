package kbdctl

import (
	"github.com/fosdem/trigl/lib/eventloop"
	"github.com/fosdem/trigl/lib/window"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// SetupShortcutKeys routes the window's key, character and framebuffer
// size events to h. The callbacks run inside PollEvents on the loop thread.
func SetupShortcutKeys(win *window.Window, h eventloop.FrameHandler) {
	win.SetKeyCallback(keyCallback(h))
	win.SetCharCallback(charCallback(h))
	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		h.OnResize(width, height)
	})
}

// TranslateKey maps a GLFW key to the keys the handlers care about.
func TranslateKey(key glfw.Key) eventloop.Key {
	switch key {
	case glfw.KeyEscape:
		return eventloop.KeyEscape
	default:
		return eventloop.KeyUnknown
	}
}

func keyCallback(h eventloop.FrameHandler) glfw.KeyCallback {
	return func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if k := TranslateKey(key); k != eventloop.KeyUnknown {
			h.OnKey(eventloop.KeyEvent{Key: k})
		}
	}
}

func charCallback(h eventloop.FrameHandler) glfw.CharCallback {
	return func(w *glfw.Window, char rune) {
		h.OnKey(eventloop.KeyEvent{Char: char})
	}
}

package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/fosdem/trigl/lib/config"
	"github.com/fosdem/trigl/lib/eventloop"
	"github.com/fosdem/trigl/lib/gpu"
	"github.com/fosdem/trigl/lib/gpu/gputest"
	"github.com/fosdem/trigl/lib/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quitSurface presses 'q' during the given poll.
type quitSurface struct {
	handler  eventloop.FrameHandler
	quitPoll int
	polls    int
	swaps    int
}

func (s *quitSurface) FramebufferSize() (int, int) { return 640, 480 }
func (s *quitSurface) SwapBuffers()                { s.swaps++ }
func (s *quitSurface) ShouldClose() bool           { return false }

func (s *quitSurface) PollEvents() {
	s.polls++
	if s.polls == s.quitPoll {
		s.handler.OnKey(eventloop.KeyEvent{Char: 'q'})
	}
}

func (s *quitSurface) attach(h eventloop.FrameHandler) {
	s.handler = h
}

// captureLogs sends the default logger to a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(log.NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg
}

func TestQuitExitsZero(t *testing.T) {
	logs := captureLogs(t)
	dev := gputest.New()
	surface := &quitSurface{quitPoll: 3}
	var stdout bytes.Buffer

	code := render(defaultConfig(t), dev, surface, &stdout, surface.attach)

	assert.Equal(t, 0, code)
	assert.Equal(t, []string{
		"Renderer: " + dev.RendererName,
		"OpenGL:   " + dev.VersionString,
		"GLSL:     " + dev.GLSLString,
	}, strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n"))

	assert.Equal(t, 3, surface.swaps)
	assert.Len(t, dev.Draws, 3)
	assert.Equal(t, [4]int32{0, 0, 640, 480}, dev.Draws[0].Viewport)

	assert.Equal(t, 1, dev.Deletes["program"])
	assert.Equal(t, 1, dev.Deletes["buffer"])
	assert.Equal(t, 1, dev.Deletes["vertex_array"])
	assert.Zero(t, dev.LivePrograms())
	assert.Empty(t, dev.Misuse)

	assert.Contains(t, logs.String(), "drew 3 frames")
	assert.Contains(t, logs.String(), "released 3 of 3 GL objects")
}

func TestShaderFailureExitsOne(t *testing.T) {
	const driverLog = "0:7(2): error: syntax error, unexpected '}'"

	tests := map[string]struct {
		breakDevice func(dev *gputest.Device)
		wantLog     []string
	}{
		"compile": {
			breakDevice: func(dev *gputest.Device) {
				dev.CompileCheck = func(gpu.ShaderKind, string) (string, bool) { return driverLog, false }
			},
			wantLog: []string{"shader compile error (vertex)", driverLog},
		},
		"link": {
			breakDevice: func(dev *gputest.Device) {
				dev.LinkCheck = func(map[gpu.ShaderKind]string) (string, bool) { return driverLog, false }
			},
			wantLog: []string{"program link error", driverLog},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			logs := captureLogs(t)
			dev := gputest.New()
			tt.breakDevice(dev)
			surface := &quitSurface{quitPoll: 1}
			attached := false
			var stdout bytes.Buffer

			code := render(defaultConfig(t), dev, surface, &stdout, func(h eventloop.FrameHandler) {
				attached = true
				surface.attach(h)
			})

			assert.Equal(t, 1, code)
			for _, want := range tt.wantLog {
				assert.Contains(t, logs.String(), want)
			}
			assert.Equal(t, 3, strings.Count(stdout.String(), "\n"), "driver info is printed before the program is built")
			assert.False(t, attached)
			assert.Empty(t, dev.Draws)
			assert.Zero(t, dev.LiveShaders())
			assert.Zero(t, dev.LivePrograms())
			assert.Empty(t, dev.Buffers)
		})
	}
}

package rendering

import (
	"fmt"
	"testing"

	"github.com/fosdem/trigl/lib/eventloop"
	"github.com/fosdem/trigl/lib/gpu"
	"github.com/fosdem/trigl/lib/gpu/gputest"
	"github.com/fosdem/trigl/lib/metrics"
	"github.com/fosdem/trigl/lib/rendering/shaders"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var background = mgl32.Vec4{0.08, 0.09, 0.10, 1.0}

func newTestRenderer(t *testing.T, opts RenderOptions) (*Renderer, *gputest.Device) {
	t.Helper()
	dev := gputest.New()

	program, err := shaders.Build(dev, &shaders.ShaderData{GLSLVersion: 330})
	require.NoError(t, err)
	geometry := Upload(dev, Triangle)

	return NewRenderer(dev, program, geometry, opts), dev
}

func TestOnFrameDrawsTriangle(t *testing.T) {
	r, dev := newTestRenderer(t, RenderOptions{ClearColour: background})
	r.OnResize(800, 600)

	framesBefore := testutil.ToFloat64(metrics.FramesDrawn)
	dev.Calls = nil
	r.OnFrame()

	require.Len(t, dev.Draws, 1)
	draw := dev.Draws[0]
	assert.Equal(t, r.program.ID, draw.Program)
	assert.Equal(t, r.geometry.VertexArray, draw.VertexArray)
	assert.Equal(t, gpu.Triangles, draw.Mode)
	assert.Equal(t, int32(0), draw.First)
	assert.Equal(t, int32(3), draw.Count)
	assert.Equal(t, [4]int32{0, 0, 800, 600}, draw.Viewport)
	assert.Equal(t, [4]float32(background), draw.ClearColour)
	assert.Equal(t, 1, dev.Clears)

	assert.Equal(t, []string{
		"Viewport(0, 0, 800, 600)",
		"ClearColorBuffer()",
		fmt.Sprintf("UseProgram(%d)", r.program.ID),
		fmt.Sprintf("BindVertexArray(%d)", r.geometry.VertexArray),
		"DrawArrays(1, 0, 3)",
		"BindVertexArray(0)",
		"UseProgram(0)",
	}, dev.Calls)
	assert.Zero(t, dev.CurrentProgram)
	assert.Zero(t, dev.BoundVertexArray)
	assert.Empty(t, dev.Misuse)
	assert.Equal(t, framesBefore+1, testutil.ToFloat64(metrics.FramesDrawn))
	assert.Equal(t, uint64(1), r.Stats().Frames)
}

func TestResizeAppliesToNextFrame(t *testing.T) {
	r, dev := newTestRenderer(t, RenderOptions{ClearColour: background})

	sizes := [][2]int{{800, 600}, {1024, 768}, {1, 1}, {3840, 2160}}
	for _, s := range sizes {
		r.OnResize(s[0], s[1])
		assert.Len(t, dev.Draws, 0, "resize must not draw by itself")
	}

	r.OnFrame()
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, [4]int32{0, 0, 3840, 2160}, dev.Draws[0].Viewport)

	for i, s := range sizes {
		r.OnResize(s[0], s[1])
		r.OnFrame()
		assert.Equal(t, [4]int32{0, 0, int32(s[0]), int32(s[1])}, dev.Draws[i+1].Viewport)
	}
}

func TestQuitKeys(t *testing.T) {
	tests := map[string]struct {
		ev   eventloop.KeyEvent
		quit bool
	}{
		"escape":      {eventloop.KeyEvent{Key: eventloop.KeyEscape}, true},
		"q":           {eventloop.KeyEvent{Char: 'q'}, true},
		"capital Q":   {eventloop.KeyEvent{Char: 'Q'}, false},
		"other char":  {eventloop.KeyEvent{Char: 'x'}, false},
		"unknown key": {eventloop.KeyEvent{Key: eventloop.KeyUnknown}, false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r, _ := newTestRenderer(t, RenderOptions{})
			require.Equal(t, Running, r.State())

			r.OnKey(tt.ev)

			assert.Equal(t, tt.quit, r.Stopped())
			if tt.quit {
				assert.Equal(t, Stopped, r.State())
			}
		})
	}
}

func TestStoppedRendererDoesNotDraw(t *testing.T) {
	r, dev := newTestRenderer(t, RenderOptions{})
	r.OnKey(eventloop.KeyEvent{Key: eventloop.KeyEscape})

	r.OnFrame()
	assert.Empty(t, dev.Draws)
}

func TestCheckErrors(t *testing.T) {
	r, dev := newTestRenderer(t, RenderOptions{CheckErrors: true})
	before := testutil.ToFloat64(metrics.GLErrors.WithLabelValues("INVALID_OPERATION"))

	dev.PendingErrors = []gpu.ErrorCode{0x0502}
	r.OnFrame()

	assert.Empty(t, dev.PendingErrors)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.GLErrors.WithLabelValues("INVALID_OPERATION")))
}

func TestUncheckedErrorsAreLeftAlone(t *testing.T) {
	r, dev := newTestRenderer(t, RenderOptions{})

	dev.PendingErrors = []gpu.ErrorCode{0x0502}
	r.OnFrame()

	assert.Len(t, dev.PendingErrors, 1)
	assert.False(t, r.Stopped())
}

func TestReleaseOrderAndOnce(t *testing.T) {
	r, dev := newTestRenderer(t, RenderOptions{})
	program, vao, buffer := r.program.ID, r.geometry.VertexArray, r.geometry.Buffer

	dev.Calls = nil
	r.Release()
	r.Release()

	assert.Equal(t, []string{
		fmt.Sprintf("DeleteVertexArray(%d)", vao),
		fmt.Sprintf("DeleteBuffer(%d)", buffer),
		fmt.Sprintf("DeleteProgram(%d)", program),
	}, dev.Calls)
	assert.Equal(t, 1, dev.Deletes["program"])
	assert.Equal(t, 1, dev.Deletes["buffer"])
	assert.Equal(t, 1, dev.Deletes["vertex_array"])
	assert.Empty(t, dev.Misuse)
	assert.True(t, r.Stopped())
}

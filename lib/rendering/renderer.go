package rendering

import (
	"log/slog"

	"github.com/fosdem/trigl/lib/eventloop"
	"github.com/fosdem/trigl/lib/gpu"
	"github.com/fosdem/trigl/lib/log"
	"github.com/fosdem/trigl/lib/metrics"
	"github.com/fosdem/trigl/lib/rendering/shaders"
	"github.com/fosdem/trigl/lib/stats"
	"github.com/fosdem/trigl/lib/utils"
	"github.com/go-gl/mathgl/mgl32"
)

type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type RenderOptions struct {
	ClearColour mgl32.Vec4
	// CheckErrors drains the GL error flag after every frame
	CheckErrors bool
}

// Renderer owns the program and the geometry and draws them every frame.
// It implements eventloop.FrameHandler.
type Renderer struct {
	dev      gpu.Device
	program  shaders.Program
	geometry *Geometry
	opts     RenderOptions

	state         State
	width, height int32

	deltaTimer utils.DeltaTimer
	stats      *stats.Stats
	logger     *slog.Logger
}

func NewRenderer(dev gpu.Device, program shaders.Program, geometry *Geometry, opts RenderOptions) *Renderer {
	return &Renderer{
		dev:      dev,
		program:  program,
		geometry: geometry,
		opts:     opts,
		state:    Running,
		stats:    stats.New(),
		logger:   log.Module("renderer"),
	}
}

func (r *Renderer) OnFrame() {
	if r.state != Running {
		return
	}

	dt := r.deltaTimer.Next()
	if dt > 0 {
		metrics.FrameSeconds.Observe(dt.Seconds())
	}

	c := r.opts.ClearColour
	r.dev.Viewport(0, 0, r.width, r.height)
	r.dev.ClearColor(c[0], c[1], c[2], c[3])
	r.dev.ClearColorBuffer()

	r.dev.UseProgram(r.program.ID)
	r.dev.BindVertexArray(r.geometry.VertexArray)
	r.dev.DrawArrays(gpu.Triangles, 0, r.geometry.Count)
	r.dev.BindVertexArray(0)
	r.dev.UseProgram(0)

	metrics.FramesDrawn.Inc()
	if r.stats.Update() {
		r.logger.Debug("frame rate", slog.Uint64("fps", r.stats.FPS))
	}

	if r.opts.CheckErrors {
		for _, e := range gpu.DrainErrors(r.dev) {
			metrics.GLErrors.WithLabelValues(e.String()).Inc()
			r.logger.Warn("GL error while drawing", slog.String("error", e.String()))
		}
	}
}

func (r *Renderer) OnResize(width, height int) {
	r.width = int32(width)
	r.height = int32(height)
	metrics.Resizes.Inc()
	r.logger.Debug("framebuffer resized", slog.Int("width", width), slog.Int("height", height))
}

func (r *Renderer) OnKey(ev eventloop.KeyEvent) {
	if ev.Key == eventloop.KeyEscape || ev.Char == 'q' {
		r.logger.Info("told to quit, exiting")
		r.Stop()
	}
}

func (r *Renderer) Stop() {
	r.state = Stopped
}

func (r *Renderer) Stopped() bool {
	return r.state == Stopped
}

func (r *Renderer) State() State {
	return r.state
}

func (r *Renderer) Stats() *stats.Stats {
	return r.stats
}

// Viewport returns the size the next frame will be drawn at.
func (r *Renderer) Viewport() (width, height int32) {
	return r.width, r.height
}

// Release frees the geometry and then the program, in reverse order of
// creation. It is safe to call more than once.
func (r *Renderer) Release() {
	r.state = Stopped
	r.geometry.Release(r.dev)
	r.program.Release(r.dev)
}

var _ eventloop.FrameHandler = (*Renderer)(nil)

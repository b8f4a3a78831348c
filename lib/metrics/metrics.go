package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesDrawn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trigl_frames_drawn_total",
		Help: "Total number of frames drawn",
	})
	Resizes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trigl_resizes_total",
		Help: "Total number of framebuffer resize notifications",
	})
	GLObjects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trigl_gl_objects_total",
		Help: "Total number of GL objects created and deleted, by kind",
	}, []string{"kind", "op"})
	GLErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trigl_gl_errors_total",
		Help: "Total number of GL error flags seen while rendering",
	}, []string{"error"})
	FrameSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trigl_frame_seconds",
		Help:    "Time between consecutive frames",
		Buckets: []float64{1.0 / 240, 1.0 / 144, 1.0 / 120, 1.0 / 60, 1.0 / 30, 1.0 / 15, 0.25, 1},
	})
)

// Summary is a snapshot of the process totals, logged at shutdown.
type Summary struct {
	Frames  uint64
	Resizes uint64
	Created uint64
	Deleted uint64
}

func Snapshot() (Summary, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := uint64(m.GetCounter().GetValue())
			switch mf.GetName() {
			case "trigl_frames_drawn_total":
				s.Frames += v
			case "trigl_resizes_total":
				s.Resizes += v
			case "trigl_gl_objects_total":
				for _, l := range m.GetLabel() {
					if l.GetName() != "op" {
						continue
					}
					if l.GetValue() == "create" {
						s.Created += v
					} else {
						s.Deleted += v
					}
				}
			}
		}
	}
	return s, nil
}

// Since returns the counts accumulated between earlier and s.
func (s Summary) Since(earlier Summary) Summary {
	return Summary{
		Frames:  s.Frames - earlier.Frames,
		Resizes: s.Resizes - earlier.Resizes,
		Created: s.Created - earlier.Created,
		Deleted: s.Deleted - earlier.Deleted,
	}
}

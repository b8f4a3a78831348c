package stats

import (
	"time"
)

// Stats keeps a frames-per-second figure that is refreshed once a second.
type Stats struct {
	FPS    uint64
	Uptime time.Duration
	Frames uint64

	frameCounter uint64
	frameTimer   time.Time
	start        time.Time

	// Clock replaces time.Now when set
	Clock func() time.Time
}

func New() *Stats {
	return &Stats{}
}

func (s *Stats) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Update counts one frame. It reports whether FPS was refreshed. Uptime is
// measured from the first call.
func (s *Stats) Update() bool {
	now := s.now()
	if s.start.IsZero() {
		s.start = now
		s.frameTimer = now
	}
	s.Frames++
	s.frameCounter++
	s.Uptime = now.Sub(s.start)

	if now.Sub(s.frameTimer) < time.Second {
		return false
	}
	s.FPS = s.frameCounter
	s.frameCounter = 0
	s.frameTimer = now
	return true
}

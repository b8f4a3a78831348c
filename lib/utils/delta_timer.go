package utils

import "time"

// DeltaTimer measures the time between consecutive calls to Next.
type DeltaTimer struct {
	last time.Time

	// Clock replaces time.Now when set
	Clock func() time.Time
}

func (d *DeltaTimer) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

// Next returns the time since the previous call, or 0 on the first call.
func (d *DeltaTimer) Next() time.Duration {
	// acquire timestamp exactly once to ensure we're not accumulating error
	now := d.now()

	defer func() { d.last = now }()
	if d.last.IsZero() {
		return 0
	}
	return now.Sub(d.last)
}

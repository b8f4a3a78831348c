package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	before, err := Snapshot()
	require.NoError(t, err)

	FramesDrawn.Add(3)
	Resizes.Inc()
	GLObjects.WithLabelValues("buffer", "create").Inc()
	GLObjects.WithLabelValues("buffer", "delete").Inc()
	GLObjects.WithLabelValues("program", "create").Inc()

	after, err := Snapshot()
	require.NoError(t, err)

	assert.Equal(t, uint64(3), after.Frames-before.Frames)
	assert.Equal(t, uint64(1), after.Resizes-before.Resizes)
	assert.Equal(t, uint64(2), after.Created-before.Created)
	assert.Equal(t, uint64(1), after.Deleted-before.Deleted)
}

func TestCountersAreRegistered(t *testing.T) {
	before := testutil.ToFloat64(GLErrors.WithLabelValues("INVALID_ENUM"))
	GLErrors.WithLabelValues("INVALID_ENUM").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(GLErrors.WithLabelValues("INVALID_ENUM")))

	FrameSeconds.Observe(1.0 / 60)
	assert.Equal(t, 1, testutil.CollectAndCount(FrameSeconds))
}

func TestSince(t *testing.T) {
	before := Summary{Frames: 10, Resizes: 1, Created: 3, Deleted: 0}
	after := Summary{Frames: 70, Resizes: 2, Created: 6, Deleted: 3}

	assert.Equal(t, Summary{Frames: 60, Resizes: 1, Created: 3, Deleted: 3}, after.Since(before))
}

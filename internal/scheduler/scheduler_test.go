package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	runs     int32
	canceled int32
}

func (c *countingSweeper) IngestAll(ctx context.Context) int {
	atomic.AddInt32(&c.runs, 1)
	if ctx.Err() != nil {
		atomic.AddInt32(&c.canceled, 1)
	}
	return 1
}

func TestScheduler_DisabledWhenIntervalZero(t *testing.T) {
	sw := &countingSweeper{}
	s := New(0, sw)
	assert.False(t, s.Enabled())
	require.NoError(t, s.Start())
	s.Stop()
	assert.Equal(t, int32(0), atomic.LoadInt32(&sw.runs))
}

func TestScheduler_RunsPeriodically(t *testing.T) {
	sw := &countingSweeper{}
	s := New(100*time.Millisecond, sw)
	require.True(t, s.Enabled())
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&sw.runs) >= 2
	}, 3*time.Second, 20*time.Millisecond)
}

func TestScheduler_RunOnceAfterStopSeesCanceledContext(t *testing.T) {
	sw := &countingSweeper{}
	s := New(time.Hour, sw)
	s.RunOnce()
	s.Stop()
	s.RunOnce()

	assert.Equal(t, int32(2), atomic.LoadInt32(&sw.runs))
	assert.Equal(t, int32(1), atomic.LoadInt32(&sw.canceled))
}

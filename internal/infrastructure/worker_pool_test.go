package infrastructure

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRunsTasks(t *testing.T) {
	pool := NewWorkerPool(3, 10, time.Second, nil)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.True(t, pool.Submit(func(ctx context.Context) { ran.Add(1) }))
	}
	require.NoError(t, pool.Shutdown(context.Background()))
	assert.EqualValues(t, 10, ran.Load())
}

func TestWorkerPoolDropsWhenFull(t *testing.T) {
	metrics := NewMetricsCollector()
	pool := NewWorkerPool(1, 1, time.Second, metrics)

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, pool.Submit(func(ctx context.Context) {
		close(started)
		<-release
	}))
	<-started
	require.True(t, pool.Submit(func(ctx context.Context) {}))

	assert.False(t, pool.Submit(func(ctx context.Context) {}))

	close(release)
	require.NoError(t, pool.Shutdown(context.Background()))
	assert.False(t, pool.Submit(func(ctx context.Context) {}))
}

func TestWorkerPoolTaskTimeout(t *testing.T) {
	pool := NewWorkerPool(1, 1, 20*time.Millisecond, nil)

	errCh := make(chan error, 1)
	pool.Submit(func(ctx context.Context) {
		<-ctx.Done()
		errCh <- ctx.Err()
	})

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("task context never expired")
	}
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestWorkerPoolSurvivesPanic(t *testing.T) {
	pool := NewWorkerPool(1, 2, time.Second, nil)

	var ran atomic.Bool
	pool.Submit(func(ctx context.Context) { panic("boom") })
	pool.Submit(func(ctx context.Context) { ran.Store(true) })

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.True(t, ran.Load())
}

package gate_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/repoanalyzer/internal/gate"
)

func TestSemaphore_BoundsConcurrency(t *testing.T) {
	g := gate.New(2)

	var inFlight, peak atomic.Int32
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := gate.Do(context.Background(), g, func() error {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, int32(0), inFlight.Load())
}

func TestSemaphore_ZeroCapacityBlocksUntilContextDone(t *testing.T) {
	g := gate.New(0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_ReleasesOnError(t *testing.T) {
	g := gate.New(1)
	boom := errors.New("boom")

	err := gate.Do(context.Background(), g, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	// The slot must be free again.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.Acquire(ctx))
	g.Release()
}

func TestDo_ReleasesOnPanic(t *testing.T) {
	g := gate.New(1)

	assert.Panics(t, func() {
		_ = gate.Do(context.Background(), g, func() error { panic("boom") })
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.Acquire(ctx))
	g.Release()
}

func TestUnbounded(t *testing.T) {
	g := gate.Unbounded()
	require.NoError(t, g.Acquire(context.Background()))
	g.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.Acquire(ctx), context.Canceled)
}

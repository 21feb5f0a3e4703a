// Package gate provides bounded concurrency gates shared by callers of an
// external provider.
package gate

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate limits the number of simultaneous in-flight calls. Every successful
// Acquire must be paired with exactly one Release.
type Gate interface {
	Acquire(ctx context.Context) error
	Release()
}

// Semaphore is a Gate backed by a weighted semaphore. Waiters are served in
// FIFO order.
type Semaphore struct {
	sem  *semaphore.Weighted
	size int64
}

// New creates a Semaphore allowing size concurrent holders. A size of zero
// yields a gate that never admits a caller; Acquire blocks until ctx is done.
func New(size int64) *Semaphore {
	if size < 0 {
		size = 0
	}
	return &Semaphore{
		sem:  semaphore.NewWeighted(size),
		size: size,
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	return s.sem.Acquire(ctx, 1)
}

// Release frees a slot.
func (s *Semaphore) Release() {
	s.sem.Release(1)
}

// Size returns the configured capacity.
func (s *Semaphore) Size() int64 {
	return s.size
}

type unbounded struct{}

// Unbounded returns a Gate that admits every caller immediately.
func Unbounded() Gate {
	return unbounded{}
}

func (unbounded) Acquire(ctx context.Context) error { return ctx.Err() }
func (unbounded) Release()                          {}

// Do runs fn while holding a slot of g. The slot is released on every exit
// path, including a panic in fn.
func Do(ctx context.Context, g Gate, fn func() error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

var (
	// ErrPoolClosed is returned by Run after Shutdown.
	ErrPoolClosed = errors.New("worker pool is shut down")
	// ErrShutdownTimeout is returned by Shutdown when tasks outlive the grace period.
	ErrShutdownTimeout = errors.New("worker pool shutdown timed out")
	// ErrInvalidPoolSize is returned for a negative size.
	ErrInvalidPoolSize = errors.New("invalid worker pool size")
)

// MinPoolSize is the smallest pool NewPool creates.
const MinPoolSize = 2

// Pool bounds how many crawl tasks run at once. It is created once by the
// caller and shut down explicitly.
type Pool struct {
	size   int
	sem    chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool returns a pool of the given size. Zero means runtime.NumCPU();
// anything below MinPoolSize is raised to it.
func NewPool(size int) (*Pool, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPoolSize, size)
	}
	size = EffectiveSize(size)
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		size:   size,
		sem:    make(chan struct{}, size),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// EffectiveSize is the pool size NewPool uses for a non-negative size.
func EffectiveSize(size int) int {
	if size == 0 {
		size = runtime.NumCPU()
	}
	return max(size, MinPoolSize)
}

// Size returns the maximum number of concurrent tasks.
func (p *Pool) Size() int { return p.size }

// Run executes fn once a slot is free. The context passed to fn is done when
// ctx is done or the pool shuts down.
func (p *Pool) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.wg.Add(1)
	p.mu.Unlock()
	defer p.wg.Done()

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
	defer func() { <-p.sem }()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	return fn(runCtx)
}

// Shutdown cancels every running task and waits up to grace for them to
// return. Calling it again is a no-op wait.
func (p *Pool) Shutdown(grace time.Duration) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}

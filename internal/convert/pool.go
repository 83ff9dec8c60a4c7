package convert

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("conversion pool closed")

var errPanicked = errors.New("conversion panicked")

// Pool bounds the number of conversions running at the same time.
// Acquire waits for a free slot; there is no queue limit or rejection.
type Pool struct {
	mu     sync.Mutex
	sem    chan struct{}
	closed bool
	done   chan struct{}

	converted atomic.Int64
	failed    atomic.Int64
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Enabled   bool  `json:"enabled"`
	Capacity  int   `json:"capacity"`
	Idle      int   `json:"idle"`
	InUse     int   `json:"in_use"`
	Converted int64 `json:"converted"`
	Failed    int64 `json:"failed"`
}

// NewPool returns a pool with size slots. Sizes below one are raised to one.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		sem:  make(chan struct{}, size),
		done: make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		p.sem <- struct{}{}
	}
	return p
}

// Acquire blocks until a slot is free, ctx is done or the pool is closed.
func (p *Pool) Acquire(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	select {
	case <-p.sem:
		select {
		case <-p.done:
			p.putSlot()
			return ErrPoolClosed
		default:
		}
		return nil
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot and records the outcome of the conversion it served.
func (p *Pool) Release(convErr error) {
	if convErr != nil {
		p.failed.Add(1)
	} else {
		p.converted.Add(1)
	}
	p.putSlot()
}

func (p *Pool) putSlot() {
	select {
	case p.sem <- struct{}{}:
	default:
	}
}

// Run executes fn while holding a slot. The slot is returned even if fn panics.
func (p *Pool) Run(ctx context.Context, fn func() ([]byte, error)) (out []byte, err error) {
	if err = p.Acquire(ctx); err != nil {
		return nil, err
	}
	released := false
	defer func() {
		if !released {
			p.Release(errPanicked)
		}
	}()
	out, err = fn()
	released = true
	p.Release(err)
	return out, err
}

// Stats reports capacity and usage counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	capacity := cap(p.sem)
	idle := len(p.sem)
	return Stats{
		Enabled:   !closed,
		Capacity:  capacity,
		Idle:      idle,
		InUse:     capacity - idle,
		Converted: p.converted.Load(),
		Failed:    p.failed.Load(),
	}
}

// Close makes further Acquire calls fail. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.done)
}

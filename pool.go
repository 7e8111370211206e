package dealerdocs

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one renderer is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("renderer pool closed")

// RendererPool hands out Renderers for parallel exports. Each Renderer owns
// its own browser. Renderers are created on first demand.
type RendererPool struct {
	size      int
	opts      []Option
	renderers []*Renderer
	idle      chan *Renderer
	mu        sync.Mutex
	created   int
	closed    bool
	done      chan struct{}
}

// NewRendererPool creates a pool for up to n Renderers built with opts.
func NewRendererPool(n int, opts ...Option) *RendererPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &RendererPool{
		size:      n,
		opts:      opts,
		renderers: make([]*Renderer, 0, n),
		idle:      make(chan *Renderer, n),
		done:      make(chan struct{}),
	}
}

// Acquire returns an idle Renderer, creates one while under capacity, or
// waits until one is released, ctx ends or the pool closes.
func (p *RendererPool) Acquire(ctx context.Context) (*Renderer, error) {
	select {
	case r := <-p.idle:
		return r, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		r, err := NewRenderer(p.opts...)

		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.created--
			return nil, err
		}
		if p.closed {
			_ = r.Close()
			return nil, ErrPoolClosed
		}
		p.renderers = append(p.renderers, r)
		return r, nil
	}
	p.mu.Unlock()

	select {
	case r := <-p.idle:
		return r, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns r to the pool. Releasing after Close is a no-op.
func (p *RendererPool) Release(r *Renderer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || r == nil {
		return
	}
	// Capacity equals the number of renderers, so this never blocks.
	p.idle <- r
}

// Close shuts down every Renderer the pool created.
// Returns an aggregated error if several fail to close.
func (p *RendererPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	renderers := p.renderers
	p.mu.Unlock()

	var errs []error
	for _, r := range renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *RendererPool) Size() int {
	return p.size
}

// ResolvePoolSize returns workers when positive, otherwise GOMAXPROCS/2
// clamped to [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}

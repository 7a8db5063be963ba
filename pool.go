package cvtrack

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned when getting a Detector from a closed Pool
var ErrPoolClosed = errors.New("detector pool closed")

// Pool is a simple pool of Detectors for a single Target so the cascade and
// HOG models are loaded once rather than on every request.  The pool size
// bounds the number of videos of that Target processed at the same time.
type Pool struct {
	target Target
	// pool of detectors
	detectors chan Detector
	// size of pool
	size int
	// mu guards closed so no detector is returned while the pool is drained
	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewPool creates a new pool of size Detectors created by calling newFn
func NewPool(target Target, size int, newFn func() (Detector, error)) (*Pool, error) {

	if size < 1 {
		size = 1
	}

	p := &Pool{
		target:    target,
		detectors: make(chan Detector, size),
		size:      size,
		done:      make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		det, err := newFn()

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(det)
	}

	return p, nil
}

// Target returns the class of object the pooled detectors look for
func (p *Pool) Target() Target {
	return p.target
}

// Size returns the number of detectors in the pool
func (p *Pool) Size() int {
	return p.size
}

// Get a detector from the pool, blocks until one is available
func (p *Pool) Get() Detector {
	det, _ := p.GetContext(context.Background())
	return det
}

// GetContext gets a detector from the pool, waiting until one is available,
// the context is cancelled or the pool is closed
func (p *Pool) GetContext(ctx context.Context) (Detector, error) {
	select {
	case det, ok := <-p.detectors:
		if !ok {
			return nil, ErrPoolClosed
		}
		return det, nil

	case <-p.done:
		return nil, ErrPoolClosed

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Return a detector to the pool
func (p *Pool) Return(det Detector) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		// pool closed so release the detector rather than leak it
		_ = det.Close()
		return
	}

	select {
	case p.detectors <- det:
	default:
		// pool is full
		_ = det.Close()
	}
}

// Close the pool and all detectors in it
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	close(p.done)

	// close all idle detectors
	for {
		select {
		case next := <-p.detectors:
			_ = next.Close()
		default:
			return
		}
	}
}

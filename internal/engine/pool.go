package engine

import (
	"sync"

	"github.com/efreitasn/exchangesim/internal/domain"
)

// job is a queued submission. epoch is the book generation it was
// accepted in; a reset in between discards it.
type job struct {
	order *domain.Order
	epoch uint64
}

// Pool runs submitted orders through a handler on a fixed number of
// worker goroutines fed by a bounded queue.
type Pool struct {
	handle  func(job)
	jobs    chan job
	workers int

	mu     sync.RWMutex // guards closed against concurrent Enqueue
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

// NewPool creates a pool with the given worker count and queue capacity.
// Workers are not running until Start is called.
func NewPool(workers, queueSize int, handle func(job)) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		handle:  handle,
		jobs:    make(chan job, queueSize),
		workers: workers,
	}
}

// Start launches the workers. Calling Start more than once is a no-op.
func (p *Pool) Start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				for j := range p.jobs {
					p.handle(j)
				}
			}()
		}
	})
}

// Enqueue hands j to a worker without blocking. It returns
// domain.ErrQueueFull when the queue is at capacity and
// domain.ErrPoolClosed after Close.
func (p *Pool) Enqueue(j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return domain.ErrPoolClosed
	}
	select {
	case p.jobs <- j:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Depth returns the number of queued orders not yet picked up.
func (p *Pool) Depth() int {
	return len(p.jobs)
}

// Close stops accepting orders and waits for every queued order to be
// processed.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.Start() // drain even if never started
	p.wg.Wait()
}

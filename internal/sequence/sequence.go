// Package sequence issues the exchange's unique, strictly increasing
// identifiers: order references per prefix, trade match numbers, and the
// logical clock that orders every log append.
package sequence

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// Generator is safe for concurrent use. None of its methods contend with
// the per-symbol matching locks.
type Generator struct {
	mu     sync.Mutex
	orders map[string]uint64 // prefix → last issued

	match atomic.Uint64
	clock atomic.Uint64
}

// New creates a generator with every counter at zero.
func New() *Generator {
	return &Generator{
		orders: make(map[string]uint64),
	}
}

// NextOrderID returns prefix followed by the next integer for that
// prefix, starting at 1.
func (g *Generator) NextOrderID(prefix string) string {
	g.mu.Lock()
	g.orders[prefix]++
	n := g.orders[prefix]
	g.mu.Unlock()
	return prefix + strconv.FormatUint(n, 10)
}

// NextMatchNumber returns the next global trade match number, starting at 1.
func (g *Generator) NextMatchNumber() uint64 {
	return g.match.Add(1)
}

// Tick advances the global logical clock and returns the new value.
func (g *Generator) Tick() uint64 {
	return g.clock.Add(1)
}

// Reset restarts every counter at zero.
func (g *Generator) Reset() {
	g.mu.Lock()
	g.orders = make(map[string]uint64)
	g.mu.Unlock()
	g.match.Store(0)
	g.clock.Store(0)
}

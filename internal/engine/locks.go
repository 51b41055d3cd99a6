package engine

import (
	"sort"
	"sync"
)

// symbolState is the per-symbol mutual exclusion domain: the lock that
// serializes matching and the resting index it protects.
type symbolState struct {
	mu    sync.Mutex
	index *restingIndex
}

// LockRegistry is a thread-safe map of symbol → lock, creating each lock
// on first use. Matching for one symbol is serialized by its lock while
// different symbols proceed concurrently.
type LockRegistry struct {
	mu      sync.RWMutex
	symbols map[string]*symbolState
}

// NewLockRegistry creates an empty LockRegistry.
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{
		symbols: make(map[string]*symbolState),
	}
}

// LockFor returns the lock for symbol. Every call for the same symbol
// returns the same instance.
func (r *LockRegistry) LockFor(symbol string) sync.Locker {
	return &r.get(symbol).mu
}

// get returns the state for symbol, creating it if it doesn't already
// exist.
func (r *LockRegistry) get(symbol string) *symbolState {
	r.mu.RLock()
	st, ok := r.symbols[symbol]
	r.mu.RUnlock()
	if ok {
		return st
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check after acquiring write lock.
	if st, ok = r.symbols[symbol]; ok {
		return st
	}
	st = &symbolState{index: newRestingIndex()}
	r.symbols[symbol] = st
	return st
}

// Symbols returns every symbol that has a lock, sorted.
func (r *LockRegistry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.symbols))
	for s := range r.symbols {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// exclusive runs fn while holding the registry write lock and every
// symbol lock, so no match is in flight and none can start.
func (r *LockRegistry) exclusive(fn func(states []*symbolState)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make([]*symbolState, 0, len(r.symbols))
	for _, st := range r.symbols {
		st.mu.Lock()
		states = append(states, st)
	}
	defer func() {
		for _, st := range states {
			st.mu.Unlock()
		}
	}()
	fn(states)
}

// shared runs fn while holding the registry read lock, excluding a
// concurrent exclusive call.
func (r *LockRegistry) shared(fn func()) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn()
}

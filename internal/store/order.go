package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/efreitasn/exchangesim/internal/domain"
)

// Clock stamps log appends with a global logical time.
type Clock interface {
	Tick() uint64
}

// OrderLog is a thread-safe append-only log of every order the exchange
// has seen, with a secondary index by symbol. Orders are never removed;
// only their State and SupersededBy fields change after append, and only
// through MarkFilled and Supersede. Readers get copies taken under the
// read lock.
type OrderLog struct {
	mu       sync.RWMutex
	clock    Clock
	orders   []*domain.Order
	byRef    map[string]*domain.Order
	bySymbol map[string][]*domain.Order // symbol → orders (append order)
}

// NewOrderLog creates an empty OrderLog stamped by clock.
func NewOrderLog(clock Clock) *OrderLog {
	return &OrderLog{
		clock:    clock,
		byRef:    make(map[string]*domain.Order),
		bySymbol: make(map[string][]*domain.Order),
	}
}

// Append stamps o.Seq and adds it to the log. A duplicate reference is a
// sequencing bug and panics.
func (l *OrderLog) Append(o *domain.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.byRef[o.Ref]; dup {
		panic(fmt.Sprintf("store: duplicate order reference %q", o.Ref))
	}
	o.Seq = l.clock.Tick()
	l.orders = append(l.orders, o)
	l.byRef[o.Ref] = o
	l.bySymbol[o.Symbol] = append(l.bySymbol[o.Symbol], o)
}

// MarkFilled sets o's state to Filled. Orders already in the log must only
// be changed through the log.
func (l *OrderLog) MarkFilled(o *domain.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o.State = domain.OrderStateFilled
}

// Supersede links o to the residual ref that carries its unmatched
// quantity.
func (l *OrderLog) Supersede(o *domain.Order, ref string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o.SupersededBy = ref
}

// Get returns a copy of the order with reference ref.
func (l *OrderLog) Get(ref string) (*domain.Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	o, ok := l.byRef[ref]
	if !ok {
		return nil, false
	}
	return clone(o), true
}

// All returns copies of every order in append order.
func (l *OrderLog) All() []*domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.orders)
}

// BySymbol returns copies of the symbol's orders in append order.
// Returns an empty slice if the symbol has no orders.
func (l *OrderLog) BySymbol(symbol string) []*domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.bySymbol[symbol])
}

// clone copies o so callers never share State or SupersededBy with the
// matcher. Parent still points at the live root, whose Ref, Symbol and
// Timestamp do not change after append.
func clone(o *domain.Order) *domain.Order {
	c := *o
	return &c
}

func cloneAll(orders []*domain.Order) []*domain.Order {
	result := make([]*domain.Order, len(orders))
	for i, o := range orders {
		result[i] = clone(o)
	}
	return result
}

// Reset discards every order.
func (l *OrderLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.orders = nil
	l.byRef = make(map[string]*domain.Order)
	l.bySymbol = make(map[string][]*domain.Order)
}

// Symbols returns every symbol with at least one order, sorted.
func (l *OrderLog) Symbols() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]string, 0, len(l.bySymbol))
	for s := range l.bySymbol {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

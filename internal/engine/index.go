package engine

import (
	"time"

	"github.com/efreitasn/exchangesim/internal/domain"
	"github.com/google/btree"
)

// restingEntry is a single unfilled order resting in the index. The key
// fields are derived from the order's root so a residual keeps the
// priority its root earned.
type restingEntry struct {
	Price     int64
	Timestamp time.Time
	Arrival   uint64
	Ref       string
	Order     *domain.Order
}

func entryFor(o *domain.Order) restingEntry {
	root := o.Root()
	return restingEntry{
		Price:     o.Price,
		Timestamp: root.Timestamp,
		Arrival:   root.Arrival,
		Ref:       o.Ref,
		Order:     o,
	}
}

// timeLess orders entries by effective timestamp, then root arrival tick,
// then reference.
func timeLess(a, b restingEntry) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	if a.Arrival != b.Arrival {
		return a.Arrival < b.Arrival
	}
	return a.Ref < b.Ref
}

// buyLess orders resting buys best-first: price descending, then time.
func buyLess(a, b restingEntry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return timeLess(a, b)
}

// sellLess orders resting sells best-first: price ascending, then time.
func sellLess(a, b restingEntry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return timeLess(a, b)
}

// PriceLevel represents an aggregated price level of resting orders.
type PriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// restingIndex holds the unfilled orders of a single symbol in
// price-time priority. It is only touched under the symbol's lock.
type restingIndex struct {
	buys  *btree.BTreeG[restingEntry]
	sells *btree.BTreeG[restingEntry]
}

func newRestingIndex() *restingIndex {
	const degree = 32
	return &restingIndex{
		buys:  btree.NewG[restingEntry](degree, buyLess),
		sells: btree.NewG[restingEntry](degree, sellLess),
	}
}

func (ix *restingIndex) side(s domain.Side) *btree.BTreeG[restingEntry] {
	if s == domain.SideBuy {
		return ix.buys
	}
	return ix.sells
}

// insert adds an unfilled order to its side.
func (ix *restingIndex) insert(o *domain.Order) {
	ix.side(o.Side).ReplaceOrInsert(entryFor(o))
}

// remove deletes an order from its side. No-op if absent.
func (ix *restingIndex) remove(o *domain.Order) {
	ix.side(o.Side).Delete(entryFor(o))
}

// candidates returns the resting opposite-side orders price-compatible
// with incoming, best priority first.
func (ix *restingIndex) candidates(incoming *domain.Order) []*domain.Order {
	var result []*domain.Order
	ix.side(incoming.Side.Opposite()).Ascend(func(e restingEntry) bool {
		if !incoming.Crosses(e.Order) {
			return false
		}
		result = append(result, e.Order)
		return true
	})
	return result
}

// levels aggregates up to n price levels from a side, best first.
func (ix *restingIndex) levels(s domain.Side, n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	ix.side(s).Ascend(func(e restingEntry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price == e.Price {
			levels[len(levels)-1].TotalQuantity += e.Order.Quantity
			levels[len(levels)-1].OrderCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:         e.Price,
			TotalQuantity: e.Order.Quantity,
			OrderCount:    1,
		})
		return true
	})
	return levels
}

func (ix *restingIndex) count(s domain.Side) int {
	return ix.side(s).Len()
}

func (ix *restingIndex) clear() {
	ix.buys.Clear(false)
	ix.sells.Clear(false)
}

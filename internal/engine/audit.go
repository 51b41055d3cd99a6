package engine

import (
	"time"

	"github.com/efreitasn/exchangesim/internal/domain"
)

// EntryKind distinguishes the two record types of the audit view.
type EntryKind string

const (
	EntryOrder EntryKind = "order"
	EntryTrade EntryKind = "trade"
)

// Entry is a single record in the chronological audit view. Exactly one
// of Order and Trade is set.
type Entry struct {
	Kind      EntryKind
	Seq       uint64
	Timestamp time.Time
	Order     *domain.Order
	Trade     *domain.Trade
}

// Merge interleaves orders and trades into one sequence ordered by their
// append tick. Both inputs must already be in append order, which every
// log copy is. Once one input is exhausted the rest of the other is
// appended as is.
func Merge(orders []*domain.Order, trades []*domain.Trade) []Entry {
	result := make([]Entry, 0, len(orders)+len(trades))

	i, j := 0, 0
	for i < len(orders) && j < len(trades) {
		if orders[i].Seq <= trades[j].Seq {
			result = append(result, orderEntry(orders[i]))
			i++
		} else {
			result = append(result, tradeEntry(trades[j]))
			j++
		}
	}
	for ; i < len(orders); i++ {
		result = append(result, orderEntry(orders[i]))
	}
	for ; j < len(trades); j++ {
		result = append(result, tradeEntry(trades[j]))
	}
	return result
}

func orderEntry(o *domain.Order) Entry {
	return Entry{Kind: EntryOrder, Seq: o.Seq, Timestamp: o.Timestamp, Order: o}
}

func tradeEntry(t *domain.Trade) Entry {
	return Entry{Kind: EntryTrade, Seq: t.Seq, Timestamp: t.Timestamp, Trade: t}
}

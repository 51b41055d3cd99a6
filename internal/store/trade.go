package store

import (
	"sync"

	"github.com/efreitasn/exchangesim/internal/domain"
)

// TradeLog is a thread-safe append-only log of executions.
type TradeLog struct {
	mu     sync.RWMutex
	clock  Clock
	trades []*domain.Trade
}

// NewTradeLog creates an empty TradeLog stamped by clock.
func NewTradeLog(clock Clock) *TradeLog {
	return &TradeLog{clock: clock}
}

// Append stamps t.Seq and adds it to the log.
func (l *TradeLog) Append(t *domain.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t.Seq = l.clock.Tick()
	l.trades = append(l.trades, t)
}

// All returns a copy of the log in append order.
func (l *TradeLog) All() []*domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*domain.Trade, len(l.trades))
	copy(result, l.trades)
	return result
}

// BySymbol returns the symbol's trades in append order.
func (l *TradeLog) BySymbol(symbol string) []*domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*domain.Trade, 0)
	for _, t := range l.trades {
		if t.Symbol == symbol {
			result = append(result, t)
		}
	}
	return result
}

// Reset discards every trade.
func (l *TradeLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = nil
}

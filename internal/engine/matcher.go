package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/efreitasn/exchangesim/internal/domain"
	"github.com/efreitasn/exchangesim/internal/sequence"
	"github.com/efreitasn/exchangesim/internal/store"
)

// Notifier receives one call per trade leg once the match that produced
// the trade has finished. Implementations must not block.
type Notifier interface {
	Notify(matchNumber uint64, leg *domain.Order, quantity, price int64)
}

// Metrics observes matching activity.
type Metrics interface {
	OrderSubmitted(side domain.Side)
	TradeExecuted(symbol string, quantity int64)
	ResidualCreated()
	MatchCompleted(d time.Duration)
	QueueDepth(n int)
}

type nopNotifier struct{}

func (nopNotifier) Notify(uint64, *domain.Order, int64, int64) {}

type nopMetrics struct{}

func (nopMetrics) OrderSubmitted(domain.Side)   {}
func (nopMetrics) TradeExecuted(string, int64)  {}
func (nopMetrics) ResidualCreated()             {}
func (nopMetrics) MatchCompleted(time.Duration) {}
func (nopMetrics) QueueDepth(int)               {}

// Config holds the OrderBook's collaborators. Nil fields get no-op
// defaults.
type Config struct {
	Workers   int
	QueueSize int
	Notifier  Notifier
	Metrics   Metrics
	Logger    *slog.Logger
	Now       func() time.Time
}

// notice is a trade leg waiting for notification until its match ends.
type notice struct {
	match    uint64
	leg      *domain.Order
	quantity int64
	price    int64
}

// OrderBook owns the append-only order and trade logs and the matching
// algorithm. Matching for a symbol runs under that symbol's lock.
type OrderBook struct {
	locks    *LockRegistry
	seq      *sequence.Generator
	orders   *store.OrderLog
	trades   *store.TradeLog
	pool     *Pool
	notifier Notifier
	metrics  Metrics
	logger   *slog.Logger
	now      func() time.Time

	// epoch counts resets. Written only under LockRegistry.exclusive.
	epoch atomic.Uint64
}

// NewOrderBook creates an OrderBook with an empty book and a started
// worker pool.
func NewOrderBook(cfg Config) *OrderBook {
	seq := sequence.New()
	b := &OrderBook{
		locks:    NewLockRegistry(),
		seq:      seq,
		orders:   store.NewOrderLog(seq),
		trades:   store.NewTradeLog(seq),
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if b.notifier == nil {
		b.notifier = nopNotifier{}
	}
	if b.metrics == nil {
		b.metrics = nopMetrics{}
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if b.now == nil {
		b.now = time.Now
	}
	b.pool = NewPool(cfg.Workers, cfg.QueueSize, func(j job) {
		b.process(j)
	})
	b.pool.Start()
	return b
}

// Submit assigns order its reference if it has none, hands it to the
// worker pool and returns the reference without waiting for the match.
func (b *OrderBook) Submit(order *domain.Order) (string, error) {
	j := b.prepare(order)
	if err := b.pool.Enqueue(j); err != nil {
		return "", err
	}
	b.metrics.OrderSubmitted(order.Side)
	b.metrics.QueueDepth(b.pool.Depth())
	return order.Ref, nil
}

// SubmitSync runs the match for order on the calling goroutine and
// returns the trades it produced.
func (b *OrderBook) SubmitSync(order *domain.Order) []*domain.Trade {
	j := b.prepare(order)
	b.metrics.OrderSubmitted(order.Side)
	return b.process(j)
}

// prepare assigns the reference and captures the epoch with no reset
// in between.
func (b *OrderBook) prepare(order *domain.Order) job {
	var j job
	b.locks.shared(func() {
		if order.Ref == "" {
			order.Ref = b.seq.NextOrderID(string(order.Side))
		}
		j = job{order: order, epoch: b.epoch.Load()}
	})
	return j
}

// process matches j under its symbol lock. Notifications are issued
// after the lock is released.
func (b *OrderBook) process(j job) []*domain.Trade {
	order := j.order
	st := b.locks.get(order.Symbol)

	start := time.Now()
	var trades []*domain.Trade
	var notices []notice

	st.mu.Lock()
	if j.epoch != b.epoch.Load() {
		st.mu.Unlock()
		b.logger.Warn("discarding order accepted before reset",
			slog.String("ref", order.Ref),
			slog.String("symbol", order.Symbol),
		)
		return nil
	}
	b.match(st, order, &trades, &notices)
	st.mu.Unlock()

	b.metrics.MatchCompleted(time.Since(start))
	b.metrics.QueueDepth(b.pool.Depth())

	for _, n := range notices {
		b.notifier.Notify(n.match, n.leg, n.quantity, n.price)
	}
	return trades
}

// match runs the matching algorithm for order. The caller holds st.mu.
// Residual orders re-enter match recursively under the same lock.
func (b *OrderBook) match(st *symbolState, order *domain.Order, trades *[]*domain.Trade, notices *[]notice) {
	order.Timestamp = b.now()
	order.State = domain.OrderStateUnfilled
	order.Arrival = b.seq.Tick()

	candidates := st.index.candidates(order)
	if len(candidates) == 0 {
		st.index.insert(order)
		b.orders.Append(order)
		return
	}

	remaining := order.Quantity
	matched := false

	for _, c := range candidates {
		if c.State == domain.OrderStateFilled {
			continue
		}
		b.orders.MarkFilled(c)
		st.index.remove(c)
		matched = true

		qty := min(remaining, c.Quantity)
		price := c.Price

		t := &domain.Trade{
			MatchNumber: b.seq.NextMatchNumber(),
			Symbol:      order.Symbol,
			Quantity:    qty,
			Price:       price,
			Timestamp:   b.now(),
		}
		if order.Side == domain.SideBuy {
			t.BuyerRef, t.SellerRef = order.Ref, c.Ref
		} else {
			t.BuyerRef, t.SellerRef = c.Ref, order.Ref
		}
		b.trades.Append(t)
		*trades = append(*trades, t)
		*notices = append(*notices,
			notice{match: t.MatchNumber, leg: c, quantity: qty, price: price},
			notice{match: t.MatchNumber, leg: order, quantity: qty, price: price},
		)
		b.metrics.TradeExecuted(order.Symbol, qty)

		if qty < c.Quantity {
			b.continueResidual(st, c, c.Quantity-qty, trades, notices)
		}

		remaining -= qty
		if remaining < 0 {
			panic(fmt.Sprintf("engine: negative remaining quantity %d for order %s", remaining, order.Ref))
		}
		if remaining == 0 {
			break
		}
	}

	if !matched {
		st.index.insert(order)
		b.orders.Append(order)
		return
	}

	// order is not in the log yet, so it is still private to this match.
	order.State = domain.OrderStateFilled
	if remaining > 0 {
		b.continueResidual(st, order, remaining, trades, notices)
	}
	b.orders.Append(order)
}

// continueResidual mints the residual carrying remaining of parent,
// links parent to it, and matches it.
func (b *OrderBook) continueResidual(st *symbolState, parent *domain.Order, remaining int64, trades *[]*domain.Trade, notices *[]notice) {
	residual := domain.DeriveResidual(parent, remaining, b.now())
	residual.Ref = b.seq.NextOrderID(domain.ResidualPrefix)
	b.orders.Supersede(parent, residual.Ref)

	b.logger.Debug("residual created",
		slog.String("ref", residual.Ref),
		slog.String("parent_ref", residual.ParentRef()),
		slog.String("symbol", residual.Symbol),
		slog.Int64("quantity", remaining),
	)
	b.metrics.ResidualCreated()

	b.match(st, residual, trades, notices)
}

// Symbols returns every symbol with at least one order, sorted.
func (b *OrderBook) Symbols() []string {
	return b.orders.Symbols()
}

// OrdersForSymbol returns the symbol's orders in log order.
func (b *OrderBook) OrdersForSymbol(symbol string) []*domain.Order {
	return b.orders.BySymbol(symbol)
}

// Orders returns the whole order log.
func (b *OrderBook) Orders() []*domain.Order {
	return b.orders.All()
}

// Trades returns the whole trade log.
func (b *OrderBook) Trades() []*domain.Trade {
	return b.trades.All()
}

// TradesForSymbol returns the symbol's trades in log order.
func (b *OrderBook) TradesForSymbol(symbol string) []*domain.Trade {
	return b.trades.BySymbol(symbol)
}

// Order looks up an order by reference.
func (b *OrderBook) Order(ref string) (*domain.Order, bool) {
	return b.orders.Get(ref)
}

// Snapshot interleaves the order and trade logs by append time.
func (b *OrderBook) Snapshot() []Entry {
	return Merge(b.orders.All(), b.trades.All())
}

// Depth returns up to n aggregated resting price levels per side for
// symbol, best first.
func (b *OrderBook) Depth(symbol string, n int) (buys, sells []PriceLevel) {
	st := b.locks.get(symbol)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.index.levels(domain.SideBuy, n), st.index.levels(domain.SideSell, n)
}

// restingCount returns the number of unfilled orders per side for symbol.
func (b *OrderBook) restingCount(symbol string) (buys, sells int) {
	st := b.locks.get(symbol)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.index.count(domain.SideBuy), st.index.count(domain.SideSell)
}

// Reset waits for in-flight matches, then clears every log, index and
// sequence. Orders accepted before the reset but not yet matched are
// discarded.
func (b *OrderBook) Reset() {
	b.locks.exclusive(func(states []*symbolState) {
		for _, st := range states {
			st.index.clear()
		}
		b.orders.Reset()
		b.trades.Reset()
		b.seq.Reset()
		b.epoch.Add(1)
	})
	b.logger.Info("order book reset", slog.Any("symbols", b.locks.Symbols()))
}

// Close stops accepting submissions and waits for queued matches.
func (b *OrderBook) Close() {
	b.pool.Close()
}

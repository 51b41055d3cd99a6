package service

import (
	"slices"

	"github.com/efreitasn/exchangesim/internal/domain"
)

// ChartTimeLayout is the bin key: orders are grouped per wall-clock second.
const ChartTimeLayout = "15:04:05"

// ChartPoint is one per-second bin of a symbol's order activity.
type ChartPoint struct {
	Time   string
	Price  float64 // average limit price in dollars
	Volume int64   // average order size, truncated
}

// OrderSource reads the order and trade logs.
type OrderSource interface {
	Symbols() []string
	OrdersForSymbol(symbol string) []*domain.Order
	TradesForSymbol(symbol string) []*domain.Trade
}

// ChartService builds chart data and trade tapes from the logs.
type ChartService struct {
	book OrderSource
}

// NewChartService creates a new ChartService.
func NewChartService(book OrderSource) *ChartService {
	return &ChartService{book: book}
}

// Symbols returns every symbol that has at least one order.
func (s *ChartService) Symbols() []string {
	return s.book.Symbols()
}

// Chart returns the per-second bins for symbol and whether the symbol has
// any orders.
func (s *ChartService) Chart(symbol string) ([]ChartPoint, bool) {
	orders := s.book.OrdersForSymbol(symbol)
	if len(orders) == 0 {
		return nil, false
	}
	return BinPerSecond(orders), true
}

// Trades returns the symbol's executions in log order and whether the
// symbol has any orders. A known symbol with no executions yields an empty
// tape.
func (s *ChartService) Trades(symbol string) ([]*domain.Trade, bool) {
	if !slices.Contains(s.book.Symbols(), symbol) {
		return nil, false
	}
	return s.book.TradesForSymbol(symbol), true
}

// BinPerSecond groups consecutive orders whose timestamps fall in the same
// second. Orders are in log order, so a second that reappears after a
// later one starts a new bin.
func BinPerSecond(orders []*domain.Order) []ChartPoint {
	points := make([]ChartPoint, 0)

	var (
		key      string
		sumPrice int64
		sumQty   int64
		n        int64
	)
	flush := func() {
		if n == 0 {
			return
		}
		points = append(points, ChartPoint{
			Time:   key,
			Price:  domain.CentsToDollars(sumPrice) / float64(n),
			Volume: sumQty / n,
		})
	}

	for _, o := range orders {
		k := o.Timestamp.Format(ChartTimeLayout)
		if n > 0 && k != key {
			flush()
			sumPrice, sumQty, n = 0, 0, 0
		}
		key = k
		sumPrice += o.Price
		sumQty += o.Quantity
		n++
	}
	flush()

	return points
}

package service

import (
	"time"

	"github.com/efreitasn/exchangesim/internal/domain"
	"github.com/efreitasn/exchangesim/internal/engine"
)

const (
	DefaultBookDepth = 10
	MaxBookDepth     = 50
)

// DepthSource reads aggregated resting levels.
type DepthSource interface {
	Symbols() []string
	Depth(symbol string, n int) (buys, sells []engine.PriceLevel)
}

// BookView is the resting side of a symbol's book, best levels first.
type BookView struct {
	Symbol     string
	Bids       []engine.PriceLevel
	Asks       []engine.PriceLevel
	Spread     *int64 // nil if either side empty
	SnapshotAt time.Time
}

// BookService serves order book depth.
type BookService struct {
	book DepthSource
	now  func() time.Time
}

// NewBookService creates a new BookService.
func NewBookService(book DepthSource) *BookService {
	return &BookService{book: book, now: time.Now}
}

// GetBook returns up to depth aggregated levels per side for symbol.
func (s *BookService) GetBook(symbol string, depth int) (*BookView, error) {
	if depth < 1 || depth > MaxBookDepth {
		return nil, domain.ErrInvalidDepth
	}
	if !s.known(symbol) {
		return nil, domain.ErrSymbolNotFound
	}

	bids, asks := s.book.Depth(symbol, depth)
	view := &BookView{
		Symbol:     symbol,
		Bids:       bids,
		Asks:       asks,
		SnapshotAt: s.now(),
	}
	if len(bids) > 0 && len(asks) > 0 {
		spread := asks[0].Price - bids[0].Price
		view.Spread = &spread
	}
	return view, nil
}

func (s *BookService) known(symbol string) bool {
	for _, sym := range s.book.Symbols() {
		if sym == symbol {
			return true
		}
	}
	return false
}

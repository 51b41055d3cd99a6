package engine

import (
	"testing"

	"github.com/efreitasn/exchangesim/internal/domain"
	"pgregory.net/rapid"
)

// drawOrder generates a root order over a small price band so that
// crosses, partial fills and multi-level walks are all common.
func drawOrder(t *rapid.T, label string) *domain.Order {
	side := rapid.SampledFrom([]domain.Side{domain.SideBuy, domain.SideSell}).Draw(t, label+"_side")
	symbol := rapid.SampledFrom([]string{"ABC", "XYZ"}).Draw(t, label+"_symbol")
	qty := rapid.Int64Range(1, 50).Draw(t, label+"_qty")
	price := rapid.Int64Range(95, 105).Draw(t, label+"_price")
	return newOrder(side, symbol, qty, price)
}

func TestProperty_BookInvariantsHold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook(Config{Now: stepClock()})
		defer b.Close()

		n := rapid.IntRange(1, 60).Draw(t, "n")
		for i := 0; i < n; i++ {
			b.SubmitSync(drawOrder(t, "order"))
		}

		checkBookInvariants(t, b)
	})
}

func TestProperty_TradeNeverCrossesLimits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook(Config{Now: stepClock()})
		defer b.Close()

		n := rapid.IntRange(1, 40).Draw(t, "n")
		for i := 0; i < n; i++ {
			incoming := drawOrder(t, "order")
			trades := b.SubmitSync(incoming)
			for _, tr := range trades {
				// The incoming order never sets the execution price.
				if incoming.Side == domain.SideBuy && tr.Price > incoming.Price {
					t.Fatalf("buy at %d executed above its limit at %d", incoming.Price, tr.Price)
				}
				if incoming.Side == domain.SideSell && tr.Price < incoming.Price {
					t.Fatalf("sell at %d executed below its limit at %d", incoming.Price, tr.Price)
				}
			}
		}
	})
}

func TestProperty_SequencesStrictlyIncreasing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook(Config{Now: stepClock()})
		defer b.Close()

		n := rapid.IntRange(1, 40).Draw(t, "n")
		for i := 0; i < n; i++ {
			b.SubmitSync(drawOrder(t, "order"))
		}

		trades := b.Trades()
		for i := 1; i < len(trades); i++ {
			if trades[i].MatchNumber <= trades[i-1].MatchNumber {
				t.Fatalf("match numbers not increasing: %d then %d", trades[i-1].MatchNumber, trades[i].MatchNumber)
			}
		}

		snap := b.Snapshot()
		for i := 1; i < len(snap); i++ {
			if snap[i].Seq <= snap[i-1].Seq {
				t.Fatalf("snapshot out of order at %d", i)
			}
		}
		if len(snap) != len(b.Orders())+len(trades) {
			t.Fatalf("snapshot has %d entries, want %d", len(snap), len(b.Orders())+len(trades))
		}
	})
}

func TestProperty_TimePriorityAtEqualPrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook(Config{Now: stepClock()})
		defer b.Close()

		price := rapid.Int64Range(1, 1000).Draw(t, "price")
		qty := rapid.Int64Range(1, 100).Draw(t, "qty")
		buyQty := rapid.Int64Range(1, qty).Draw(t, "buyQty")

		older := newOrder(domain.SideSell, "ABC", qty, price)
		younger := newOrder(domain.SideSell, "ABC", qty, price)
		b.SubmitSync(older)
		b.SubmitSync(younger)

		trades := b.SubmitSync(newOrder(domain.SideBuy, "ABC", buyQty, price+rapid.Int64Range(0, 50).Draw(t, "premium")))
		if len(trades) != 1 {
			t.Fatalf("expected exactly 1 trade, got %d", len(trades))
		}
		if trades[0].SellerRef != older.Ref {
			t.Fatalf("matched %s, want older %s", trades[0].SellerRef, older.Ref)
		}
		if trades[0].Price != price {
			t.Fatalf("executed at %d, want maker price %d", trades[0].Price, price)
		}
	})
}

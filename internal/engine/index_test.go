package engine

import (
	"testing"
	"time"

	"github.com/efreitasn/exchangesim/internal/domain"
)

func restingOrder(ref string, side domain.Side, price int64, ts time.Time, arrival uint64) *domain.Order {
	return &domain.Order{
		Ref:       ref,
		Side:      side,
		Symbol:    "ABC",
		Quantity:  10,
		Price:     price,
		State:     domain.OrderStateUnfilled,
		Timestamp: ts,
		Arrival:   arrival,
	}
}

func TestRestingIndex_CandidatesPriceTimeOrder(t *testing.T) {
	ix := newRestingIndex()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ix.insert(restingOrder("S1", domain.SideSell, 102, t0, 1))
	ix.insert(restingOrder("S2", domain.SideSell, 100, t0.Add(time.Second), 2))
	ix.insert(restingOrder("S3", domain.SideSell, 100, t0, 3))
	ix.insert(restingOrder("S4", domain.SideSell, 103, t0, 4))

	buy := restingOrder("B1", domain.SideBuy, 102, t0, 5)
	got := ix.candidates(buy)

	want := []string{"S3", "S2", "S1"}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got), len(want))
	}
	for i, ref := range want {
		if got[i].Ref != ref {
			t.Errorf("candidate %d = %s, want %s", i, got[i].Ref, ref)
		}
	}
}

func TestRestingIndex_EqualTimestamp_ArrivalBreaksTie(t *testing.T) {
	ix := newRestingIndex()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ix.insert(restingOrder("B2", domain.SideBuy, 100, t0, 9))
	ix.insert(restingOrder("B1", domain.SideBuy, 100, t0, 8))

	got := ix.candidates(restingOrder("S1", domain.SideSell, 100, t0, 10))
	if len(got) != 2 || got[0].Ref != "B1" {
		t.Fatalf("expected B1 first by arrival, got %v", got)
	}
}

func TestRestingIndex_ResidualUsesRootKey(t *testing.T) {
	ix := newRestingIndex()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	root := restingOrder("S1", domain.SideSell, 100, t0, 1)
	root.State = domain.OrderStateFilled
	other := restingOrder("S2", domain.SideSell, 100, t0.Add(time.Second), 2)
	residual := domain.DeriveResidual(root, 5, t0.Add(time.Minute))
	residual.Ref = "O1"
	residual.Arrival = 3

	ix.insert(other)
	ix.insert(residual)

	got := ix.candidates(restingOrder("B1", domain.SideBuy, 100, t0, 4))
	if len(got) != 2 || got[0].Ref != "O1" {
		t.Fatalf("expected residual first by root timestamp, got %v", got)
	}

	ix.remove(residual)
	if ix.count(domain.SideSell) != 1 {
		t.Errorf("count = %d after remove, want 1", ix.count(domain.SideSell))
	}
}

func TestRestingIndex_Clear(t *testing.T) {
	ix := newRestingIndex()
	ix.insert(restingOrder("B1", domain.SideBuy, 100, time.Now(), 1))
	ix.insert(restingOrder("S1", domain.SideSell, 101, time.Now(), 2))
	ix.clear()

	if ix.count(domain.SideBuy) != 0 || ix.count(domain.SideSell) != 0 {
		t.Error("index not empty after clear")
	}
	if ix.levels(domain.SideBuy, 0) != nil {
		t.Error("levels(0) should be nil")
	}
}

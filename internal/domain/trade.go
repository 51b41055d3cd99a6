package domain

import "time"

// Trade is a single execution between a resting (maker) order and an
// incoming (taker) order.
type Trade struct {
	MatchNumber uint64
	Symbol      string
	Quantity    int64
	Price       int64 // cents, always the maker's price
	SellerRef   string
	BuyerRef    string
	Timestamp   time.Time

	// Seq is the logical clock tick stamped when the trade was appended
	// to the trade log.
	Seq uint64
}

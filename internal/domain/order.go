package domain

import "time"

// Side indicates whether an order buys or sells.
type Side string

const (
	SideBuy  Side = "B"
	SideSell Side = "S"
)

// Opposite returns the side an order of this side trades against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// ResidualPrefix is the reference prefix of orders minted by the matcher
// for the unmatched leftover of a partially filled order.
const ResidualPrefix = "O"

// OrderState is the fill state of an order. It moves from Unfilled to
// Filled at most once.
type OrderState string

const (
	OrderStateUnfilled OrderState = "unfilled"
	OrderStateFilled   OrderState = "filled"
)

// Order is a single entry in the order log: either a root order accepted
// at intake or a residual order created by the matcher.
type Order struct {
	Ref         string
	Side        Side
	Symbol      string
	Quantity    int64
	Price       int64 // cents
	Phone       string
	EndpointURL string
	SMS         bool
	State       OrderState
	Timestamp   time.Time

	// Arrival is the logical clock tick stamped when the order entered
	// matching. Breaks time-priority ties between equal timestamps.
	Arrival uint64
	// Seq is the logical clock tick stamped when the order was appended
	// to the order log.
	Seq uint64

	// Parent points at the root order this residual continues. It is
	// always the root itself, never an intermediate residual. Nil for
	// root orders.
	Parent *Order
	// SupersededBy is the reference of the residual that carries this
	// order's unmatched quantity, or empty.
	SupersededBy string
}

// Root returns the order with no parent that this order descends from.
func (o *Order) Root() *Order {
	if o.Parent == nil {
		return o
	}
	return o.Parent
}

// ParentRef returns the root's reference for residual orders and the
// empty string for root orders.
func (o *Order) ParentRef() string {
	if o.Parent == nil {
		return ""
	}
	return o.Parent.Ref
}

// EffectiveTimestamp is the timestamp used for time priority: the root
// order's submission instant.
func (o *Order) EffectiveTimestamp() time.Time {
	return o.Root().Timestamp
}

// Crosses reports whether o and other are on opposite sides of the same
// symbol with the seller's price at or below the buyer's price.
func (o *Order) Crosses(other *Order) bool {
	if o.Symbol != other.Symbol || o.Side == other.Side {
		return false
	}
	if o.Side == SideBuy {
		return other.Price <= o.Price
	}
	return o.Price <= other.Price
}

// DeriveResidual returns a new unfilled order carrying quantity remaining
// of parent. The reference is left empty for the caller to assign, and
// the parent link is flattened to parent's root.
func DeriveResidual(parent *Order, remaining int64, now time.Time) *Order {
	return &Order{
		Side:        parent.Side,
		Symbol:      parent.Symbol,
		Quantity:    remaining,
		Price:       parent.Price,
		Phone:       parent.Phone,
		EndpointURL: parent.EndpointURL,
		SMS:         parent.SMS,
		State:       OrderStateUnfilled,
		Timestamp:   now,
		Parent:      parent.Root(),
	}
}

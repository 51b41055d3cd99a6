// Package notify delivers execution notices to broker endpoints and SMS
// gateways off the matching path.
package notify

import (
	"context"
	"fmt"

	"github.com/efreitasn/exchangesim/internal/domain"
)

// Execution is one trade leg addressed to the root order that owns it.
type Execution struct {
	MatchNumber uint64
	OrderRef    string
	Symbol      string
	Quantity    int64
	Price       int64 // cents
	Phone       string
	EndpointURL string
	SMS         bool
}

// NewExecution resolves leg to its root and builds the notice for it. A
// residual's fills are reported under the root's reference and target.
func NewExecution(matchNumber uint64, leg *domain.Order, quantity, price int64) Execution {
	root := leg.Root()
	return Execution{
		MatchNumber: matchNumber,
		OrderRef:    root.Ref,
		Symbol:      root.Symbol,
		Quantity:    quantity,
		Price:       price,
		Phone:       root.Phone,
		EndpointURL: root.EndpointURL,
		SMS:         root.SMS,
	}
}

// Summary is the human-readable text sent by SMS.
func (e Execution) Summary() string {
	return fmt.Sprintf("Executed %d %s @ $%s (order %s, match %d)",
		e.Quantity, e.Symbol, domain.FormatCents(e.Price), e.OrderRef, e.MatchNumber)
}

// Sender delivers a single execution over one channel.
type Sender interface {
	Send(ctx context.Context, e Execution) error
}

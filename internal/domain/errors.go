package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrPoolClosed             = errors.New("matching_pool_closed")
	ErrQueueFull              = errors.New("matching_queue_full")
	ErrSnapshotExportDisabled = errors.New("snapshot_export_disabled")
	ErrSymbolNotFound         = errors.New("symbol_not_found")
	ErrInvalidDepth           = errors.New("invalid_depth")
)

// Reject codes returned to the submitter when an order is malformed.
// Each code names the first field that failed validation.
const (
	RejectMessageType    = "M"
	RejectPhone          = "F"
	RejectSide           = "I"
	RejectShares         = "Z"
	RejectStock          = "S"
	RejectPrice          = "X"
	RejectSMSFlag        = "T"
	RejectBrokerAddress  = "A"
	RejectBrokerPort     = "P"
	RejectBrokerEndpoint = "E"
	// RejectUnavailable is returned when the exchange cannot accept work,
	// either because it is shutting down or its matching queue is full.
	RejectUnavailable = "U"
)

// RejectError represents an intake validation failure.
type RejectError struct {
	Code  string
	Field string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("order rejected: invalid %s (%s)", e.Field, e.Code)
}

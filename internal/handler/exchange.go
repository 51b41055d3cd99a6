package handler

import (
	"errors"
	"net/http"

	"github.com/efreitasn/exchangesim/internal/domain"
	"github.com/efreitasn/exchangesim/internal/service"
)

// ExchangeHandler handles order submission from brokers.
type ExchangeHandler struct {
	intakeSvc *service.IntakeService
}

// NewExchangeHandler creates a new ExchangeHandler.
func NewExchangeHandler(intakeSvc *service.IntakeService) *ExchangeHandler {
	return &ExchangeHandler{intakeSvc: intakeSvc}
}

// Submit handles POST /exchange/endpoint. Fields may arrive in the form
// body or the query string. Validation outcomes are reported in the XML
// body with status 200.
func (h *ExchangeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteReject(w, domain.RejectMessageType)
		return
	}

	ref, err := h.intakeSvc.Submit(r.Form)
	if err != nil {
		var rejectErr *domain.RejectError
		if errors.As(err, &rejectErr) {
			WriteReject(w, rejectErr.Code)
			return
		}
		WriteReject(w, domain.RejectUnavailable)
		return
	}

	WriteAccept(w, ref)
}

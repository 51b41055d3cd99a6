package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/efreitasn/exchangesim/internal/domain"
	"github.com/efreitasn/exchangesim/internal/engine"
	"github.com/efreitasn/exchangesim/internal/service"
	"github.com/go-chi/chi/v5"
)

// Resetter clears the book.
type Resetter interface {
	Reset()
}

// ReportHandler handles the read-only reporting endpoints and the
// administrative reset.
type ReportHandler struct {
	chartSvc    *service.ChartService
	bookSvc     *service.BookService
	snapshotSvc *service.SnapshotService
	book        Resetter
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	chartSvc *service.ChartService,
	bookSvc *service.BookService,
	snapshotSvc *service.SnapshotService,
	book Resetter,
) *ReportHandler {
	return &ReportHandler{
		chartSvc:    chartSvc,
		bookSvc:     bookSvc,
		snapshotSvc: snapshotSvc,
		book:        book,
	}
}

// symbolsResponse is the JSON response for GET /exchange/symbols.
type symbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// chartPointResponse is one bin in the chart response.
type chartPointResponse struct {
	Time   string  `json:"time"`
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

// chartResponse is the JSON response for GET /exchange/chart/{symbol}.
type chartResponse struct {
	Symbol string               `json:"symbol"`
	Points []chartPointResponse `json:"points"`
}

// tradeResponse is one execution in the trades response.
type tradeResponse struct {
	MatchNumber uint64  `json:"match_number"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
	BuyerRef    string  `json:"buyer_ref"`
	SellerRef   string  `json:"seller_ref"`
	Timestamp   string  `json:"timestamp"`
}

// tradesResponse is the JSON response for GET /exchange/trades/{symbol}.
type tradesResponse struct {
	Symbol string          `json:"symbol"`
	Trades []tradeResponse `json:"trades"`
}

// bookLevelResponse is a single price level in the book response.
type bookLevelResponse struct {
	Price         float64 `json:"price"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

// bookResponse is the JSON response for GET /exchange/book/{symbol}.
type bookResponse struct {
	Symbol     string              `json:"symbol"`
	Bids       []bookLevelResponse `json:"bids"`
	Asks       []bookLevelResponse `json:"asks"`
	Spread     *float64            `json:"spread"`
	SnapshotAt string              `json:"snapshot_at"`
}

// snapshotResponse is the JSON response for GET /exchange/snapshot.
type snapshotResponse struct {
	Transactions []service.Transaction `json:"transactions"`
}

// uploadResponse is the JSON response for POST /exchange/snapshot.
type uploadResponse struct {
	Snapshot int `json:"snapshot"`
}

// Symbols handles GET /exchange/symbols.
func (h *ReportHandler) Symbols(w http.ResponseWriter, r *http.Request) {
	symbols := h.chartSvc.Symbols()
	if symbols == nil {
		symbols = []string{}
	}
	WriteJSON(w, http.StatusOK, symbolsResponse{Symbols: symbols})
}

// Chart handles GET /exchange/chart/{symbol}.
func (h *ReportHandler) Chart(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	points, ok := h.chartSvc.Chart(symbol)
	if !ok {
		WriteError(w, http.StatusNotFound, "symbol_not_found", "Symbol not found")
		return
	}

	resp := chartResponse{
		Symbol: symbol,
		Points: make([]chartPointResponse, len(points)),
	}
	for i, p := range points {
		resp.Points[i] = chartPointResponse{Time: p.Time, Price: p.Price, Volume: p.Volume}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Trades handles GET /exchange/trades/{symbol}.
func (h *ReportHandler) Trades(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	trades, ok := h.chartSvc.Trades(symbol)
	if !ok {
		WriteError(w, http.StatusNotFound, "symbol_not_found", "Symbol not found")
		return
	}

	resp := tradesResponse{
		Symbol: symbol,
		Trades: make([]tradeResponse, len(trades)),
	}
	for i, t := range trades {
		resp.Trades[i] = tradeResponse{
			MatchNumber: t.MatchNumber,
			Quantity:    t.Quantity,
			Price:       domain.CentsToDollars(t.Price),
			BuyerRef:    t.BuyerRef,
			SellerRef:   t.SellerRef,
			Timestamp:   t.Timestamp.UTC().Format(time.RFC3339Nano),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Book handles GET /exchange/book/{symbol}.
func (h *ReportHandler) Book(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	depth := service.DefaultBookDepth
	if d := r.URL.Query().Get("depth"); d != "" {
		var err error
		depth, err = strconv.Atoi(d)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "depth must be a valid integer")
			return
		}
	}

	book, err := h.bookSvc.GetBook(symbol, depth)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDepth):
			WriteError(w, http.StatusBadRequest, "validation_error", "depth must be between 1 and 50")
		case errors.Is(err, domain.ErrSymbolNotFound):
			WriteError(w, http.StatusNotFound, "symbol_not_found", "Symbol not found")
		default:
			WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		}
		return
	}

	resp := bookResponse{
		Symbol:     book.Symbol,
		Bids:       levelsResponse(book.Bids),
		Asks:       levelsResponse(book.Asks),
		SnapshotAt: book.SnapshotAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if book.Spread != nil {
		v := domain.CentsToDollars(*book.Spread)
		resp.Spread = &v
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Snapshot handles GET /exchange/snapshot.
func (h *ReportHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, snapshotResponse{Transactions: h.snapshotSvc.Transactions()})
}

// UploadSnapshot handles POST /exchange/snapshot.
func (h *ReportHandler) UploadSnapshot(w http.ResponseWriter, r *http.Request) {
	num, err := h.snapshotSvc.Upload(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotExportDisabled) {
			WriteError(w, http.StatusServiceUnavailable, "snapshot_export_disabled", "Snapshot upload is not configured")
			return
		}
		WriteError(w, http.StatusBadGateway, "snapshot_upload_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, uploadResponse{Snapshot: num})
}

// Reset handles POST /exchange/reset.
func (h *ReportHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.book.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func levelsResponse(levels []engine.PriceLevel) []bookLevelResponse {
	out := make([]bookLevelResponse, len(levels))
	for i, l := range levels {
		out[i] = bookLevelResponse{
			Price:         domain.CentsToDollars(l.Price),
			TotalQuantity: l.TotalQuantity,
			OrderCount:    l.OrderCount,
		}
	}
	return out
}

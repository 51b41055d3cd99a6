package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/efreitasn/exchangesim/internal/domain"
	"github.com/efreitasn/exchangesim/internal/engine"
)

// SnapshotSource produces the merged audit view.
type SnapshotSource interface {
	Snapshot() []engine.Entry
}

// Transaction is the JSON form of one audit entry.
type Transaction struct {
	Type      string    `json:"type"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`

	// Order fields.
	Ref          string `json:"ref,omitempty"`
	Side         string `json:"side,omitempty"`
	State        string `json:"state,omitempty"`
	ParentRef    string `json:"parent_ref,omitempty"`
	SupersededBy string `json:"superseded_by,omitempty"`

	// Trade fields.
	MatchNumber uint64 `json:"match_number,omitempty"`
	BuyerRef    string `json:"buyer_ref,omitempty"`
	SellerRef   string `json:"seller_ref,omitempty"`
}

// NewTransaction converts an audit entry.
func NewTransaction(e engine.Entry) Transaction {
	if e.Kind == engine.EntryTrade {
		t := e.Trade
		return Transaction{
			Type:        string(engine.EntryTrade),
			Seq:         t.Seq,
			Timestamp:   t.Timestamp.UTC(),
			Symbol:      t.Symbol,
			Quantity:    t.Quantity,
			Price:       domain.CentsToDollars(t.Price),
			MatchNumber: t.MatchNumber,
			BuyerRef:    t.BuyerRef,
			SellerRef:   t.SellerRef,
		}
	}
	o := e.Order
	return Transaction{
		Type:         string(engine.EntryOrder),
		Seq:          o.Seq,
		Timestamp:    o.Timestamp.UTC(),
		Symbol:       o.Symbol,
		Quantity:     o.Quantity,
		Price:        domain.CentsToDollars(o.Price),
		Ref:          o.Ref,
		Side:         string(o.Side),
		State:        string(o.State),
		ParentRef:    o.ParentRef(),
		SupersededBy: o.SupersededBy,
	}
}

// Party names the owner or signer of an uploaded snapshot.
type Party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (p Party) empty() bool { return p.Name == "" && p.Email == "" }

// uploadPayload is the body posted to the audit endpoint.
type uploadPayload struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Owner        *Party        `json:"owner,omitempty"`
	Signer       *Party        `json:"signer,omitempty"`
	Transactions []Transaction `json:"transactions"`
}

// SnapshotConfig configures snapshot uploads. An empty UploadURL disables
// Upload. Auth is the base64 basic credential sent with each upload. Owner
// and Signer are omitted from the payload when both their fields are empty.
type SnapshotConfig struct {
	UploadURL string
	Auth      string
	Owner     Party
	Signer    Party
	Timeout   time.Duration
}

// SnapshotService renders the audit view and uploads it to an external
// audit endpoint.
type SnapshotService struct {
	book   SnapshotSource
	cfg    SnapshotConfig
	client *http.Client

	mu  sync.Mutex
	num int
}

// NewSnapshotService creates a SnapshotService.
func NewSnapshotService(book SnapshotSource, cfg SnapshotConfig) *SnapshotService {
	return &SnapshotService{
		book: book,
		cfg:  cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Transactions returns the current audit view.
func (s *SnapshotService) Transactions() []Transaction {
	entries := s.book.Snapshot()
	result := make([]Transaction, 0, len(entries))
	for _, e := range entries {
		result = append(result, NewTransaction(e))
	}
	return result
}

// Upload posts the current audit view and returns the snapshot number it
// was sent under. Numbers start at 0 and advance on every attempt.
func (s *SnapshotService) Upload(ctx context.Context) (int, error) {
	if s.cfg.UploadURL == "" {
		return 0, domain.ErrSnapshotExportDisabled
	}

	s.mu.Lock()
	num := s.num
	s.num++
	s.mu.Unlock()

	payload := uploadPayload{
		Name:         "Exchange Snapshot Upload",
		Description:  fmt.Sprintf("Trading snapshot %d", num),
		Transactions: s.Transactions(),
	}
	if !s.cfg.Owner.empty() {
		payload.Owner = &s.cfg.Owner
	}
	if !s.cfg.Signer.empty() {
		payload.Signer = &s.cfg.Signer
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return num, fmt.Errorf("encoding snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.UploadURL, bytes.NewReader(body))
	if err != nil {
		return num, fmt.Errorf("building snapshot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Auth != "" {
		req.Header.Set("Authorization", "Basic "+s.cfg.Auth)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return num, fmt.Errorf("uploading snapshot: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return num, fmt.Errorf("snapshot endpoint returned %d", resp.StatusCode)
	}
	return num, nil
}

package service

import (
	"errors"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/efreitasn/exchangesim/internal/domain"
)

var (
	phoneRegex  = regexp.MustCompile(`^\+[0-9]{1,15}$`)
	symbolRegex = regexp.MustCompile(`^[a-zA-Z0-9]{3,8}$`)
)

const (
	maxShares = 999999
	maxPrice  = 100000
)

// Submitter accepts a validated order for matching and returns its
// reference.
type Submitter interface {
	Submit(order *domain.Order) (string, error)
}

// IntakeService validates order forms and hands well-formed orders to the
// book.
type IntakeService struct {
	book   Submitter
	logger *slog.Logger
}

// NewIntakeService creates a new IntakeService.
func NewIntakeService(book Submitter, logger *slog.Logger) *IntakeService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &IntakeService{book: book, logger: logger}
}

// Submit validates form and submits the resulting order. It returns the
// assigned reference, or a *domain.RejectError.
func (s *IntakeService) Submit(form url.Values) (string, error) {
	order, err := ParseOrder(form)
	if err != nil {
		return "", err
	}

	ref, err := s.book.Submit(order)
	if err != nil {
		if errors.Is(err, domain.ErrPoolClosed) || errors.Is(err, domain.ErrQueueFull) {
			s.logger.Warn("order refused",
				slog.String("symbol", order.Symbol),
				slog.String("error", err.Error()),
			)
			return "", &domain.RejectError{Code: domain.RejectUnavailable, Field: "availability"}
		}
		return "", err
	}
	return ref, nil
}

// ParseOrder validates an order form field by field. The first field that
// fails decides the reject code.
func ParseOrder(form url.Values) (*domain.Order, error) {
	if form.Get("MessageType") != "O" {
		return nil, reject(domain.RejectMessageType, "MessageType")
	}

	phone := form.Get("From")
	if !phoneRegex.MatchString(phone) {
		return nil, reject(domain.RejectPhone, "From")
	}

	var side domain.Side
	switch form.Get("BS") {
	case "B":
		side = domain.SideBuy
	case "S":
		side = domain.SideSell
	default:
		return nil, reject(domain.RejectSide, "BS")
	}

	shares, err := strconv.ParseInt(form.Get("Shares"), 10, 64)
	if err != nil || shares < 1 || shares > maxShares {
		return nil, reject(domain.RejectShares, "Shares")
	}

	symbol := form.Get("Stock")
	if !symbolRegex.MatchString(symbol) {
		return nil, reject(domain.RejectStock, "Stock")
	}

	price, err := strconv.ParseInt(form.Get("Price"), 10, 64)
	if err != nil || price < 1 || price > maxPrice {
		return nil, reject(domain.RejectPrice, "Price")
	}

	var sms bool
	switch form.Get("Twilio") {
	case "Y":
		sms = true
	case "N":
	default:
		return nil, reject(domain.RejectSMSFlag, "Twilio")
	}

	address := form.Get("BrokerAddress")
	if address == "" {
		return nil, reject(domain.RejectBrokerAddress, "BrokerAddress")
	}

	port, err := strconv.Atoi(form.Get("BrokerPort"))
	if err != nil || port < 0 || port > 65535 {
		return nil, reject(domain.RejectBrokerPort, "BrokerPort")
	}

	if !form.Has("BrokerEndpoint") {
		return nil, reject(domain.RejectBrokerEndpoint, "BrokerEndpoint")
	}
	endpoint := strings.TrimPrefix(form.Get("BrokerEndpoint"), "/")

	endpointURL := "http://" + address + ":" + strconv.Itoa(port) + "/" + endpoint
	if _, err := url.Parse(endpointURL); err != nil {
		return nil, reject(domain.RejectBrokerEndpoint, "BrokerEndpoint")
	}

	return &domain.Order{
		Side:        side,
		Symbol:      symbol,
		Quantity:    shares,
		Price:       price,
		Phone:       phone,
		EndpointURL: endpointURL,
		SMS:         sms,
	}, nil
}

func reject(code, field string) *domain.RejectError {
	return &domain.RejectError{Code: code, Field: field}
}

package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WebhookClient posts execution notices to the broker endpoint recorded
// on the order.
type WebhookClient struct {
	client *http.Client
}

// NewWebhookClient creates a WebhookClient whose requests time out after
// timeout.
func NewWebhookClient(timeout time.Duration) *WebhookClient {
	return &WebhookClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts e as a form to e.EndpointURL. Any non-2xx response is an
// error. There is no retry.
func (c *WebhookClient) Send(ctx context.Context, e Execution) error {
	form := url.Values{}
	form.Set("MessageType", "E")
	form.Set("OrderReferenceIdentifier", e.OrderRef)
	form.Set("ExecutedShares", strconv.FormatInt(e.Quantity, 10))
	form.Set("ExecutionPrice", strconv.FormatInt(e.Price, 10))
	form.Set("MatchNumber", strconv.FormatUint(e.MatchNumber, 10))
	form.Set("To", e.Phone)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.EndpointURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Delivery-Id", uuid.New().String())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting execution to %s: %w", e.EndpointURL, err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("broker endpoint %s returned %d", e.EndpointURL, resp.StatusCode)
	}
	return nil
}

package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// SMSConfig configures an SMSClient against a Twilio-compatible
// messages API.
type SMSConfig struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	Rate       float64 // messages per second
	Burst      int
	Timeout    time.Duration
}

// SMSClient sends execution summaries through an SMS gateway. Sends are
// throttled so a burst of fills cannot exceed the gateway's rate limit.
type SMSClient struct {
	endpoint string
	sid      string
	token    string
	from     string
	limiter  *rate.Limiter
	client   *http.Client
}

// NewSMSClient creates an SMSClient.
func NewSMSClient(cfg SMSConfig) *SMSClient {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(cfg.Rate)
	if cfg.Rate <= 0 {
		limit = rate.Inf
	}
	return &SMSClient{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") +
			"/2010-04-01/Accounts/" + url.PathEscape(cfg.AccountSID) + "/Messages.json",
		sid:     cfg.AccountSID,
		token:   cfg.AuthToken,
		from:    cfg.From,
		limiter: rate.NewLimiter(limit, burst),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Send texts e's summary to e.Phone. It waits for the rate limiter,
// which returns early if ctx is done.
func (c *SMSClient) Send(ctx context.Context, e Execution) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("sms rate limiter: %w", err)
	}

	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", e.Phone)
	form.Set("Body", e.Summary())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.sid, c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending sms: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}
	return nil
}

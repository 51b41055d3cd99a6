package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/efreitasn/exchangesim/internal/domain"
)

// Channel labels used for logging and metrics.
const (
	ChannelWebhook = "webhook"
	ChannelSMS     = "sms"
)

// Metrics observes notification outcomes.
type Metrics interface {
	Notification(channel, result string)
}

type nopMetrics struct{}

func (nopMetrics) Notification(string, string) {}

// Config holds the Dispatcher's collaborators. A nil Webhook or SMS
// sender disables that channel.
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	Webhook   Sender
	SMS       Sender
	Metrics   Metrics
	Logger    *slog.Logger
}

// Dispatcher queues executions and delivers them on its own workers.
// Notify never blocks: when the queue is full the execution is dropped.
type Dispatcher struct {
	queue   chan Execution
	webhook Sender
	sms     Sender
	timeout time.Duration
	metrics Metrics
	logger  *slog.Logger

	mu     sync.RWMutex // guards closed against concurrent Notify
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher and starts its workers.
func NewDispatcher(cfg Config) *Dispatcher {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}
	d := &Dispatcher{
		queue:   make(chan Execution, queueSize),
		webhook: cfg.Webhook,
		sms:     cfg.SMS,
		timeout: cfg.Timeout,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	if d.metrics == nil {
		d.metrics = nopMetrics{}
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.timeout <= 0 {
		d.timeout = 5 * time.Second
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for e := range d.queue {
				d.deliver(e)
			}
		}()
	}
	return d
}

// Notify queues the execution of one trade leg, addressed to the leg's
// root order.
func (d *Dispatcher) Notify(matchNumber uint64, leg *domain.Order, quantity, price int64) {
	d.Enqueue(NewExecution(matchNumber, leg, quantity, price))
}

// Enqueue queues e, dropping it if the queue is full or the dispatcher
// is closed. It reports whether e was queued.
func (d *Dispatcher) Enqueue(e Execution) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.closed {
		select {
		case d.queue <- e:
			return true
		default:
		}
	}

	d.logger.Warn("execution notice dropped",
		slog.String("ref", e.OrderRef),
		slog.Uint64("match_number", e.MatchNumber),
		slog.Bool("closed", d.closed),
	)
	if e.EndpointURL != "" {
		d.metrics.Notification(ChannelWebhook, "dropped")
	}
	if e.SMS {
		d.metrics.Notification(ChannelSMS, "dropped")
	}
	return false
}

// Close stops accepting executions and waits for queued ones to be
// delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) deliver(e Execution) {
	if d.webhook != nil && e.EndpointURL != "" {
		d.send(ChannelWebhook, d.webhook, e)
	}
	if d.sms != nil && e.SMS && e.Phone != "" {
		d.send(ChannelSMS, d.sms, e)
	}
}

// send makes one best-effort attempt. Failures are logged and counted.
func (d *Dispatcher) send(channel string, s Sender, e Execution) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := s.Send(ctx, e); err != nil {
		d.logger.Warn("execution notice failed",
			slog.String("channel", channel),
			slog.String("ref", e.OrderRef),
			slog.Uint64("match_number", e.MatchNumber),
			slog.String("error", err.Error()),
		)
		d.metrics.Notification(channel, "failed")
		return
	}
	d.metrics.Notification(channel, "sent")
}

// Package metrics exposes the exchange's prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/efreitasn/exchangesim/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "exchange"

// Exchange holds every collector on its own registry. It satisfies both
// engine.Metrics and notify.Metrics.
type Exchange struct {
	registry *prometheus.Registry

	ordersSubmitted  *prometheus.CounterVec
	tradesExecuted   prometheus.Counter
	sharesExecuted   *prometheus.CounterVec
	residualsCreated prometheus.Counter
	matchDuration    prometheus.Histogram
	queueDepth       prometheus.Gauge
	notifications    *prometheus.CounterVec
}

// New creates and registers the exchange collectors.
func New() *Exchange {
	m := &Exchange{
		registry: prometheus.NewRegistry(),

		ordersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Total number of orders accepted for matching",
		}, []string{"side"}),

		tradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_executed_total",
			Help:      "Total number of trades executed",
		}),

		sharesExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_executed_total",
			Help:      "Total number of shares executed by symbol",
		}, []string{"symbol"}),

		residualsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "residuals_created_total",
			Help:      "Total number of residual orders created by partial fills",
		}),

		matchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Time spent matching a single submission",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}),

		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "match_queue_depth",
			Help:      "Submissions waiting for a matching worker",
		}),

		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Execution notifications by channel and result",
		}, []string{"channel", "result"}),
	}

	m.registry.MustRegister(
		m.ordersSubmitted,
		m.tradesExecuted,
		m.sharesExecuted,
		m.residualsCreated,
		m.matchDuration,
		m.queueDepth,
		m.notifications,
	)
	return m
}

func (m *Exchange) OrderSubmitted(side domain.Side) {
	m.ordersSubmitted.WithLabelValues(string(side)).Inc()
}

func (m *Exchange) TradeExecuted(symbol string, quantity int64) {
	m.tradesExecuted.Inc()
	m.sharesExecuted.WithLabelValues(symbol).Add(float64(quantity))
}

func (m *Exchange) ResidualCreated() {
	m.residualsCreated.Inc()
}

func (m *Exchange) MatchCompleted(d time.Duration) {
	m.matchDuration.Observe(d.Seconds())
}

func (m *Exchange) QueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

// Notification counts one delivery attempt. result is "sent", "failed"
// or "dropped".
func (m *Exchange) Notification(channel, result string) {
	m.notifications.WithLabelValues(channel, result).Inc()
}

// Registry returns the underlying registry.
func (m *Exchange) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Exchange) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

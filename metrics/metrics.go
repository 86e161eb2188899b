package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the registration backend. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	WebhookNotifications *prometheus.CounterVec
	CheckoutsCreated     *prometheus.CounterVec
	EmailsSent           *prometheus.CounterVec
	GatewayLatency       *prometheus.HistogramVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WebhookNotifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_webhook_notifications_total",
			Help: "Payment gateway notifications processed, by outcome",
		}, []string{"outcome"}),
		CheckoutsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_checkouts_created_total",
			Help: "Gateway checkout sessions created, by flow",
		}, []string{"flow"}),
		EmailsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_emails_total",
			Help: "Emails dispatched, by kind and result",
		}, []string{"kind", "result"}),
		GatewayLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registration_gateway_request_duration_seconds",
			Help:    "Latency of payment gateway calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registration_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) ObserveNotification(outcome string) {
	if m == nil {
		return
	}
	m.WebhookNotifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementCheckouts(flow string) {
	if m == nil {
		return
	}
	m.CheckoutsCreated.WithLabelValues(flow).Inc()
}

func (m *Metrics) ObserveEmail(kind string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.EmailsSent.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveGatewayCall(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.GatewayLatency.WithLabelValues(operation, result).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveHTTPRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}

package utils

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	RateLimitDeniedTotal prometheus.Counter

	AppointmentsCreatedTotal prometheus.Counter
	TransitionsTotal         *prometheus.CounterVec
	WebhookEventsTotal       *prometheus.CounterVec
	RemindersTotal           *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wuauser_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wuauser_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RateLimitDeniedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wuauser_rate_limit_denied_total",
				Help: "Requests rejected by the rate limiter",
			},
		),
		AppointmentsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wuauser_appointments_created_total",
				Help: "Appointments booked",
			},
		),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wuauser_appointment_transitions_total",
				Help: "Appointment status transitions by target status and outcome",
			},
			[]string{"target", "outcome"},
		),
		WebhookEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wuauser_payment_webhook_events_total",
				Help: "Payment webhook events by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		RemindersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wuauser_reminders_total",
				Help: "Reminder queue operations by action and outcome",
			},
			[]string{"action", "outcome"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RateLimitDeniedTotal,
		m.AppointmentsCreatedTotal,
		m.TransitionsTotal,
		m.WebhookEventsTotal,
		m.RemindersTotal,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome renders an error as a metric label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

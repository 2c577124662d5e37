// Package metrics owns the Prometheus collectors of the service. Collectors
// are created once and injected; nothing registers metrics lazily.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	HTTPRequests    *prometheus.CounterVec   // http_requests_total{method,route,status}
	HTTPDuration    *prometheus.HistogramVec // http_request_duration_seconds{method,route}
	UsecaseRequests *prometheus.CounterVec   // usecase_requests_total{use_case,outcome}
	UsecaseDuration *prometheus.HistogramVec // usecase_duration_seconds{use_case}
	CacheRequests   *prometheus.CounterVec   // coffee_cache_requests_total{result}
	EventsPublished *prometheus.CounterVec   // events_published_total{topic,outcome}
	EventsConsumed  *prometheus.CounterVec   // events_consumed_total{event_type,outcome}
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		UsecaseRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usecase_requests_total",
			Help: "Total number of use case invocations.",
		}, []string{"use_case", "outcome"}),
		UsecaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "usecase_duration_seconds",
			Help:    "Duration of use case execution in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"use_case"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coffee_cache_requests_total",
			Help: "Coffee cache lookups by result.",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events handed to the broker.",
		}, []string{"topic", "outcome"}),
		EventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Domain events processed by the worker.",
		}, []string{"event_type", "outcome"}),
	}
	reg.MustRegister(
		m.HTTPRequests, m.HTTPDuration,
		m.UsecaseRequests, m.UsecaseDuration,
		m.CacheRequests, m.EventsPublished, m.EventsConsumed,
	)
	return m
}

// Noop returns collectors registered on a throwaway registry.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Outcome maps an error to the usecase outcome label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Package metrics exposes Prometheus instrumentation for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the HTTP layer reports into.
type Recorder interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
	RecordAuthFailure(reason string)
	RecordTokenIssued()
}

// Collector records API metrics in a Prometheus registry.
type Collector struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	authFailures *prometheus.CounterVec
	tokensIssued prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todolist_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "todolist_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todolist_auth_failures_total",
			Help: "Rejected authentication attempts by reason.",
		}, []string{"reason"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todolist_tokens_issued_total",
			Help: "Signed tokens handed out by login, register and renew.",
		}),
	}

	reg.MustRegister(c.requests, c.latency, c.authFailures, c.tokensIssued)
	return c
}

// ObserveRequest records one served request.
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthFailure counts a rejected credential or token.
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

// RecordTokenIssued counts an issued token.
func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every observation.
type Nop struct{}

// ObserveRequest discards the observation.
func (Nop) ObserveRequest(string, string, int, time.Duration) {}

// RecordAuthFailure discards the failure.
func (Nop) RecordAuthFailure(string) {}

// RecordTokenIssued discards the issuance.
func (Nop) RecordTokenIssued() {}

// Package metrics exposes Prometheus collectors for the HTTP server and the
// breaking-session domain.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "srsports"

// Metrics holds every collector the server records to.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	contacts        *prometheus.CounterVec
	sessions        *prometheus.CounterVec
	authAttempts    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry together
// with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		contacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by result.",
		}, []string{"result"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaking_session_writes_total",
			Help:      "Breaking session writes by operation and result.",
		}, []string{"op", "result"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Sign-in and sign-up attempts by mode and result.",
		}, []string{"mode", "result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "cache_lookups_total",
			Help:      "Dashboard summary cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.contacts,
		m.sessions,
		m.authAttempts,
		m.cacheLookups,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request.
// route should be the mux pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ContactSubmitted counts a contact form submission.
func (m *Metrics) ContactSubmitted(err error) {
	if m == nil {
		return
	}
	m.contacts.WithLabelValues(result(err)).Inc()
}

// SessionWrite counts a create, update or delete of a breaking session.
func (m *Metrics) SessionWrite(op string, err error) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(op, result(err)).Inc()
}

// AuthAttempt counts a sign-in or sign-up.
func (m *Metrics) AuthAttempt(mode string, err error) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(mode, result(err)).Inc()
}

// CacheLookup counts a dashboard cache lookup. result is "hit", "miss" or "error".
func (m *Metrics) CacheLookup(res string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(res).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

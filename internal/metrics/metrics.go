// Package metrics holds prometheus collectors of the service.
// Every method is safe to call on nil *Metrics, so metrics are optional for services.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blogapi"

// Session operations
const (
	OpRegister = "register"
	OpLogin    = "login"
	OpRefresh  = "refresh"
)

type Metrics struct {
	registry *prometheus.Registry

	sessionsIssued  *prometheus.CounterVec
	refreshRejected *prometheus.CounterVec
	logouts         prometheus.Counter
	httpRequests    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_issued_total",
			Help:      "Token pairs issued, by session operation.",
		}, []string{"operation"}),
		refreshRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_rejected_total",
			Help:      "Refresh attempts rejected, by reason.",
		}, []string{"reason"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Logout requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and response status.",
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessionsIssued,
		m.refreshRejected,
		m.logouts,
		m.httpRequests,
	)

	return m
}

// Prometheus exposition handler for the metrics registry
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) SessionIssued(operation string) {
	if m == nil {
		return
	}
	m.sessionsIssued.WithLabelValues(operation).Inc()
}

func (m *Metrics) RefreshRejected(reason string) {
	if m == nil {
		return
	}
	m.refreshRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) LoggedOut() {
	if m == nil {
		return
	}
	m.logouts.Inc()
}

func (m *Metrics) HTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

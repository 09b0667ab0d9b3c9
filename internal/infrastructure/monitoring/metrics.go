package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Forwarded call statuses
const (
	StatusOK         = "ok"
	StatusError      = "error"
	StatusSuppressed = "suppressed"
)

// Offset refresh outcomes
const (
	OffsetFound    = "found"
	OffsetNotFound = "not_found"
	OffsetError    = "error"
)

// Metrics holds the Prometheus collectors of the popup host and its proxies.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Proxy metrics
	ForwardedCalls  *prometheus.CounterVec
	ForwardDuration *prometheus.HistogramVec
	OffsetRefreshes *prometheus.CounterVec

	// Host metrics
	Dispatches   *prometheus.CounterVec
	PopupsHosted prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time
}

// NewMetrics creates the collectors and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popup_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "popup_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ForwardedCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popup_forwarded_calls_total",
				Help: "Popup operations forwarded to the hosting frame",
			},
			[]string{"action", "status"},
		),
		ForwardDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "popup_forward_duration_seconds",
				Help:    "Round-trip time of forwarded popup operations",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"action"},
		),
		OffsetRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popup_offset_refreshes_total",
				Help: "Frame offset lookups by outcome",
			},
			[]string{"outcome"},
		),

		Dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popup_host_dispatches_total",
				Help: "Cross-frame actions dispatched by the host",
			},
			[]string{"action", "status"},
		),
		PopupsHosted: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "popup_host_popups",
				Help: "Number of popups owned by the host",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "popup_ws_connections",
				Help: "Number of open cross-frame websocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popup_ws_messages_total",
				Help: "Cross-frame websocket messages",
			},
			[]string{"direction", "kind"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "popup_uptime_seconds",
			Help: "Popup host uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordForward records one forwarded popup operation
func (m *Metrics) RecordForward(action, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ForwardedCalls.WithLabelValues(action, status).Inc()
	m.ForwardDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordOffsetRefresh records the outcome of one frame offset lookup
func (m *Metrics) RecordOffsetRefresh(outcome string) {
	if m == nil {
		return
	}
	m.OffsetRefreshes.WithLabelValues(outcome).Inc()
}

// RecordDispatch records an action handled by the host
func (m *Metrics) RecordDispatch(action, status string) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(action, status).Inc()
}

// SetPopupsHosted sets the number of hosted popups
func (m *Metrics) SetPopupsHosted(count int) {
	if m == nil {
		return
	}
	m.PopupsHosted.Set(float64(count))
}

// RecordWSMessage records a websocket message
func (m *Metrics) RecordWSMessage(direction, kind string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, kind).Inc()
}

// IncWSConnections increments websocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements websocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

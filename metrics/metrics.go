// Package metrics holds the Prometheus collectors for the controller server.
//
// Metrics collected:
//   - remote_controller_active_sessions: Gauge of open WebSocket sessions
//   - remote_controller_sessions_total: Counter of accepted sessions
//   - remote_controller_sessions_closed_total: Counter of closed sessions by reason
//   - remote_controller_frames_total: Counter of inbound frames by kind
//   - remote_controller_decode_errors_total: Counter of malformed client messages
//   - remote_controller_pings_sent_total: Counter of heartbeat pings
//   - remote_controller_actions_total: Counter of action submissions by result
//
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "remote_controller").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "remote_controller",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is the set of collectors shared by the transports.
type Metrics struct {
	activeSessions prometheus.Gauge
	sessionsTotal  prometheus.Counter
	sessionsClosed *prometheus.CounterVec
	framesTotal    *prometheus.CounterVec
	decodeErrors   prometheus.Counter
	pingsSent      prometheus.Counter
	actionsTotal   *prometheus.CounterVec
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_sessions",
			Help:        "Number of open WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "sessions_total",
			Help:        "Total number of accepted WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		sessionsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "sessions_closed_total",
			Help:        "Total number of closed WebSocket sessions by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frames_total",
			Help:        "Total number of inbound frames by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "decode_errors_total",
			Help:        "Total number of malformed client messages",
			ConstLabels: config.ConstLabels,
		}),

		pingsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "pings_sent_total",
			Help:        "Total number of heartbeat pings sent",
			ConstLabels: config.ConstLabels,
		}),

		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "actions_total",
			Help:        "Total number of action submissions by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),
	}
}

// SessionOpened records an accepted session
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsTotal.Inc()
	m.activeSessions.Inc()
}

// SessionClosed records a finished session and why it ended
func (m *Metrics) SessionClosed(reason string) {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
	m.sessionsClosed.WithLabelValues(reason).Inc()
}

// FrameReceived records an inbound frame of the given kind
func (m *Metrics) FrameReceived(kind string) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(kind).Inc()
}

// DecodeError records a malformed client message
func (m *Metrics) DecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}

// PingSent records a heartbeat ping
func (m *Metrics) PingSent() {
	if m == nil {
		return
	}
	m.pingsSent.Inc()
}

// ActionSubmitted records an action submission outcome
// ("accepted", "unknown", "closed").
func (m *Metrics) ActionSubmitted(result string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(result).Inc()
}

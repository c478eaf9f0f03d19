// Package metrics exposes the Prometheus surface named in spec §6
// "HTTP surface": commands, reconnects, sessions, games.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks the runtime's Prometheus metrics. All methods handle a
// nil receiver gracefully so a disabled metrics pipeline is zero-cost.
type Metrics struct {
	CommandsTotal     *prometheus.CounterVec // labels: type
	CommandsAccepted  *prometheus.CounterVec // labels: type
	CommandsRejected  *prometheus.CounterVec // labels: type, code
	ReconnectAttempted prometheus.Counter
	ReconnectSucceeded prometheus.Counter
	ReconnectFailed    prometheus.Counter
	SessionsActive     prometheus.Gauge
	SessionsPeak       prometheus.Gauge
	GamesStarted       prometheus.Counter
	GamesCompleted     prometheus.Counter
	GamesForfeited     prometheus.Counter
	CommandLatency     *prometheus.HistogramVec // labels: type

	peakMu sync.Mutex
	peak   int
}

// New constructs and registers the runtime's metrics against registerer.
// A nil registerer uses prometheus.DefaultRegisterer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fun_euchre_commands_total",
			Help: "Commands received, by command type.",
		}, []string{"type"}),
		CommandsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fun_euchre_commands_accepted_total",
			Help: "Commands accepted, by command type.",
		}, []string{"type"}),
		CommandsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fun_euchre_commands_rejected_total",
			Help: "Commands rejected, by command type and reject code.",
		}, []string{"type", "code"}),
		ReconnectAttempted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fun_euchre_reconnect_attempted_total",
			Help: "Reconnect attempts observed.",
		}),
		ReconnectSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fun_euchre_reconnect_succeeded_total",
			Help: "Reconnect attempts that restored a session.",
		}),
		ReconnectFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fun_euchre_reconnect_failed_total",
			Help: "Reconnect attempts rejected by token verification.",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fun_euchre_sessions_active",
			Help: "Currently connected sessions.",
		}),
		SessionsPeak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fun_euchre_sessions_peak",
			Help: "Highest observed concurrent session count.",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fun_euchre_games_started_total",
			Help: "Games started from a lobby.",
		}),
		GamesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fun_euchre_games_completed_total",
			Help: "Games that reached phase=completed by play.",
		}),
		GamesForfeited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fun_euchre_games_forfeited_total",
			Help: "Games completed by reconnect-policy forfeit.",
		}),
		CommandLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fun_euchre_command_latency_seconds",
			Help:    "Command processing latency, by command type.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
	}
	registerer.MustRegister(
		m.CommandsTotal, m.CommandsAccepted, m.CommandsRejected,
		m.ReconnectAttempted, m.ReconnectSucceeded, m.ReconnectFailed,
		m.SessionsActive, m.SessionsPeak,
		m.GamesStarted, m.GamesCompleted, m.GamesForfeited,
		m.CommandLatency,
	)
	return m
}

func (m *Metrics) ObserveCommand(commandType string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(commandType).Inc()
}

func (m *Metrics) ObserveAccepted(commandType string) {
	if m == nil {
		return
	}
	m.CommandsAccepted.WithLabelValues(commandType).Inc()
}

func (m *Metrics) ObserveRejected(commandType, code string) {
	if m == nil {
		return
	}
	m.CommandsRejected.WithLabelValues(commandType, code).Inc()
}

func (m *Metrics) ObserveLatencySeconds(commandType string, seconds float64) {
	if m == nil {
		return
	}
	m.CommandLatency.WithLabelValues(commandType).Observe(seconds)
}

// ForfeitOccurred satisfies sweeper.Metrics.
func (m *Metrics) ForfeitOccurred() {
	if m == nil {
		return
	}
	m.GamesForfeited.Inc()
}

// SetSessionsActive updates the live session gauge and, if n is a new
// high-water mark, the peak gauge alongside it.
func (m *Metrics) SetSessionsActive(n int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(n))
	m.peakMu.Lock()
	if n > m.peak {
		m.peak = n
		m.SessionsPeak.Set(float64(n))
	}
	m.peakMu.Unlock()
}

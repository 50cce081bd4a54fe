package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the matching pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Evaluations      *prometheus.CounterVec
	GateRejections   *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	GuardRewrites    *prometheus.CounterVec
	BotUpdates       *prometheus.CounterVec
	ExtractionTime   prometheus.Histogram
	RateLimitedTotal prometheus.Counter
}

// New registers the collectors with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors with reg, so tests can use a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hitched_evaluations_total",
			Help: "Total number of compatibility evaluations, labeled by grade",
		}, []string{"grade"}),
		GateRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hitched_gate_rejections_total",
			Help: "Total number of evaluations rejected by a hard gate, labeled by gate",
		}, []string{"gate"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hitched_transitions_total",
			Help: "Total number of lifecycle transition requests, labeled by target status and outcome",
		}, []string{"to", "outcome"}),
		GuardRewrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hitched_guard_rewrites_total",
			Help: "Total number of strings rewritten by a safety guard, labeled by guard and category",
		}, []string{"guard", "category"}),
		BotUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hitched_bot_updates_total",
			Help: "Total number of Telegram updates handled, labeled by command",
		}, []string{"command"}),
		ExtractionTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hitched_extraction_duration_seconds",
			Help:    "Latency of transcript extraction in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RateLimitedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "hitched_rate_limited_total",
			Help: "Total number of updates dropped by the per-user rate limiter",
		}),
	}
}

func (m *Metrics) ObserveEvaluation(grade, gate string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(grade).Inc()
	if gate != "" {
		m.GateRejections.WithLabelValues(gate).Inc()
	}
}

func (m *Metrics) ObserveTransition(to string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	m.Transitions.WithLabelValues(to, outcome).Inc()
}

func (m *Metrics) ObserveGuardRewrite(guard, category string) {
	if m == nil {
		return
	}
	m.GuardRewrites.WithLabelValues(guard, category).Inc()
}

func (m *Metrics) ObserveBotUpdate(command string) {
	if m == nil {
		return
	}
	m.BotUpdates.WithLabelValues(command).Inc()
}

func (m *Metrics) ObserveExtraction(seconds float64) {
	if m == nil {
		return
	}
	m.ExtractionTime.Observe(seconds)
}

func (m *Metrics) IncrementRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}

package observability

import (
	"context"
	"errors"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "waypoint"

// Metrics holds the collectors describing journey activity.
type Metrics struct {
	stages    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	decisions *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_arrivals_total",
				Help:      "Arrivals at a journey stage, by cause.",
			},
			[]string{"journey", "stage", "type"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transition_failures_total",
				Help:      "Transitions that could not be resolved, by error kind.",
			},
			[]string{"journey", "event", "kind"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Decision stages traversed while resolving transitions.",
			},
			[]string{"journey", "decision"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transition_duration_seconds",
				Help:      "Time to resolve a transition, decisions included.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"journey"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.stages, m.failures, m.decisions, m.duration)
	}
	return m
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStage:   m.observeStage,
		OnFailure: m.observeFailure,
	}
}

func (m *Metrics) observeStage(_ context.Context, e *domain.JourneyEvent) {
	m.stages.WithLabelValues(e.Journey, e.To, string(e.Type)).Inc()
	for _, d := range e.Decisions {
		m.decisions.WithLabelValues(e.Journey, d).Inc()
	}
	if e.Type == domain.HookTransition {
		m.duration.WithLabelValues(e.Journey).Observe(e.Duration.Seconds())
	}
}

func (m *Metrics) observeFailure(_ context.Context, e *domain.FailureEvent) {
	m.failures.WithLabelValues(e.Journey, e.Event, Kind(e.Err)).Inc()
}

// Kind classifies an engine error for labelling.
func Kind(err error) string {
	switch {
	case errors.Is(err, domain.ErrArgumentMismatch):
		return "argument"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "abandoned"
	case errors.Is(err, domain.ErrResolution):
		return "resolution"
	case errors.Is(err, domain.ErrFormat), errors.Is(err, domain.ErrNoJourney):
		return "format"
	case errors.Is(err, domain.ErrUnknownJourney):
		return "unknown_journey"
	default:
		return "other"
	}
}

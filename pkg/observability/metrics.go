package observability

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/digest/pkg/domain"
)

// Namespace prefixes every metric name.
const Namespace = "digest"

// Metrics holds the pipeline collectors.
type Metrics struct {
	StepVisits   *prometheus.CounterVec
	StepErrors   *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	Runs         *prometheus.CounterVec
	Retries      prometheus.Histogram
	InFlight     prometheus.Gauge

	mu      sync.Mutex
	running map[string]struct{}
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		StepVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "step_visits_total",
			Help:      "Total number of step executions",
		}, []string{"step"}),
		StepErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "step_errors_total",
			Help:      "Steps that recorded an error",
		}, []string{"step"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of step executions",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"step"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Finished runs by status and style",
		}, []string{"status", "style"}),
		Retries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_retries",
			Help:      "Retry edge traversals per finished run",
			Buckets:   prometheus.LinearBuckets(0, 1, 6),
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "runs_in_flight",
			Help:      "Runs currently executing",
		}),
		running: make(map[string]struct{}),
	}

	for _, c := range []prometheus.Collector{m.StepVisits, m.StepErrors, m.StepDuration, m.Runs, m.Retries, m.InFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.track(e.RunID)
			m.StepVisits.WithLabelValues(e.Step).Inc()
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			m.StepDuration.WithLabelValues(e.Step).Observe(e.Duration.Seconds())
			if e.Error != "" {
				m.StepErrors.WithLabelValues(e.Step).Inc()
			}
		},
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			m.Runs.WithLabelValues(string(e.Status), string(e.Style)).Inc()
			m.Retries.Observe(float64(e.RetryCount))
			m.untrack(e.RunID)
		},
	}
}

// track counts a run as in flight on its first step of a pass.
func (m *Metrics) track(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.running[runID]; ok {
		return
	}
	m.running[runID] = struct{}{}
	m.InFlight.Inc()
}

func (m *Metrics) untrack(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.running[runID]; !ok {
		return
	}
	delete(m.running, runID)
	m.InFlight.Dec()
}

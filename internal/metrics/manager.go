package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Save results recorded by CounterSaves.
const (
	SaveOK    = "ok"
	SaveError = "error"
)

type Manager struct {
	// counters
	CounterRequests    *prometheus.CounterVec
	CounterAdjustments *prometheus.CounterVec
	CounterSaves       *prometheus.CounterVec
	CounterSessions    prometheus.Counter

	// histograms
	HistRequestDuration prometheus.Histogram
	HistSaveDuration    prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("runplan", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("runplan", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterAdjustments := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "plan_adjustments",
		Help:      "Adaptive adjustments applied to the following week",
	}, []string{"direction"})
	counterSaves := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "plan_saves",
		Help:      "Plan document saves by result",
	}, []string{"result"})
	counterSessions := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions_logged",
		Help:      "The total number of session updates",
	})

	histReqDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		Name:      "request_duration_seconds",
		Help:      "Total duration of requests in seconds",
	})
	histSaveDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		Name:      "plan_save_duration_seconds",
		Help:      "Duration of a single plan save in seconds",
	})

	return &Manager{
		CounterRequests:     counterRequests,
		CounterAdjustments:  counterAdjustments,
		CounterSaves:        counterSaves,
		CounterSessions:     counterSessions,
		HistRequestDuration: histReqDuration,
		HistSaveDuration:    histSaveDuration,
	}
}

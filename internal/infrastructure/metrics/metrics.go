package metrics

import (
	"net/http"
	"time"

	"stock-advisor/internal/application/port/output"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ output.MetricsPort = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	AnalysisSteps    prometheus.Histogram

	// Tool metrics
	ToolCallsTotal        *prometheus.CounterVec
	ToolCallDuration      *prometheus.HistogramVec
	ToolCallFailuresTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_analyses_total",
				Help: "Total number of analyses by terminal state",
			},
			[]string{"state"},
		),
		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_analysis_duration_seconds",
				Help:    "Duration of analyses in seconds",
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"state"},
		),
		AnalysisSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "advisor_analysis_iterations",
				Help:    "LLM iterations used per analysis",
				Buckets: prometheus.LinearBuckets(1, 1, 12),
			},
		),

		ToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_tool_calls_total",
				Help: "Total number of tool dispatches",
			},
			[]string{"tool_name", "status"},
		),
		ToolCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_tool_call_duration_seconds",
				Help:    "Duration of tool dispatches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool_name"},
		),
		ToolCallFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_tool_call_failures_total",
				Help: "Total number of tool dispatches that produced an error observation",
			},
			[]string{"tool_name"},
		),
	}

	m.registry.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.AnalysisSteps,
		m.ToolCallsTotal,
		m.ToolCallDuration,
		m.ToolCallFailuresTotal,
	)

	return m
}

func (m *Metrics) ObserveAnalysis(state string, steps int, d time.Duration) {
	m.AnalysesTotal.WithLabelValues(state).Inc()
	m.AnalysisDuration.WithLabelValues(state).Observe(d.Seconds())
	m.AnalysisSteps.Observe(float64(steps))
}

func (m *Metrics) ObserveToolCall(tool string, failed bool, d time.Duration) {
	status := "ok"
	if failed {
		status = "error"
		m.ToolCallFailuresTotal.WithLabelValues(tool).Inc()
	}
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
	m.ToolCallDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

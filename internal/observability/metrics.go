package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	progressComputations *prometheus.CounterVec
	gradingEventsTotal   *prometheus.CounterVec
	latePenaltiesTotal   prometheus.Counter
	totalScoreRecomputes *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		progressComputations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_computations_total",
			Help: "Course progress computations by outcome.",
		}, []string{"result"})

		gradingEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_events_total",
			Help: "Grading events published, by kind.",
		}, []string{"kind"})

		latePenaltiesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "late_penalties_applied_total",
			Help: "Number of graded responses that received the late submission penalty.",
		})

		totalScoreRecomputes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "total_score_recomputes_total",
			Help: "Student total score recomputations by outcome.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			progressComputations,
			gradingEventsTotal,
			latePenaltiesTotal,
			totalScoreRecomputes,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ProgressComputations counts course progress computations.
func ProgressComputations() *prometheus.CounterVec {
	RegisterMetrics()
	return progressComputations
}

// GradingEvents counts published grading events.
func GradingEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingEventsTotal
}

// LatePenalties counts applied late penalties.
func LatePenalties() prometheus.Counter {
	RegisterMetrics()
	return latePenaltiesTotal
}

// TotalScoreRecomputes counts total score recomputations.
func TotalScoreRecomputes() *prometheus.CounterVec {
	RegisterMetrics()
	return totalScoreRecomputes
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmos_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cosmos_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RateLimiterRejections counts requests rejected by the per-user limiter
	RateLimiterRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmos_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)

	// AnswersTotal counts recorded outcomes by mode and result
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmos_answers_total",
			Help: "Total number of answers recorded",
		},
		[]string{"mode", "result"},
	)

	// SessionsCompleted counts attempts that reached completion
	SessionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmos_sessions_completed_total",
			Help: "Total number of completed play sessions",
		},
		[]string{"mode"},
	)

	// ActiveSessions tracks live play sessions held in memory
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cosmos_active_sessions",
			Help: "Number of live play sessions",
		},
	)

	// PersistFailures counts attempt saves that failed
	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmos_attempt_persist_failures_total",
			Help: "Total number of failed attempt saves",
		},
		[]string{"mode"},
	)

	// JobDuration measures background job run time
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cosmos_job_duration_seconds",
			Help:    "Background job duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job", "status"},
	)
)

// RecordAnswer counts one recorded outcome
func RecordAnswer(mode string, correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	AnswersTotal.WithLabelValues(mode, result).Inc()
}

// RecordJob records the duration of a finished job
func RecordJob(job string, err error, start time.Time) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	JobDuration.WithLabelValues(job, status).Observe(time.Since(start).Seconds())
}

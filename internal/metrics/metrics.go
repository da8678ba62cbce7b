package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Classification latency across all three models (seconds)
	ClassifyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_classify_duration_seconds",
			Help:    "Time spent running the spam, category and urgency models",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"model", "status"},
	)

	EmailsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_classified_total",
			Help: "Total number of emails appended to the session",
		},
		[]string{"spam", "urgency"},
	)

	SubmissionsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "email_submissions_rejected_total",
			Help: "Submissions rejected for a blank subject or body",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_cache_lookups_total",
			Help: "Prediction cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordClassifyDuration records how long one prediction took
func RecordClassifyDuration(model, status string, duration time.Duration) {
	ClassifyDuration.WithLabelValues(model, status).Observe(duration.Seconds())
}

// IncrementEmailClassified counts an appended record
func IncrementEmailClassified(spam, urgency string) {
	EmailsClassified.WithLabelValues(spam, urgency).Inc()
}

// IncrementSubmissionRejected counts a rejected submission
func IncrementSubmissionRejected() {
	SubmissionsRejected.Inc()
}

// IncrementCacheLookup counts a cache hit or miss
func IncrementCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequestDuration records HTTP request latency
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	testsGradedTotal         *prometheus.CounterVec
	gradingLatencySeconds    prometheus.Histogram
	homeworkSubmissionsTotal *prometheus.CounterVec
	submissionReviewsTotal   *prometheus.CounterVec
	httpRequestsTotal        *prometheus.CounterVec
	httpLatencySeconds       *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors for the grading and
// homework workflows.
func RegisterMetrics() {
	registerOnce.Do(func() {
		testsGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tests_graded_total",
			Help: "Total number of test submissions graded, by subject.",
		}, []string{"subject"})

		gradingLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grading_latency_seconds",
			Help:    "Latency distribution for grading a test submission.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		homeworkSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homework_submissions_total",
			Help: "Homework submission attempts by outcome.",
		}, []string{"outcome"})

		submissionReviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_reviews_total",
			Help: "Completed submission reviews by resulting status.",
		}, []string{"status"})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(testsGradedTotal, gradingLatencySeconds, homeworkSubmissionsTotal, submissionReviewsTotal, httpRequestsTotal, httpLatencySeconds)
	})
}

// TestsGraded exposes the counter for graded test submissions.
func TestsGraded() *prometheus.CounterVec {
	RegisterMetrics()
	return testsGradedTotal
}

// GradingLatency exposes the grading latency histogram.
func GradingLatency() prometheus.Histogram {
	RegisterMetrics()
	return gradingLatencySeconds
}

// HomeworkSubmissions exposes the counter for homework submission attempts.
func HomeworkSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return homeworkSubmissionsTotal
}

// SubmissionReviews exposes the counter for completed reviews.
func SubmissionReviews() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionReviewsTotal
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

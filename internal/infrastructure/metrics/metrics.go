package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Storefront metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colormuse",
			Subsystem: "web",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "colormuse",
			Subsystem: "web",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	PreviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colormuse",
			Subsystem: "web",
			Name:      "previews_total",
			Help:      "Preview generation attempts",
		},
		[]string{"status"},
	)

	WidgetRendersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "colormuse",
			Subsystem: "web",
			Name:      "payment_widget_renders_total",
			Help:      "Payment buttons rendered, at most one per session",
		},
	)

	PaymentCallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colormuse",
			Subsystem: "web",
			Name:      "payment_callbacks_total",
			Help:      "Payment button callbacks by kind and outcome",
		},
		[]string{"callback", "status"},
	)

	OrderSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colormuse",
			Subsystem: "web",
			Name:      "order_submissions_total",
			Help:      "Shipping form submissions",
		},
		[]string{"status"},
	)

	ConfirmationJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colormuse",
			Subsystem: "web",
			Name:      "confirmation_jobs_total",
			Help:      "Processed confirmation jobs",
		},
		[]string{"status"},
	)

	ProofsBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colormuse",
			Subsystem: "web",
			Name:      "proofs_built_total",
			Help:      "Proof PDFs rendered",
		},
		[]string{"status"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordPreview records a preview generation attempt
func RecordPreview(err error) {
	PreviewsTotal.WithLabelValues(statusOf(err)).Inc()
}

// RecordWidgetRender records a newly rendered payment button
func RecordWidgetRender(rendered bool) {
	if rendered {
		WidgetRendersTotal.Inc()
	}
}

// RecordPaymentCallback records a createOrder, onApprove or onError callback
func RecordPaymentCallback(callback string, err error) {
	PaymentCallbacksTotal.WithLabelValues(callback, statusOf(err)).Inc()
}

// RecordSubmission records a shipping form submission
func RecordSubmission(err error) {
	OrderSubmissionsTotal.WithLabelValues(statusOf(err)).Inc()
}

// RecordConfirmation records a processed confirmation job
func RecordConfirmation(err error) {
	ConfirmationJobsTotal.WithLabelValues(statusOf(err)).Inc()
}

// RecordProof records a proof rendering
func RecordProof(err error) {
	ProofsBuiltTotal.WithLabelValues(statusOf(err)).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntakeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visadesk_intake_total",
			Help: "Intake submissions by outcome",
		},
		[]string{"outcome"},
	)

	ImageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visadesk_image_uploads_total",
			Help: "Per-file image uploads by outcome",
		},
		[]string{"outcome"},
	)

	LookupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visadesk_lookup_total",
			Help: "Lookups by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "visadesk_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

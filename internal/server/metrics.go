package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visage_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "visage_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Detection processing metrics
	detectRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visage_detect_requests_total",
			Help: "Total number of detection requests",
		},
		[]string{"type", "status"}, // type: image, crop, websocket
	)

	detectProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "visage_detect_processing_duration_seconds",
			Help:    "Detection processing duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"type"},
	)

	facesDetected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "visage_faces_detected",
			Help:    "Number of faces detected per request",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50},
		},
		[]string{"type"},
	)

	// Backpressure metrics
	busyRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visage_busy_rejections_total",
			Help: "Total number of requests rejected because the pipeline was saturated",
		},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visage_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour, requests, data
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "visage_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "visage_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visage_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

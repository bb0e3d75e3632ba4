package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medocr_http_requests_total",
		Help: "Total HTTP requests by method, endpoint and status code.",
	}, []string{"method", "endpoint", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "medocr_http_request_duration_seconds",
		Help:    "HTTP request latency by method and endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	ocrRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medocr_ocr_requests_total",
		Help: "OCR requests by upload type and outcome.",
	}, []string{"type", "status"})

	ocrDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medocr_ocr_processing_duration_seconds",
		Help:    "End to end OCR processing time per request.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	ocrTextLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medocr_ocr_text_length_chars",
		Help:    "Characters of text recognized per request.",
		Buckets: []float64{0, 10, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	ocrEntities = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medocr_ocr_entities_matched",
		Help:    "Medical entities matched per request.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	uploadSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medocr_upload_size_bytes",
		Help:    "Upload payload sizes.",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	rateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medocr_rate_limit_hits_total",
		Help: "Requests rejected by the rate limiter.",
	})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "medocr_websocket_active_connections",
		Help: "Currently open WebSocket connections.",
	})

	wsMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medocr_websocket_messages_total",
		Help: "WebSocket messages by direction.",
	}, []string{"direction"})
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

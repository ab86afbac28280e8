// Package server exposes the detection pipeline over HTTP and WebSocket.
package server

import (
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/visage/internal/detector"
	"github.com/MeKo-Tech/visage/internal/pipeline"
	"github.com/MeKo-Tech/visage/internal/utils"
)

// pipelineInterface defines the methods needed by the server from a pipeline.
type pipelineInterface interface {
	ProcessImage(img image.Image) (*pipeline.DetectionResult, error)
	CropFaces(img image.Image, faces []detector.Face) []string
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline     pipelineInterface
	rateLimiter  *RateLimiter
	corsOrigin   string
	maxUploadMB  int64
	maxImageSize int
	timeoutSec   int
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	MaxImageSize   int // largest accepted image dimension in pixels
	TimeoutSec     int
	PipelineConfig pipeline.Config
	RateLimit      RateLimitConfig
}

// HealthResponse is the payload of the /health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorResponse is the JSON envelope for failed requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CropRequest is the payload of the /crop endpoint: a transport-encoded
// image plus candidate face rectangles to cut out of it.
type CropRequest struct {
	ImageData string    `json:"image_data"`
	Faces     []FaceRef `json:"faces"`
}

// FaceRef is a candidate face rectangle in a crop request.
type FaceRef struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CropResponse is the payload returned by the /crop endpoint.
type CropResponse struct {
	CroppedFaces []string `json:"cropped_faces"`
	Count        int      `json:"count"`
}

// NewServer creates a new detection server instance.
func NewServer(config Config) (*Server, error) {
	cfg := config.PipelineConfig

	pl, err := pipeline.NewBuilder().
		WithMinDimension(cfg.MinDimension).
		WithConfidenceThreshold(cfg.ConfidenceThreshold).
		WithAnnotateOptions(cfg.Annotate).
		WithEncodeOptions(cfg.Encode).
		WithIncludeOriginal(cfg.IncludeOriginal).
		WithCropFaces(cfg.CropFaces).
		WithWorkers(cfg.Workers, cfg.QueueDepth).
		Build()
	if err != nil {
		return nil, err
	}

	var limiter *RateLimiter
	if config.RateLimit.Enabled {
		limiter = NewRateLimiter(
			config.RateLimit.RequestsPerMinute,
			config.RateLimit.RequestsPerHour,
			config.RateLimit.MaxRequestsPerDay,
			config.RateLimit.MaxDataPerDay,
		)
	}

	maxImageSize := config.MaxImageSize
	if maxImageSize <= 0 {
		maxImageSize = utils.DefaultImageConstraints().MaxWidth
	}

	return &Server{
		pipeline:     pl,
		rateLimiter:  limiter,
		corsOrigin:   config.CORSOrigin,
		maxUploadMB:  config.MaxUploadMB,
		maxImageSize: maxImageSize,
		timeoutSec:   config.TimeoutSec,
	}, nil
}

// imageConstraints returns the dimension constraints enforced on decoded
// uploads.
func (s *Server) imageConstraints() utils.ImageConstraints {
	return utils.ImageConstraints{
		MaxWidth:  s.maxImageSize,
		MaxHeight: s.maxImageSize,
		MinWidth:  1,
		MinHeight: 1,
	}
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/detect", s.corsMiddleware(s.rateLimitMiddleware(s.detectHandler)))
	mux.HandleFunc("/crop", s.corsMiddleware(s.rateLimitMiddleware(s.cropHandler)))
	mux.HandleFunc("/detect/ws", s.detectWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

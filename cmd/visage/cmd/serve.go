package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/visage/internal/pipeline"
	"github.com/MeKo-Tech/visage/internal/render"
	"github.com/MeKo-Tech/visage/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the face detection API",
	Long: `Start an HTTP server that provides REST API endpoints for face
detection.

The server provides the following endpoints:
  POST /detect    - Detect faces in an uploaded image
  POST /crop      - Extract face crops from an encoded image
  GET  /detect/ws - WebSocket endpoint for streaming detection
  GET  /health    - Health check endpoint
  GET  /metrics   - Prometheus metrics

Examples:
  visage serve
  visage serve --port 8080
  visage serve --host 0.0.0.0 --port 3000`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	host := cfg.Server.Host
	if cmd.Flags().Changed("host") {
		host, _ = cmd.Flags().GetString("host")
	}

	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}

	corsOrigin := cfg.Server.CORSOrigin
	if cmd.Flags().Changed("cors-origin") {
		corsOrigin, _ = cmd.Flags().GetString("cors-origin")
	}

	maxUploadMB := cfg.Server.MaxUploadMB
	if cmd.Flags().Changed("max-upload-size") {
		maxUploadMB, _ = cmd.Flags().GetInt("max-upload-size")
	}

	timeout := cfg.Server.TimeoutSec
	if cmd.Flags().Changed("timeout") {
		timeout, _ = cmd.Flags().GetInt("timeout")
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if cmd.Flags().Changed("shutdown-timeout") {
		shutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
	}

	rateLimitEnabled := cfg.Server.RateLimitEnabled
	if cmd.Flags().Changed("rate-limit-enabled") {
		rateLimitEnabled, _ = cmd.Flags().GetBool("rate-limit-enabled")
	}

	requestsPerMinute := cfg.Server.RequestsPerMinute
	if cmd.Flags().Changed("requests-per-minute") {
		requestsPerMinute, _ = cmd.Flags().GetInt("requests-per-minute")
	}

	requestsPerHour := cfg.Server.RequestsPerHour
	if cmd.Flags().Changed("requests-per-hour") {
		requestsPerHour, _ = cmd.Flags().GetInt("requests-per-hour")
	}

	maxRequestsPerDay := cfg.Server.MaxRequestsPerDay
	if cmd.Flags().Changed("max-requests-per-day") {
		maxRequestsPerDay, _ = cmd.Flags().GetInt("max-requests-per-day")
	}

	maxDataPerDay := cfg.Server.MaxDataPerDay
	if cmd.Flags().Changed("max-data-per-day") {
		maxDataPerDay, _ = cmd.Flags().GetInt64("max-data-per-day")
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pCfg := pipeline.DefaultConfig()
	pCfg.MinDimension = cfg.Pipeline.Detector.MinDimension
	pCfg.ConfidenceThreshold = cfg.Pipeline.Detector.ConfidenceThreshold
	pCfg.Encode = pipeline.EncodeOptions{
		Format:      cfg.Pipeline.Encode.Format,
		JPEGQuality: cfg.Pipeline.Encode.JPEGQuality,
	}
	pCfg.Workers = cfg.Pipeline.Workers
	pCfg.QueueDepth = cfg.Pipeline.QueueDepth

	annotate := render.DefaultOptions()
	if c := parseHexColor(cfg.Pipeline.Annotate.BoxColor); c != nil {
		annotate.Color = c
	}
	if cfg.Pipeline.Annotate.Thickness > 0 {
		annotate.Thickness = cfg.Pipeline.Annotate.Thickness
	}
	annotate.DrawLabels = cfg.Pipeline.Annotate.DrawLabels
	pCfg.Annotate = annotate

	serverConfig := server.Config{
		Host:           host,
		Port:           port,
		CORSOrigin:     corsOrigin,
		MaxUploadMB:    int64(maxUploadMB),
		MaxImageSize:   cfg.Pipeline.Detector.MaxImageSize,
		TimeoutSec:     timeout,
		PipelineConfig: pCfg,
		RateLimit: server.RateLimitConfig{
			Enabled:           rateLimitEnabled,
			RequestsPerMinute: requestsPerMinute,
			RequestsPerHour:   requestsPerHour,
			MaxRequestsPerDay: maxRequestsPerDay,
			MaxDataPerDay:     maxDataPerDay,
		},
	}

	detectServer, err := server.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer func() { _ = detectServer.Close() }()

	mux := http.NewServeMux()
	detectServer.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(timeout) * time.Second,
		WriteTimeout:      time.Duration(timeout) * time.Second,
	}

	go func() {
		slog.Info("Starting detection server", "host", host, "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled, initiating shutdown")
	}

	slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server shutdown completed")
	}

	if err := detectServer.Close(); err != nil {
		slog.Error("Server cleanup error", "error", err)
	}

	slog.Info("Graceful shutdown completed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 50, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	// Rate limiting flags
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 60, "maximum requests per minute per client")
	serveCmd.Flags().Int("requests-per-hour", 1000, "maximum requests per hour per client")
	serveCmd.Flags().Int("max-requests-per-day", 10000, "maximum requests per day per client")
	serveCmd.Flags().Int64("max-data-per-day", 1<<30, "maximum data processed per day per client (bytes)")
}

// Package config defines the application configuration and its loading from
// files, environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"
)

// Config represents the complete configuration for the visage application.
// It covers all commands (detect, serve) and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Pipeline configuration
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// PipelineConfig contains detection pipeline settings.
type PipelineConfig struct {
	Detector DetectorConfig `mapstructure:"detector" yaml:"detector" json:"detector"`
	Annotate AnnotateConfig `mapstructure:"annotate" yaml:"annotate" json:"annotate"`
	Encode   EncodeConfig   `mapstructure:"encode" yaml:"encode" json:"encode"`

	// Bounded re-encode concurrency
	Workers    int `mapstructure:"workers" yaml:"workers" json:"workers"`
	QueueDepth int `mapstructure:"queue_depth" yaml:"queue_depth" json:"queue_depth"`
}

// DetectorConfig contains face detection settings.
type DetectorConfig struct {
	MinDimension        int     `mapstructure:"min_dimension" yaml:"min_dimension" json:"min_dimension"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold" json:"confidence_threshold"`
	MaxImageSize        int     `mapstructure:"max_image_size" yaml:"max_image_size" json:"max_image_size"`
}

// AnnotateConfig contains annotation rendering settings.
type AnnotateConfig struct {
	BoxColor   string `mapstructure:"box_color" yaml:"box_color" json:"box_color"`
	Thickness  int    `mapstructure:"thickness" yaml:"thickness" json:"thickness"`
	DrawLabels bool   `mapstructure:"draw_labels" yaml:"draw_labels" json:"draw_labels"`
}

// EncodeConfig contains output image encoding settings.
type EncodeConfig struct {
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	JPEGQuality int    `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
}

// OutputConfig contains CLI output formatting settings.
type OutputConfig struct {
	Format    string `mapstructure:"format" yaml:"format" json:"format"`
	File      string `mapstructure:"file" yaml:"file" json:"file"`
	CropDir   string `mapstructure:"crop_dir" yaml:"crop_dir" json:"crop_dir"`
	OverlayTo string `mapstructure:"overlay_to" yaml:"overlay_to" json:"overlay_to"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// Rate limiting
	RateLimitEnabled  bool  `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDay     int64 `mapstructure:"max_data_per_day" yaml:"max_data_per_day" json:"max_data_per_day"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Pipeline: PipelineConfig{
			Detector: DetectorConfig{
				MinDimension:        200,
				ConfidenceThreshold: 0.5,
				MaxImageSize:        8192,
			},
			Annotate: AnnotateConfig{
				BoxColor:   "#00FF00",
				Thickness:  1,
				DrawLabels: true,
			},
			Encode: EncodeConfig{
				Format:      "jpeg",
				JPEGQuality: 85,
			},
			Workers:    0,
			QueueDepth: -1,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			CORSOrigin:        "*",
			MaxUploadMB:       50,
			TimeoutSec:        30,
			ShutdownTimeout:   10,
			RateLimitEnabled:  false,
			RequestsPerMinute: 60,
			RequestsPerHour:   1000,
			MaxRequestsPerDay: 10000,
			MaxDataPerDay:     1 << 30,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}

	d := c.Pipeline.Detector
	if d.ConfidenceThreshold < 0 || d.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1], got %g", d.ConfidenceThreshold)
	}
	if d.MinDimension < 0 {
		return fmt.Errorf("min_dimension must be non-negative, got %d", d.MinDimension)
	}
	if d.MaxImageSize <= 0 {
		return fmt.Errorf("max_image_size must be positive, got %d", d.MaxImageSize)
	}

	e := c.Pipeline.Encode
	switch e.Format {
	case "jpeg", "png":
	default:
		return fmt.Errorf("invalid encode format: %q", e.Format)
	}
	if e.Format == "jpeg" && (e.JPEGQuality < 1 || e.JPEGQuality > 100) {
		return fmt.Errorf("jpeg_quality must be in [1,100], got %d", e.JPEGQuality)
	}

	if !strings.HasPrefix(c.Pipeline.Annotate.BoxColor, "#") {
		return fmt.Errorf("box_color must be a #RRGGBB hex color, got %q", c.Pipeline.Annotate.BoxColor)
	}

	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", s.Port)
	}
	if s.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", s.MaxUploadMB)
	}
	return nil
}

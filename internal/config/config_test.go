package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 200, cfg.Pipeline.Detector.MinDimension)
	assert.InDelta(t, 0.5, cfg.Pipeline.Detector.ConfidenceThreshold, 1e-9)
	assert.Equal(t, "jpeg", cfg.Pipeline.Encode.Format)
	assert.Equal(t, 85, cfg.Pipeline.Encode.JPEGQuality)
	assert.Equal(t, "#00FF00", cfg.Pipeline.Annotate.BoxColor)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Server.MaxUploadMB)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: "log_level",
		},
		{
			name:    "confidence threshold above one",
			mutate:  func(c *Config) { c.Pipeline.Detector.ConfidenceThreshold = 1.5 },
			wantErr: "confidence_threshold",
		},
		{
			name:    "negative min dimension",
			mutate:  func(c *Config) { c.Pipeline.Detector.MinDimension = -1 },
			wantErr: "min_dimension",
		},
		{
			name:    "unsupported encode format",
			mutate:  func(c *Config) { c.Pipeline.Encode.Format = "webp" },
			wantErr: "encode format",
		},
		{
			name:    "jpeg quality out of range",
			mutate:  func(c *Config) { c.Pipeline.Encode.JPEGQuality = 0 },
			wantErr: "jpeg_quality",
		},
		{
			name: "png ignores jpeg quality",
			mutate: func(c *Config) {
				c.Pipeline.Encode.Format = "png"
				c.Pipeline.Encode.JPEGQuality = 0
			},
		},
		{
			name:    "box color without hash",
			mutate:  func(c *Config) { c.Pipeline.Annotate.BoxColor = "00FF00" },
			wantErr: "box_color",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "port",
		},
		{
			name:    "zero upload limit",
			mutate:  func(c *Config) { c.Server.MaxUploadMB = 0 },
			wantErr: "max_upload_mb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 9090
	cfg.Pipeline.Detector.MinDimension = 300

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, 9090, decoded.Server.Port)
	assert.Equal(t, 300, decoded.Pipeline.Detector.MinDimension)
	assert.Equal(t, cfg.Pipeline.Encode, decoded.Pipeline.Encode)
}

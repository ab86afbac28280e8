package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "visage"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "VISAGE"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
// It uses the global viper instance so that cobra flag bindings apply.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWith creates a loader around a specific viper instance.
// Useful for tests that must not share global state.
func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads configuration from files, environment variables, and defaults,
// then validates the result.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.LoadWithoutValidation()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation loads configuration from files, environment variables,
// and defaults without validating the result.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	l.v.AddConfigPath("/etc/visage")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "visage"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "visage"))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := Default()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("pipeline.detector.min_dimension", defaults.Pipeline.Detector.MinDimension)
	l.v.SetDefault("pipeline.detector.confidence_threshold", defaults.Pipeline.Detector.ConfidenceThreshold)
	l.v.SetDefault("pipeline.detector.max_image_size", defaults.Pipeline.Detector.MaxImageSize)

	l.v.SetDefault("pipeline.annotate.box_color", defaults.Pipeline.Annotate.BoxColor)
	l.v.SetDefault("pipeline.annotate.thickness", defaults.Pipeline.Annotate.Thickness)
	l.v.SetDefault("pipeline.annotate.draw_labels", defaults.Pipeline.Annotate.DrawLabels)

	l.v.SetDefault("pipeline.encode.format", defaults.Pipeline.Encode.Format)
	l.v.SetDefault("pipeline.encode.jpeg_quality", defaults.Pipeline.Encode.JPEGQuality)

	l.v.SetDefault("pipeline.workers", defaults.Pipeline.Workers)
	l.v.SetDefault("pipeline.queue_depth", defaults.Pipeline.QueueDepth)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.file", defaults.Output.File)
	l.v.SetDefault("output.crop_dir", defaults.Output.CropDir)
	l.v.SetDefault("output.overlay_to", defaults.Output.OverlayTo)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	l.v.SetDefault("server.rate_limit_enabled", defaults.Server.RateLimitEnabled)
	l.v.SetDefault("server.requests_per_minute", defaults.Server.RequestsPerMinute)
	l.v.SetDefault("server.requests_per_hour", defaults.Server.RequestsPerHour)
	l.v.SetDefault("server.max_requests_per_day", defaults.Server.MaxRequestsPerDay)
	l.v.SetDefault("server.max_data_per_day", defaults.Server.MaxDataPerDay)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
		paths = append(paths, filepath.Join(home, ".config", "visage"))
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "visage"))
	}

	paths = append(paths, "/etc/visage")

	return paths
}

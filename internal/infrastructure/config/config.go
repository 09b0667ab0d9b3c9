package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all popup host configuration.
type Config struct {
	Server     ServerConfig
	CrossFrame CrossFrameConfig
	Popup      PopupConfig
	Frames     FramesConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// CrossFrameConfig holds the cross-frame channel settings.
type CrossFrameConfig struct {
	Path           string   `envconfig:"CROSSFRAME_PATH" default:"/crossframe"`
	AllowedOrigins []string `envconfig:"CROSSFRAME_ALLOWED_ORIGINS" default:"*"`
	RootFrameID    int      `envconfig:"CROSSFRAME_ROOT_FRAME" default:"0"`
}

// PopupConfig holds popup proxy settings.
type PopupConfig struct {
	OffsetTTL time.Duration `envconfig:"POPUP_OFFSET_TTL" default:"1s"`
}

// FramesConfig points at an optional frame layout file.
type FramesConfig struct {
	LayoutFile string `envconfig:"FRAME_LAYOUT_FILE"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		CrossFrame: CrossFrameConfig{
			Path:           "/crossframe",
			AllowedOrigins: []string{"*"},
			RootFrameID:    0,
		},
		Popup: PopupConfig{
			OffsetTTL: time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate rejects settings the host cannot run with.
func (c *Config) Validate() error {
	if c.Popup.OffsetTTL <= 0 {
		return fmt.Errorf("POPUP_OFFSET_TTL must be positive, got %s", c.Popup.OffsetTTL)
	}
	if c.CrossFrame.Path == "" || c.CrossFrame.Path[0] != '/' {
		return fmt.Errorf("CROSSFRAME_PATH must start with '/', got %q", c.CrossFrame.Path)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

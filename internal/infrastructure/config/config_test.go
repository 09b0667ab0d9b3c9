package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())

	assert.Equal(t, "/crossframe", cfg.CrossFrame.Path)
	assert.Equal(t, []string{"*"}, cfg.CrossFrame.AllowedOrigins)
	assert.Equal(t, 0, cfg.CrossFrame.RootFrameID)

	assert.Equal(t, time.Second, cfg.Popup.OffsetTTL)
	assert.Empty(t, cfg.Frames.LayoutFile)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                       "9000",
		"HOST":                       "127.0.0.1",
		"CROSSFRAME_PATH":            "/bridge",
		"CROSSFRAME_ALLOWED_ORIGINS": "chrome-extension://abc,moz-extension://def",
		"CROSSFRAME_ROOT_FRAME":      "4",
		"POPUP_OFFSET_TTL":           "250ms",
		"FRAME_LAYOUT_FILE":          "/etc/popup/frames.yaml",
		"LOG_LEVEL":                  "debug",
		"LOG_DEV":                    "true",
		"RATE_LIMIT_RPS":             "500",
		"RATE_LIMIT_BURST":           "1000",
		"RATE_LIMIT_ENABLED":         "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, "/bridge", cfg.CrossFrame.Path)
	assert.Equal(t, []string{"chrome-extension://abc", "moz-extension://def"}, cfg.CrossFrame.AllowedOrigins)
	assert.Equal(t, 4, cfg.CrossFrame.RootFrameID)
	assert.Equal(t, 250*time.Millisecond, cfg.Popup.OffsetTTL)
	assert.Equal(t, "/etc/popup/frames.yaml", cfg.Frames.LayoutFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparsable ttl", "POPUP_OFFSET_TTL", "soon"},
		{"zero ttl", "POPUP_OFFSET_TTL", "0s"},
		{"relative path", "CROSSFRAME_PATH", "crossframe"},
		{"zero burst", "RATE_LIMIT_BURST", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)

			cfg := LoadOrDefault()
			assert.Equal(t, Default(), cfg)
		})
	}
}

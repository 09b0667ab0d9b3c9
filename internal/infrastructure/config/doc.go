// Package config provides 12-factor configuration for the popup host.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/server override environment variables.
//
// Configuration Sections:
//   - Server: HTTP listen settings (port, host)
//   - CrossFrame: websocket path, allowed extension origins, root frame id
//   - Popup: frame offset cache lifetime
//   - Frames: optional YAML frame layout
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting
//
// Environment Variables:
//   - PORT, HOST
//   - CROSSFRAME_PATH, CROSSFRAME_ALLOWED_ORIGINS, CROSSFRAME_ROOT_FRAME
//   - POPUP_OFFSET_TTL, FRAME_LAYOUT_FILE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config

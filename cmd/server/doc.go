// Package main is the entry point of the popup host.
//
// The host owns the popups of the root frame and serves the PopupFactory.*
// and FrameOffsetForwarder.* actions to other frames over a websocket.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -layout frames.yaml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Mark the host unloaded, then shut down gracefully
package main

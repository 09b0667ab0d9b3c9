// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for humans
//
// Components in this repository accept a *zap.Logger and default to a no-op
// logger, so the host decides once how everything logs.
//
// Example Usage:
//
//	logger := logging.NewOrNop(logging.ForHost(cfg))
//	defer logger.Sync()
//	logger.Info("Popup host starting", zap.String("port", cfg.Server.Port))
package logging

package logging

import (
	"errors"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seth-js/yomichan-ru/internal/infrastructure/config"
)

// Logger wraps zap.Logger for the popup host and its clients.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"; empty picks the mode's default
	Development bool
	OutputPaths []string
	Name        string                 // Logger name, e.g. "popup-host"
	Fields      map[string]interface{} // Attached to every entry
}

// ForHost derives the popup host's logger settings. Entries carry the root
// frame and the listen address so logs of several hosts can be told apart.
func ForHost(cfg *config.Config) Config {
	return Config{
		Level:       knownLevel(cfg.Logging.Level),
		Development: cfg.Logging.Development,
		Name:        "popup-host",
		Fields: map[string]interface{}{
			"root_frame": cfg.CrossFrame.RootFrameID,
			"addr":       cfg.Server.Addr(),
		},
	}
}

// ForFrame derives the settings of a client running in frameID
func ForFrame(level string, development bool, frameID int) Config {
	return Config{
		Level:       knownLevel(level),
		Development: development,
		Name:        "frame",
		Fields:      map[string]interface{}{"frame_id": frameID},
	}
}

// New creates a logger. Production logs are JSON, development logs are
// colored console lines at debug level.
func New(cfg Config) (*Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.MessageKey = "message"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	zapCfg.OutputPaths = []string{"stdout"}
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}
	zapCfg.InitialFields = cfg.Fields

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.Name != "" {
		logger = logger.Named(cfg.Name)
	}
	return &Logger{Logger: logger}, nil
}

// NewOrNop is New, returning a no-op logger when cfg cannot be built
func NewOrNop(cfg Config) *Logger {
	logger, err := New(cfg)
	if err != nil {
		return &Logger{Logger: zap.NewNop()}
	}
	return logger
}

// Sync flushes buffered entries. Syncing a terminal returns EINVAL or
// ENOTTY on some platforms; those are not reported.
func (l *Logger) Sync() error {
	err := l.Logger.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

// knownLevel drops levels zap does not know so the mode's default applies
func knownLevel(level string) string {
	if _, err := zapcore.ParseLevel(level); err != nil {
		return ""
	}
	return level
}

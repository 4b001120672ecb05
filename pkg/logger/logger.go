// Package logger builds the zap loggers used across Intellecta.
//
// Logs are JSON encoded on stderr. When a log file is configured the same
// entries are also written to a size-rotated file managed by lumberjack.
package logger

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationConfig controls log file rotation
type RotationConfig struct {
	Filename   string // log file path
	MaxSize    int    // megabytes before rotation
	MaxBackups int    // rotated files kept
	MaxAge     int    // days rotated files are kept
	Compress   bool
}

// Options configures New
type Options struct {
	Level    string
	File     string
	Rotation RotationConfig

	// AtomicLevel, when set, replaces Level so the level can be changed
	// while the logger is in use
	AtomicLevel *zap.AtomicLevel
}

// New creates a logger writing to stderr and, if opts.File is set, to a
// rotated log file
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	if opts.AtomicLevel != nil {
		level = *opts.AtomicLevel
	}
	encoder := zapcore.NewJSONEncoder(encoderConfig())

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}
	if opts.File != "" {
		rotation := opts.Rotation
		rotation.Filename = opts.File
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(newRotatingWriter(rotation)), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// newRotatingWriter fills in rotation defaults
func newRotatingWriter(cfg RotationConfig) *lumberjack.Logger {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 100
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 28
	}
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339Nano))
	}
	cfg.CallerKey = "caller"
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.MessageKey = "message"
	cfg.EncodeName = zapcore.FullNameEncoder
	return cfg
}

// ParseLevel parses a level name, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsValidLevel reports whether level names a known level
func IsValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return true
	}
	return false
}

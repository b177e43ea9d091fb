// Package logger configures structured logging for the application.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger together with its configuration.
type Logger struct {
	Log *zap.Logger
}

// New returns a Logger with a no-op zap instance. Call Init to make it live.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds the underlying zap logger at the given level ("Debug", "Info",
// "Warn", "Error"). Output goes to stderr so command output on stdout stays
// machine-readable.
func (l *Logger) Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	log, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = log
	return nil
}

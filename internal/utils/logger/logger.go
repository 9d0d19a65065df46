package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.SugaredLogger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init builds the process logger writing to stderr at the given level and
// installs it as the global logger. It returns the new logger.
func Init(lvl string) (*zap.SugaredLogger, error) {
	if err := SetLogLevel(lvl); err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	global = z.Sugar()
	return global, nil
}

// Set installs z as the global logger.
func Set(z *zap.SugaredLogger) { global = z }

// Logger returns the global logger. Before Init or Set it is a no-op logger.
func Logger() *zap.SugaredLogger {
	if global == nil {
		return zap.NewNop().Sugar()
	}
	return global
}

// SetLogLevel changes the level of the global logger. An empty level
// leaves it unchanged.
func SetLogLevel(lvl string) error {
	lvl = strings.ToLower(strings.TrimSpace(lvl))
	if lvl == "" {
		return nil
	}
	if err := level.UnmarshalText([]byte(lvl)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", lvl, err)
	}
	return nil
}

// Level returns the current level of the global logger.
func Level() string {
	return level.Level().String()
}

// Sync flushes buffered log entries.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}

package willitserver

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"willitserver/internal/errs"
)

var (
	innerLogger          Logger
	loggerInitializeOnce sync.Once
)

// NewLogger builds a JSON logger writing to stderr at the given level.
// An empty level means "error".
func NewLogger(level string) (*zap.Logger, error) {
	zapLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.ErrorLevel, nil
	}
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.ErrorLevel, errs.NewInvalidLogLevelError(level)
	}
	return zapLevel, nil
}

// defaultLogger is the process-wide diagnostic sink used when no Logger is
// configured.
func defaultLogger() Logger {
	loggerInitializeOnce.Do(func() {
		l, err := NewLogger("")
		if err != nil {
			innerLogger = zap.NewNop()
			return
		}
		innerLogger = l
	})
	return innerLogger
}

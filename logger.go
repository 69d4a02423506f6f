// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerMu sync.RWMutex
	logger   = zap.NewNop()

	// verboseOutput receives verbose calls when the configured logger
	// drops info entries.
	verboseOutput zapcore.WriteSyncer = zapcore.Lock(os.Stdout)
)

// Logger returns the package logger. It is a no-op logger unless SetLogger
// has been called: a library loaded into a foreign host stays silent unless
// asked otherwise.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger replaces the package logger. A nil logger restores the no-op
// logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// newLogger builds a JSON logger from cfg. An empty level yields the package
// logger.
func newLogger(cfg LogConfig) (*zap.Logger, error) {
	if cfg.Level == "" {
		return Logger(), nil
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var sink zapcore.WriteSyncer
	switch cfg.Output {
	case "", "stderr":
		sink = zapcore.Lock(os.Stderr)
	case "stdout":
		sink = zapcore.Lock(os.Stdout)
	default:
		ws, _, err := zap.Open(cfg.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to open log output %q: %w", cfg.Output, err)
		}
		sink = ws
	}

	return newJSONLogger(sink, level), nil
}

// verboseLogger returns l if it records info entries. Otherwise it returns
// a logger printing info entries to stdout, so a verbose call is visible
// without any logging config.
func verboseLogger(l *zap.Logger) *zap.Logger {
	if l.Core().Enabled(zapcore.InfoLevel) {
		return l
	}
	return newJSONLogger(verboseOutput, zapcore.InfoLevel)
}

func newJSONLogger(sink zapcore.WriteSyncer, level zapcore.LevelEnabler) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, level)
	return zap.New(core).With(zap.String("component", "clientffi"))
}

package logger

import (
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a development logger with coloured, capitalised levels.
func NewLogger() *zap.SugaredLogger {
	return NewLoggerWithLevel("debug")
}

// NewLoggerWithLevel is NewLogger with the minimum level set from 'level'
// e.g. "info", "warn". Unknown levels fall back to debug.
func NewLoggerWithLevel(level string) *zap.SugaredLogger {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(strings.ToLower(level))); err == nil {
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	}

	logger, err := config.Build()
	if err != nil {
		log.Panic(err)
	}

	return logger.Sugar()
}

package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	log   *zap.Logger
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the process-wide logger. Safe to call more than once.
func Init() {
	once.Do(func() {
		config := zap.NewProductionConfig()
		config.DisableStacktrace = true
		logger, err := config.Build(zap.AddCallerSkip(1))
		if err != nil {
			logger = zap.NewNop()
		}
		log = logger
		sugar = log.Sugar()
	})
}

func ensure() {
	if log == nil {
		Init()
	}
}

func Debug(msg string, fields ...zap.Field) {
	ensure()
	log.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	ensure()
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	ensure()
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	ensure()
	log.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	ensure()
	log.Fatal(msg, fields...)
}

func Debugf(format string, args ...interface{}) {
	ensure()
	sugar.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	ensure()
	sugar.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	ensure()
	sugar.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	ensure()
	sugar.Errorf(format, args...)
}

// Sync flushes any buffered log entries.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

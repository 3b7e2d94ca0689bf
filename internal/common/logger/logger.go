package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu          sync.RWMutex
	log         = newLogger()
	serviceName = "unknown-service"
)

func newLogger() *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		zapcore.DebugLevel,
	)
	hostname, _ := os.Hostname()
	return zap.New(core).With(zap.String("hostname", hostname))
}

// SetServiceName tags every subsequent log line with the service name.
func SetServiceName(name string) {
	mu.Lock()
	defer mu.Unlock()
	serviceName = name
}

func fields(action, userID, alertID string) []zap.Field {
	mu.RLock()
	svc := serviceName
	mu.RUnlock()

	fs := []zap.Field{
		zap.String("service", svc),
		zap.String("action", action),
	}
	if userID != "" {
		fs = append(fs, zap.String("user_id", userID))
	}
	if alertID != "" {
		fs = append(fs, zap.String("alert_id", alertID))
	}
	return fs
}

func Info(action, message, userID, alertID string) {
	log.Info(message, fields(action, userID, alertID)...)
}

func Debug(action, message, userID, alertID string) {
	log.Debug(message, fields(action, userID, alertID)...)
}

func Warn(action, message, userID, alertID, errMsg string) {
	fs := fields(action, userID, alertID)
	if errMsg != "" {
		fs = append(fs, zap.String("error", errMsg))
	}
	log.Warn(message, fs...)
}

func Error(action, message, userID, alertID, errMsg string) {
	fs := fields(action, userID, alertID)
	if errMsg != "" {
		fs = append(fs, zap.String("error", errMsg))
	}
	log.Error(message, fs...)
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	_ = log.Sync()
}

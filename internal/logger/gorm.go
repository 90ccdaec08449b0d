package logger

import (
	"strings"
	"time"

	gormLogger "gorm.io/gorm/logger"
)

// gormWriter 把 gorm 的日志转发到 zap
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	Warn(strings.TrimSpace(format), args...)
}

// NewGormLogger 创建 gorm 日志适配器
func NewGormLogger(level string) gormLogger.Interface {
	return gormLogger.New(gormWriter{}, gormLogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormLogLevel(level),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func gormLogLevel(level string) gormLogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}

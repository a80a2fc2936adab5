// internal/infra/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"

	"launch_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance
var Log = logrus.New()

const (
	logFileMaxSizeMB  = 20
	logFileMaxBackups = 5
	logFileMaxAgeDays = 28
)

// Init initializes the global logger based on application configuration.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(output(cfg))

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		Log.SetLevel(logrus.InfoLevel)
	} else {
		Log.SetLevel(level)
	}

	if isStructuredEnv(cfg.Environment) || cfg.LogFile != "" {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
	Log.Debugf("Log format set for environment: %s", cfg.Environment)
}

// output writes to stdout and, when LOG_FILE is set, to a size-rotated file.
func output(cfg *config.AppConfig) io.Writer {
	if cfg.LogFile == "" {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
		Compress:   true,
	})
}

func isStructuredEnv(environment string) bool {
	switch strings.ToLower(environment) {
	case "production", "staging":
		return true
	}
	return false
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"launch_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_LevelAndFormatter(t *testing.T) {
	Init(&config.AppConfig{LogLevel: "debug", Environment: "production"})
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, Log.Formatter)

	Init(&config.AppConfig{LogLevel: "nonsense", Environment: "development"})
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, Log.Formatter)
}

func TestInit_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch_notifier.log")
	Init(&config.AppConfig{LogLevel: "info", LogFile: path})
	t.Cleanup(func() { Log.SetOutput(os.Stdout) })

	Component("test").Info("hello from the log file")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello from the log file")
	assert.Contains(t, string(b), `"component":"test"`)
}

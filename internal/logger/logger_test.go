package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testLogConfig struct {
	level, output, file string
}

func (c testLogConfig) GetLevel() string  { return c.level }
func (c testLogConfig) GetOutput() string { return c.output }
func (c testLogConfig) GetFile() string   { return c.file }

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLogLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLogLevel("warning"))
	assert.Equal(t, ERROR, ParseLogLevel("error"))
	assert.Equal(t, INFO, ParseLogLevel("nonsense"))
}

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := NewFromConfig(testLogConfig{level: "info", output: "file", file: path})
	require.NoError(t, err)

	l.Debug("hidden %d", 1)
	l.Info("campaign %d approved", 42)
	l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "campaign 42 approved", entry["message"])
}

func TestSetLevelTakesEffect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := NewWithFileRotation(ERROR, path)
	require.NoError(t, err)

	l.Warn("dropped")
	l.SetLevel(WARN)
	l.Warn("kept")
	l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "dropped")
	assert.Contains(t, string(raw), "kept")
}

func TestUnknownOutput(t *testing.T) {
	_, err := NewFromConfig(testLogConfig{output: "syslog"})
	assert.Error(t, err)
}

func TestInitReplacesDefaultLogger(t *testing.T) {
	previous := defaultLogger
	t.Cleanup(func() { defaultLogger = previous })

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(testLogConfig{level: "info", output: "file", file: path}))

	With(zap.Int64("campaign_id", 7)).Info("flag upheld")
	Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &entry))
	assert.Equal(t, "flag upheld", entry["message"])
	assert.EqualValues(t, 7, entry["campaign_id"])
}

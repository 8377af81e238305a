package graphdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 0, cfg.MaxLoopIterations)
	assert.False(t, cfg.LoadSample)
	assert.Equal(t, "gremlin> ", cfg.Prompt)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
log_format: json
max_loop_iterations: 50
load_sample: true
metrics: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 50, cfg.MaxLoopIterations)
	assert.True(t, cfg.LoadSample)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "gremlin> ", cfg.Prompt, "unset fields keep their defaults")
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "log_level: [unclosed"},
		{"bad level", "log_level: loud"},
		{"bad format", "log_format: xml"},
		{"negative fuse", "max_loop_iterations: -1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("GREMLINGRAPH_LOG_LEVEL", "error")
	t.Setenv("GREMLINGRAPH_LOG_FORMAT", "json")
	t.Setenv("GREMLINGRAPH_MAX_LOOP_ITERATIONS", "7")
	t.Setenv("GREMLINGRAPH_LOAD_SAMPLE", "true")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 7, cfg.MaxLoopIterations)
	assert.True(t, cfg.LoadSample)
}

func TestConfig_ApplyEnvInvalid(t *testing.T) {
	t.Setenv("GREMLINGRAPH_MAX_LOOP_ITERATIONS", "many")
	assert.Error(t, DefaultConfig().ApplyEnv())
}

func TestConfig_ConfigureLogger(t *testing.T) {
	logger := logrus.New()

	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	require.NoError(t, cfg.ConfigureLogger(logger))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.LogFormat = "text"
	require.NoError(t, cfg.ConfigureLogger(logger))
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	cfg.LogLevel = "loud"
	assert.Error(t, cfg.ConfigureLogger(logger))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, NewValidator().Validate(DefaultConfig()))
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
llm:
  provider: mock
  model: test-model
database:
  dsn: sqlite://demo.db
server:
  addr: ":9090"
  request_timeout: 30s
workflow:
  max_steps: 25
logging:
  level: debug
  format: json
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, "sqlite://demo.db", cfg.Database.DSN)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 25, cfg.Workflow.MaxSteps)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Unset sections keep their defaults.
	assert.Equal(t, "charts", cfg.Output.ChartsDir)
	assert.Equal(t, "reports", cfg.Output.ReportsDir)
}

func TestLoadInterpolatesEnvVars(t *testing.T) {
	t.Setenv("TEST_DATASAGE_KEY", "sk-test-12345")
	t.Setenv("TEST_DATASAGE_DB", "analytics.db")

	path := writeTempConfig(t, `
llm:
  provider: mock
  model: test-model
  api_key: ${TEST_DATASAGE_KEY}
database:
  dsn: ${TEST_DATASAGE_DB}
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test-12345", cfg.LLM.APIKey)
	assert.Equal(t, "analytics.db", cfg.Database.DSN)
}

func TestLoadLeavesUnsetEnvVarsAsWritten(t *testing.T) {
	path := writeTempConfig(t, `
llm:
  provider: mock
  model: test-model
  api_key: ${DATASAGE_UNSET_VAR_FOR_TEST}
database:
  dsn: demo.db
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DATASAGE_UNSET_VAR_FOR_TEST}", cfg.LLM.APIKey)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIn  string
	}{
		{
			"unknown provider",
			"llm:\n  provider: skynet\n  model: m\ndatabase:\n  dsn: d\n",
			"llm.provider must be one of",
		},
		{
			"missing model",
			"llm:\n  provider: mock\n  model: \"\"\ndatabase:\n  dsn: d\n",
			"llm.model is required",
		},
		{
			"missing dsn",
			"llm:\n  provider: mock\n  model: m\ndatabase:\n  dsn: \"\"\n",
			"database.dsn is required",
		},
		{
			"bad log level",
			"llm:\n  provider: mock\n  model: m\ndatabase:\n  dsn: d\nlogging:\n  level: loud\n",
			"logging.level must be one of",
		},
		{
			"ollama without base url",
			"llm:\n  provider: ollama\n  model: m\ndatabase:\n  dsn: d\n",
			"llm.base_url is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, tt.content)
			_, err := NewLoader(NewValidator()).Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantIn)
		})
	}
}

func TestLoadWithDefaults(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := NewLoader(NewValidator()).LoadWithDefaults(
			filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("existing file is loaded", func(t *testing.T) {
		path := writeTempConfig(t, "llm:\n  provider: mock\n  model: m\ndatabase:\n  dsn: d\n")
		cfg, err := NewLoader(NewValidator()).LoadWithDefaults(path)
		require.NoError(t, err)
		assert.Equal(t, "mock", cfg.LLM.Provider)
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path))

	// The written file round-trips through the loader.
	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Server.RequestTimeout)

	assert.Error(t, WriteDefault(path), "an existing file is never overwritten")
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "provider", toSnakeCase("Provider"))
	assert.Equal(t, "max_steps", toSnakeCase("MaxSteps"))
	assert.Equal(t, "llm", toSnakeCase("LLM"))
	assert.Equal(t, "api_key", toSnakeCase("APIKey"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "first_only", cfg.Strategy)
	assert.Equal(t, "\n", cfg.PromptSplitDelimiter)
	assert.Contains(t, cfg.PromptSplitInstruction, "{n}")
	assert.False(t, cfg.AttachRawResponses)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BRIDGE_STRATEGY", "parallel")
	t.Setenv("BRIDGE_MODEL", "gpt-test")
	t.Setenv("BRIDGE_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "parallel", cfg.Strategy)
	assert.Equal(t, "gpt-test", cfg.Model)
	assert.Equal(t, "json", cfg.LogFormat)
	// Untouched keys keep their defaults.
	assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url = "https://backend.internal/v1"
strategy = "prompt_split"
prompt_split_delimiter = "|"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://backend.internal/v1", cfg.BaseURL)
	assert.Equal(t, "prompt_split", cfg.Strategy)
	assert.Equal(t, "|", cfg.PromptSplitDelimiter)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	require.NoError(t, os.WriteFile(path, []byte(`model = "from-file"`), 0o600))

	t.Setenv("BRIDGE_MODEL", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Model)
}

func TestLoad_InvalidStrategy(t *testing.T) {
	t.Setenv("BRIDGE_STRATEGY", "roulette")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

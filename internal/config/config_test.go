package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKey(t *testing.T) {
	cfg := &Config{Provider: "anthropic", AnthropicAPIKey: "sk-ant-test"}
	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-test", key)

	cfg = &Config{Provider: "openai"}
	_, err = cfg.APIKey()
	assert.ErrorContains(t, err, "OPENAI_API_KEY is not set")

	cfg = &Config{Provider: "gemini"}
	_, err = cfg.APIKey()
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, defaultModels["anthropic"], cfg.Model)
	assert.False(t, cfg.AutoApprove)
}

func TestLoad_ProviderOverrideFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ARCHAGENT_PROVIDER", "openai")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, defaultModels["openai"], cfg.Model)
}

// Package config loads archagent configuration from config files, the
// environment, and .env files. API keys are never written to config files;
// they come from the environment or .env only.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"archagent/internal/logger"
)

// Config holds the resolved runtime configuration.
type Config struct {
	// Provider selects the LLM provider: "anthropic" or "openai".
	Provider string
	// Model is the provider model identifier.
	Model string
	// AnthropicAPIKey and OpenAIAPIKey come from the environment.
	AnthropicAPIKey string
	OpenAIAPIKey    string
	// AutoApprove approves every confirmation-gated tool without prompting.
	// For headless runs only.
	AutoApprove bool
	// ModelSeed is the path to a YAML model file loaded into the demo host.
	ModelSeed string
	// SystemPrompt overrides the default agent system prompt.
	SystemPrompt string
}

// defaultModels maps a provider to its default model.
var defaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-20250514",
	"openai":    "gpt-4o",
}

// Load resolves configuration with precedence: explicit env > config file >
// defaults. A .env file in the working directory is loaded first, if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	}

	v := viper.New()
	v.SetConfigName("archagent")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home + "/.archagent")
	}
	v.SetEnvPrefix("ARCHAGENT")
	v.AutomaticEnv()

	v.SetDefault("provider", "anthropic")
	v.SetDefault("model", "")
	v.SetDefault("auto_approve", false)
	v.SetDefault("model_seed", "")
	v.SetDefault("system_prompt", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		logger.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}

	cfg := &Config{
		Provider:        v.GetString("provider"),
		Model:           v.GetString("model"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AutoApprove:     v.GetBool("auto_approve"),
		ModelSeed:       v.GetString("model_seed"),
		SystemPrompt:    v.GetString("system_prompt"),
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("unsupported provider %q. Supported providers: openai, anthropic", cfg.Provider)
	}
	return cfg, nil
}

// APIKey returns the API key for the configured provider.
func (c *Config) APIKey() (string, error) {
	switch c.Provider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return "", fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return c.AnthropicAPIKey, nil
	case "openai":
		if c.OpenAIAPIKey == "" {
			return "", fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return c.OpenAIAPIKey, nil
	default:
		return "", fmt.Errorf("unsupported provider %q", c.Provider)
	}
}

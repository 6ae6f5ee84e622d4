package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"archagent/internal/logger"
	"archagent/pkg/agenttypes"
)

// ClientFactory creates and caches LLM clients per provider and API key.
// The system supports exactly two providers.
type ClientFactory struct {
	mu      sync.Mutex
	clients map[string]agenttypes.LLMClient
}

// NewClientFactory creates an empty client factory.
func NewClientFactory() *ClientFactory {
	return &ClientFactory{clients: make(map[string]agenttypes.LLMClient)}
}

// GetClientForProvider returns a client for the provider and API key,
// creating and caching it on first use.
func (f *ClientFactory) GetClientForProvider(provider, apiKey string) (agenttypes.LLMClient, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key cannot be empty for provider %q", provider)
	}

	clientID := generateClientID(provider, apiKey)

	f.mu.Lock()
	defer f.mu.Unlock()
	if client, exists := f.clients[clientID]; exists {
		logger.Debug("Returning cached provider client", "provider", provider, "clientID", clientID)
		return client, nil
	}

	var client agenttypes.LLMClient
	switch provider {
	case "openai":
		client = NewOpenAIClient(apiKey)
	case "anthropic":
		client = NewAnthropicClient(apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q. Supported providers: openai, anthropic", provider)
	}

	f.clients[clientID] = client
	logger.Debug("Created new provider client", "provider", provider, "clientID", clientID)
	return client, nil
}

// generateClientID builds a cache key that does not retain the raw API key.
// Format: "provider:first-8-hex-of-sha256".
func generateClientID(provider, apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%s:%s", provider, hex.EncodeToString(hash[:])[:8])
}

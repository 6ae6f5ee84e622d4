package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFactory_CreatesProviderClients(t *testing.T) {
	factory := NewClientFactory()

	openai, err := factory.GetClientForProvider("openai", "sk-test-key")
	require.NoError(t, err)
	assert.Equal(t, "openai", openai.GetProviderName())
	assert.True(t, openai.IsConfigured())

	anthropic, err := factory.GetClientForProvider("anthropic", "sk-ant-test-key")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", anthropic.GetProviderName())
	assert.True(t, anthropic.IsConfigured())
}

func TestClientFactory_CachesPerProviderAndKey(t *testing.T) {
	factory := NewClientFactory()

	first, err := factory.GetClientForProvider("openai", "sk-test-key")
	require.NoError(t, err)
	second, err := factory.GetClientForProvider("openai", "sk-test-key")
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := factory.GetClientForProvider("openai", "sk-other-key")
	require.NoError(t, err)
	assert.NotSame(t, first, other, "a different key gets its own client")
}

func TestClientFactory_RejectsBadInput(t *testing.T) {
	factory := NewClientFactory()

	_, err := factory.GetClientForProvider("", "sk-test-key")
	assert.Error(t, err)

	_, err = factory.GetClientForProvider("openai", "")
	assert.ErrorContains(t, err, "API key cannot be empty")

	_, err = factory.GetClientForProvider("gemini", "key")
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestGenerateClientID_DoesNotRetainKey(t *testing.T) {
	id := generateClientID("openai", "sk-super-secret")
	assert.NotContains(t, id, "sk-super-secret")
	assert.Contains(t, id, "openai:")
	assert.Len(t, id, len("openai:")+8)

	assert.Equal(t, id, generateClientID("openai", "sk-super-secret"))
	assert.NotEqual(t, id, generateClientID("openai", "sk-other"))
	assert.NotEqual(t, id, generateClientID("anthropic", "sk-super-secret"))
}

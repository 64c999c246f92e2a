package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short key", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long key", input: "sk-1234567890abcdef", expected: "sk-1...cdef"},
		{name: "Very long key", input: "sk-proj-1234567890abcdefghijklmnop", expected: "sk-p...mnop"},
		{name: "Empty key", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "postgres://bob:****@db:5432/tube", maskURL("postgres://bob:secret@db:5432/tube"))
	assert.Equal(t, "postgres://db:5432/tube", maskURL("postgres://db:5432/tube"))
	assert.Equal(t, "postgres://bob@db/tube", maskURL("postgres://bob@db/tube"))
}

func TestIsSecretKey(t *testing.T) {
	assert.True(t, isSecretKey("llm.api_key"))
	assert.True(t, isSecretKey("youtube.api_key"))
	assert.True(t, isSecretKey("storage.postgres_url"))
	assert.False(t, isSecretKey("server.port"))
}

func TestReadPassword_FallsBackToLine(t *testing.T) {
	assert.Equal(t, "sk-secret", readPassword(strings.NewReader("  sk-secret \n")))
}

func TestConfigShow(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.settings.settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOpenAI, Model: "gpt-4o", APIKey: "sk-1234567890abcdef",
	}

	out, err := executeCommand(t, "config")

	require.NoError(t, err)
	assert.Contains(t, out, "[Server]")
	assert.Contains(t, out, "127.0.0.1:9093")
	assert.Contains(t, out, "OpenAI (cloud)")
	assert.Contains(t, out, "sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestConfigShow_InvalidWarns(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.settings.validateErr = errors.New("bad backend")

	out, err := executeCommand(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: bad backend")
}

func TestConfigSet(t *testing.T) {
	mocks := setupTestServices(t)

	out, err := executeCommand(t, "config", "set", "server.port", "9000")

	require.NoError(t, err)
	assert.Equal(t, "9000", mocks.settings.set["server.port"])
	assert.Contains(t, out, "Set server.port = 9000")
}

func TestConfigSet_MasksSecrets(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "config", "set", "llm.api_key", "sk-1234567890abcdef")

	require.NoError(t, err)
	assert.Contains(t, out, "sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
}

func TestConfigSet_PromptsForSecret(t *testing.T) {
	mocks := setupTestServices(t)
	rootCmd.SetIn(bytes.NewBufferString("sk-from-stdin-0000\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	_, err := executeCommand(t, "config", "set", "youtube.api_key")

	require.NoError(t, err)
	assert.Equal(t, "sk-from-stdin-0000", mocks.settings.set["youtube.api_key"])
}

func TestConfigSet_MissingValue(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "config", "set", "server.port")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigSet_Rejected(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.settings.setErr = domain.ErrInvalidInput

	_, err := executeCommand(t, "config", "set", "nope", "x")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigKeysAndPath(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "config", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "server.port")

	out, err = executeCommand(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "config.toml")
}

func TestConfigValidate_Ping(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.settings.pingErr = errors.New("401")

	out, err := executeCommand(t, "config", "validate", "--ping")

	require.Error(t, err)
	assert.Contains(t, out, "FAILED")
	configPing = false
}

func TestConfig_NoService(t *testing.T) {
	SetServices(&Services{})

	_, err := executeCommand(t, "config", "keys")

	assert.ErrorIs(t, err, errSettingsNotConfigured)
}

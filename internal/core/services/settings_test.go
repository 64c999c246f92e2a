package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcptube/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mcptube/internal/core/domain"
)

func envFrom(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func newTestSettings(seed map[string]any, env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore(seed)
	return NewSettingsService(store, nil).WithEnv(envFrom(env)), store
}

func TestSettingsService_Get_Defaults(t *testing.T) {
	service, _ := newTestSettings(nil, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".mcptube"), settings.DataDir)
	assert.Equal(t, "127.0.0.1", settings.Server.Host)
	assert.Equal(t, 9093, settings.Server.Port)
	assert.Equal(t, domain.StoreSQLite, settings.Storage.Backend)
	assert.Equal(t, domain.IndexSQLite, settings.Index.Backend)
	assert.Equal(t, domain.AIProviderLocal, settings.Embedding.Provider)
	assert.Equal(t, "hashing-384", settings.Embedding.Model)
	assert.Empty(t, settings.LLM.Provider)
	assert.False(t, settings.LLM.IsConfigured())
}

func TestSettingsService_Get_ConfigFileValues(t *testing.T) {
	service, _ := newTestSettings(map[string]any{
		"data_dir":        "/srv/tube",
		"server.port":     int64(8000),
		"storage.backend": "postgres",
		"llm.provider":    "openai",
		"llm.api_key":     "sk-file",
	}, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "/srv/tube", settings.DataDir)
	assert.Equal(t, 8000, settings.Server.Port)
	assert.Equal(t, domain.StorePostgres, settings.Storage.Backend)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "sk-file", settings.LLM.APIKey)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
}

func TestSettingsService_Get_EnvOverridesFile(t *testing.T) {
	service, _ := newTestSettings(
		map[string]any{"server.host": "10.0.0.1", "server.port": 7000},
		map[string]string{EnvHost: "0.0.0.0", EnvPort: "9999", EnvDataDir: "/env/data"},
	)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", settings.Server.Host)
	assert.Equal(t, 9999, settings.Server.Port)
	assert.Equal(t, "/env/data", settings.DataDir)
}

func TestSettingsService_Get_InvalidEnvPort(t *testing.T) {
	service, _ := newTestSettings(nil, map[string]string{EnvPort: "abc"})

	_, err := service.Get()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Get_DetectsProviderFromEnvKeys(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		provider domain.AIProvider
		model    string
	}{
		{"anthropic wins", map[string]string{"ANTHROPIC_API_KEY": "a", "OPENAI_API_KEY": "o"}, domain.AIProviderAnthropic, "claude-sonnet-4-20250514"},
		{"openai", map[string]string{"OPENAI_API_KEY": "o"}, domain.AIProviderOpenAI, "gpt-4o"},
		{"google", map[string]string{"GOOGLE_API_KEY": "g"}, domain.AIProviderGoogle, "gemini-2.0-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestSettings(nil, tt.env)

			settings, err := service.Get()

			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.LLM.Provider)
			assert.Equal(t, tt.model, settings.LLM.Model)
			assert.True(t, settings.LLM.IsConfigured())
		})
	}
}

func TestSettingsService_Get_ModelPrecedence(t *testing.T) {
	env := map[string]string{"ANTHROPIC_API_KEY": "a"}

	service, _ := newTestSettings(map[string]any{"default_model": "claude-opus"}, env)
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "claude-opus", settings.LLM.Model)

	service, _ = newTestSettings(map[string]any{"default_model": "claude-opus", "llm.model": "claude-haiku"}, env)
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku", settings.LLM.Model)
}

func TestSettingsService_Get_OllamaBaseURL(t *testing.T) {
	service, _ := newTestSettings(map[string]any{"llm.provider": "ollama", "embedding.provider": "ollama"}, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, defaultOllamaURL, settings.LLM.BaseURL)
	assert.Equal(t, defaultOllamaURL, settings.Embedding.BaseURL)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
}

func TestSettingsService_Set(t *testing.T) {
	service, store := newTestSettings(nil, nil)

	require.NoError(t, service.Set("server.port", "8080"))
	require.NoError(t, service.Set("llm.provider", "anthropic"))

	assert.Equal(t, 8080, store.GetInt("server.port"))
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	service, store := newTestSettings(nil, nil)

	tests := []struct {
		key   string
		value string
	}{
		{"no.such.key", "x"},
		{"server.port", "not-a-number"},
		{"server.port", "70000"},
		{"storage.backend", "mongo"},
		{"llm.provider", "local"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := service.Set(tt.key, tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
	assert.Empty(t, store.Keys())
}

func TestSettingsService_Validate(t *testing.T) {
	service, _ := newTestSettings(nil, nil)
	assert.NoError(t, service.Validate())

	service, _ = newTestSettings(map[string]any{"storage.backend": "postgres"}, nil)
	err := service.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PostgresURL")

	service, _ = newTestSettings(map[string]any{"embedding.provider": "openai"}, nil)
	err = service.Validate()
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	service, _ = newTestSettings(map[string]any{"index.backend": "pgvector"}, nil)
	err = service.Validate()
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSettingsService_KeysAndPath(t *testing.T) {
	service, _ := newTestSettings(nil, nil)

	keys := service.Keys()

	assert.Contains(t, keys, "llm.provider")
	assert.Contains(t, keys, "youtube.api_key")
	assert.IsIncreasing(t, keys)
	assert.Equal(t, ":memory:", service.Path())
}

type stubProbe struct {
	llmCalls, embedCalls int
	err                  error
}

func (p *stubProbe) ProbeEmbedding(context.Context, *domain.EmbeddingSettings) error {
	p.embedCalls++
	return p.err
}

func (p *stubProbe) ProbeLLM(context.Context, *domain.LLMSettings) error {
	p.llmCalls++
	return p.err
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	probe := &stubProbe{err: errors.New("unreachable")}
	service := NewSettingsService(memory.NewConfigStore(), probe).WithEnv(envFrom(nil))

	assert.EqualError(t, service.ValidateLLMConfig(), "unreachable")
	assert.EqualError(t, service.ValidateEmbeddingConfig(), "unreachable")
	assert.Equal(t, 1, probe.llmCalls)
	assert.Equal(t, 1, probe.embedCalls)

	noProbe := NewSettingsService(memory.NewConfigStore(), nil)
	assert.NoError(t, noProbe.ValidateLLMConfig())
}

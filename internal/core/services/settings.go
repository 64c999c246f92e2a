package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "data_dir"
	keyDefaultModel     = "default_model"
	keyServerHost       = "server.host"
	keyServerPort       = "server.port"
	keyStorageBackend   = "storage.backend"
	keyPostgresURL      = "storage.postgres_url"
	keyIndexBackend     = "index.backend"
	keyMilvusAddr       = "index.milvus_addr"
	keyMilvusCollection = "index.milvus_collection"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyYouTubeAPIKey    = "youtube.api_key"
	keyYtDlpPath        = "youtube.ytdlp_path"
	keyFFmpegPath       = "youtube.ffmpeg_path"
	keyExtractTimeout   = "youtube.extract_timeout"
)

// Environment overrides. They win over the config file.
const (
	EnvDataDir           = "MCPTUBE_DATA_DIR"
	EnvHost              = "MCPTUBE_HOST"
	EnvPort              = "MCPTUBE_PORT"
	EnvDefaultModel      = "MCPTUBE_DEFAULT_MODEL"
	EnvStore             = "MCPTUBE_STORE"
	EnvIndex             = "MCPTUBE_INDEX"
	EnvPostgresURL       = "MCPTUBE_POSTGRES_URL"
	EnvMilvusAddr        = "MCPTUBE_MILVUS_ADDR"
	EnvYouTubeAPIKey     = "MCPTUBE_YOUTUBE_API_KEY"
	EnvLLMProvider       = "MCPTUBE_LLM_PROVIDER"
	EnvEmbeddingProvider = "MCPTUBE_EMBEDDING_PROVIDER"
)

const defaultOllamaURL = "http://localhost:11434"

// settableKeys maps every key accepted by Set to the validator rule its value must pass.
// Integer keys are marked with an "int:" prefix.
var settableKeys = map[string]string{
	keyDataDir:          "required",
	keyDefaultModel:     "required",
	keyServerHost:       "required",
	keyServerPort:       "int:min=1,max=65535",
	keyStorageBackend:   "oneof=sqlite postgres memory",
	keyPostgresURL:      "omitempty,url",
	keyIndexBackend:     "oneof=sqlite memory pgvector milvus none",
	keyMilvusAddr:       "omitempty,hostname_port",
	keyMilvusCollection: "required",
	keyEmbedProvider:    "oneof=local ollama openai",
	keyEmbedModel:       "omitempty",
	keyEmbedBaseURL:     "omitempty,url",
	keyEmbedAPIKey:      "omitempty",
	keyLLMProvider:      "omitempty,oneof=ollama openai anthropic google",
	keyLLMModel:         "omitempty",
	keyLLMBaseURL:       "omitempty,url",
	keyLLMAPIKey:        "omitempty",
	keyYouTubeAPIKey:    "omitempty",
	keyYtDlpPath:        "required",
	keyFFmpegPath:       "required",
	keyExtractTimeout:   "int:min=1",
}

// SettingsService resolves application settings from defaults, the config
// store and the process environment, in that order of increasing precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	probe       driven.ProviderProbe
	validate    *validator.Validate
	getenv      func(string) string
}

// NewSettingsService creates a new settings service reading os.Getenv.
// The probe is optional; without one the provider checks always pass.
func NewSettingsService(configStore driven.ConfigStore, probe driven.ProviderProbe) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		probe:       probe,
		validate:    validator.New(),
		getenv:      os.Getenv,
	}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	s.getenv = getenv
	return s
}

// Get returns the effective settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	port, err := s.intValue(keyServerPort, EnvPort, d.Server.Port)
	if err != nil {
		return nil, err
	}
	timeout, err := s.intValue(keyExtractTimeout, "", d.YouTube.ExtractTimeoutSeconds)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		DataDir:      expandHome(s.value(keyDataDir, EnvDataDir, d.DataDir)),
		DefaultModel: s.value(keyDefaultModel, EnvDefaultModel, d.DefaultModel),
		Server: domain.ServerSettings{
			Host: s.value(keyServerHost, EnvHost, d.Server.Host),
			Port: port,
		},
		Storage: domain.StorageSettings{
			Backend:     domain.StoreBackend(s.value(keyStorageBackend, EnvStore, string(d.Storage.Backend))),
			PostgresURL: s.value(keyPostgresURL, EnvPostgresURL, ""),
		},
		Index: domain.IndexSettings{
			Backend:          domain.IndexBackend(s.value(keyIndexBackend, EnvIndex, string(d.Index.Backend))),
			MilvusAddr:       s.value(keyMilvusAddr, EnvMilvusAddr, ""),
			MilvusCollection: s.value(keyMilvusCollection, "", d.Index.MilvusCollection),
		},
		Embedding: s.embedding(d.Embedding),
		LLM:       s.llm(),
		YouTube: domain.YouTubeSettings{
			APIKey:                s.value(keyYouTubeAPIKey, EnvYouTubeAPIKey, ""),
			YtDlpPath:             s.value(keyYtDlpPath, "", d.YouTube.YtDlpPath),
			FFmpegPath:            s.value(keyFFmpegPath, "", d.YouTube.FFmpegPath),
			ExtractTimeoutSeconds: timeout,
		},
	}

	return settings, nil
}

func (s *SettingsService) embedding(d domain.EmbeddingSettings) domain.EmbeddingSettings {
	e := domain.EmbeddingSettings{
		Provider: domain.AIProvider(s.value(keyEmbedProvider, EnvEmbeddingProvider, string(d.Provider))),
		Model:    s.configStore.GetString(keyEmbedModel),
		BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
		APIKey:   s.configStore.GetString(keyEmbedAPIKey),
	}
	if e.Model == "" {
		e.Model = domain.DefaultEmbeddingModels()[e.Provider]
	}
	if e.Provider == domain.AIProviderOllama && e.BaseURL == "" {
		e.BaseURL = defaultOllamaURL
	}
	if e.Provider == domain.AIProviderOpenAI && e.APIKey == "" {
		e.APIKey = s.getenv("OPENAI_API_KEY")
	}
	return e
}

// llm resolves the LLM provider. With no provider configured, the first
// provider key found in the environment selects it.
func (s *SettingsService) llm() domain.LLMSettings {
	l := domain.LLMSettings{
		Provider: domain.AIProvider(s.value(keyLLMProvider, EnvLLMProvider, "")),
		BaseURL:  s.configStore.GetString(keyLLMBaseURL),
		APIKey:   s.configStore.GetString(keyLLMAPIKey),
	}

	if l.Provider == "" {
		for _, pk := range domain.ProviderKeyEnv() {
			if key := s.getenv(pk.Env); key != "" {
				l.Provider = pk.Provider
				break
			}
		}
	}
	if l.Provider == "" {
		return l
	}

	if l.APIKey == "" {
		for _, pk := range domain.ProviderKeyEnv() {
			if pk.Provider == l.Provider {
				l.APIKey = s.getenv(pk.Env)
			}
		}
	}
	if l.Provider == domain.AIProviderOllama && l.BaseURL == "" {
		l.BaseURL = defaultOllamaURL
	}

	l.Model = s.configStore.GetString(keyLLMModel)
	if l.Model == "" {
		l.Model = s.explicitDefaultModel()
	}
	if l.Model == "" {
		l.Model = domain.DefaultLLMModels()[l.Provider]
	}
	return l
}

// explicitDefaultModel returns default_model only when a user set it.
func (s *SettingsService) explicitDefaultModel() string {
	if v := s.getenv(EnvDefaultModel); v != "" {
		return v
	}
	return s.configStore.GetString(keyDefaultModel)
}

// Set stores a single key after checking its value.
func (s *SettingsService) Set(key, value string) error {
	rule, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (see 'mcptube config keys')", domain.ErrInvalidInput, key)
	}

	if intRule, isInt := strings.CutPrefix(rule, "int:"); isInt {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		if err := s.validate.Var(n, intRule); err != nil {
			return fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, key, describeValidation(err))
		}
		return s.configStore.Set(key, n)
	}

	if err := s.validate.Var(value, rule); err != nil {
		return fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, key, describeValidation(err))
	}
	return s.configStore.Set(key, value)
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := s.validate.Struct(settings); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, describeValidation(err))
	}

	if settings.Index.Backend == domain.IndexPGVector && settings.Storage.PostgresURL == "" {
		return &domain.ConfigurationError{Component: "pgvector index", Hint: "set storage.postgres_url"}
	}
	if !settings.Embedding.IsConfigured() && settings.Index.Backend != domain.IndexNone {
		return &domain.ConfigurationError{
			Component: "embedding provider " + settings.Embedding.Provider.String(),
			Hint:      "set embedding.api_key or OPENAI_API_KEY",
		}
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return &domain.ConfigurationError{
			Component: "LLM provider " + settings.LLM.Provider.String(),
			Hint:      "set llm.api_key or the provider's API key variable",
		}
	}

	return nil
}

// Keys lists the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// ValidateEmbeddingConfig pings the effective embedding provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.probe == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.probe.ProbeEmbedding(context.Background(), &settings.Embedding)
}

// ValidateLLMConfig pings the effective LLM provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.probe == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.probe.ProbeLLM(context.Background(), &settings.LLM)
}

// value resolves a string setting: environment, then config store, then fallback.
func (s *SettingsService) value(key, env, fallback string) string {
	if env != "" {
		if v := strings.TrimSpace(s.getenv(env)); v != "" {
			return v
		}
	}
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) intValue(key, env string, fallback int) (int, error) {
	if env != "" {
		if v := strings.TrimSpace(s.getenv(env)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidInput, env, v)
			}
			return n, nil
		}
	}
	if v := s.configStore.GetInt(key); v != 0 {
		return v, nil
	}
	return fallback, nil
}

// describeValidation turns validator errors into one readable line.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "AppSettings.")
		if field == "" {
			field = "value"
		}
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s fails %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

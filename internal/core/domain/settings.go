package domain

import "path/filepath"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in hashing embedder. Embeddings only.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGoogle is Gemini through its OpenAI-compatible endpoint.
	AIProviderGoogle AIProvider = "google"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGoogle:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGoogle
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (hashing embedder, no network)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGoogle:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend selects the video store implementation.
type StoreBackend string

// Available store backends.
const (
	StoreSQLite   StoreBackend = "sqlite"
	StorePostgres StoreBackend = "postgres"
	StoreMemory   StoreBackend = "memory"
)

// IndexBackend selects the fragment store behind the semantic index.
type IndexBackend string

// Available index backends.
const (
	IndexSQLite   IndexBackend = "sqlite"
	IndexMemory   IndexBackend = "memory"
	IndexPGVector IndexBackend = "pgvector"
	IndexMilvus   IndexBackend = "milvus"
	IndexNone     IndexBackend = "none"
)

// ServerSettings holds the MCP HTTP listener address.
type ServerSettings struct {
	Host string `validate:"required"`
	Port int    `validate:"min=1,max=65535"`
}

// StorageSettings holds video store configuration.
type StorageSettings struct {
	Backend StoreBackend `validate:"oneof=sqlite postgres memory"`

	// PostgresURL is used by the postgres store and the pgvector index.
	PostgresURL string `validate:"required_if=Backend postgres"`
}

// IndexSettings holds semantic index configuration.
type IndexSettings struct {
	Backend IndexBackend `validate:"oneof=sqlite memory pgvector milvus none"`

	// MilvusAddr is the milvus gRPC address.
	MilvusAddr string `validate:"required_if=Backend milvus"`

	// MilvusCollection is the collection holding fragments.
	MilvusCollection string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `validate:"oneof=local ollama openai"`

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider. Empty means no LLM.
	Provider AIProvider `validate:"omitempty,oneof=ollama openai anthropic google"`

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic/Google).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// YouTubeSettings holds platform access configuration.
type YouTubeSettings struct {
	// APIKey enables discovery through the YouTube Data API.
	APIKey string

	// YtDlpPath is the yt-dlp binary.
	YtDlpPath string `validate:"required"`

	// FFmpegPath is the ffmpeg binary.
	FFmpegPath string `validate:"required"`

	// ExtractTimeoutSeconds bounds one metadata extraction.
	ExtractTimeoutSeconds int `validate:"min=1"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir holds the database and frame cache.
	DataDir string `validate:"required"`

	// DefaultModel is the LLM model used when the provider has no explicit model.
	DefaultModel string

	Server    ServerSettings
	Storage   StorageSettings
	Index     IndexSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	YouTube   YouTubeSettings
}

// DBPath returns the sqlite database location.
func (s *AppSettings) DBPath() string {
	return filepath.Join(s.DataDir, "mcptube.db")
}

// FramesDir returns the frame cache directory.
func (s *AppSettings) FramesDir() string {
	return filepath.Join(s.DataDir, "frames")
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; provider keys in the environment switch it on.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		DataDir:      "~/.mcptube",
		DefaultModel: "gpt-4o",
		Server: ServerSettings{
			Host: "127.0.0.1",
			Port: 9093,
		},
		Storage: StorageSettings{Backend: StoreSQLite},
		Index: IndexSettings{
			Backend:          IndexSQLite,
			MilvusCollection: "mcptube_fragments",
		},
		Embedding: EmbeddingSettings{Provider: AIProviderLocal},
		YouTube: YouTubeSettings{
			YtDlpPath:             "yt-dlp",
			FFmpegPath:            "ffmpeg",
			ExtractTimeoutSeconds: 120,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGoogle,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-384",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-sonnet-4-20250514",
		AIProviderGoogle:    "gemini-2.0-flash",
	}
}

// ProviderKeyEnv maps each cloud LLM provider to the environment variable
// holding its key, in detection priority order.
func ProviderKeyEnv() []struct {
	Provider AIProvider
	Env      string
} {
	return []struct {
		Provider AIProvider
		Env      string
	}{
		{AIProviderAnthropic, "ANTHROPIC_API_KEY"},
		{AIProviderOpenAI, "OPENAI_API_KEY"},
		{AIProviderGoogle, "GOOGLE_API_KEY"},
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-384": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

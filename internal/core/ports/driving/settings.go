package driving

import "github.com/custodia-labs/mcptube/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config file,
	// then MCPTUBE_* and provider key environment variables.
	Get() (*domain.AppSettings, error)

	// Set stores a single dotted key in the config file.
	Set(key, value string) error

	// Validate checks the effective settings.
	Validate() error

	// Keys lists the settable keys.
	Keys() []string

	// Path returns the config file location.
	Path() string

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error
}

package driven

// ConfigStore persists user settings under dotted keys such as
// "llm.provider" or "server.port".
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	// GetString returns "" when the key is unset or not a string.
	GetString(key string) string

	// GetInt returns 0 when the key is unset or not numeric.
	GetInt(key string) int

	// Keys returns every stored key, sorted.
	Keys() []string

	// Set stores and immediately persists a value.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path returns where the settings live, for display.
	Path() string
}

package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptClassify turns video metadata into tags.
	// Placeholders: %s title, %s channel, %s description.
	PromptClassify = "classify"

	// PromptReport writes a structured JSON report.
	// Placeholders: %s focus instruction, %s video material.
	PromptReport = "report"

	// PromptDiscover clusters platform search results into themes.
	// Placeholders: %s topic, %s candidate list.
	PromptDiscover = "discover"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses its built-in prompts.
	SetPromptStore(store PromptStore)
}

// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (~/.mcptube/config.toml)
//   - PromptStore: user-editable LLM prompt templates (~/.mcptube/prompts)
package file

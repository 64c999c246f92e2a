// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - VideoStore: Video record persistence
//   - Extractor: Fetches metadata and transcripts (yt-dlp)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the operations that need them return a configuration error:
//
//   - FragmentStore + EmbeddingService: The semantic index. Both are needed.
//   - LLMService: Classification, reports and discovery clustering.
//   - Classifier: Automatic and explicit tagging.
//   - FrameCapturer: Frame extraction (yt-dlp + ffmpeg).
//   - VideoSearcher: Discovery.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

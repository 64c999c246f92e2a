package driven

import "context"

// EmbeddingService turns transcript text into vectors for the FragmentStore.
// Dimensions must stay fixed for the lifetime of an index.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping makes the cheapest request the provider supports.
	Ping(ctx context.Context) error

	Close() error
}

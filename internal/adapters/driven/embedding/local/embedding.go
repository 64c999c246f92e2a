// Package local provides an offline embedding service based on feature hashing.
//
// Tokens and adjacent token pairs are hashed into a fixed number of buckets
// with FNV-1a, signed by a second hash bit, and the result is L2-normalised.
// The vectors are deterministic across runs and machines, so an index built
// with this embedder stays valid without any model download.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	// ModelName identifies vectors produced by this embedder.
	ModelName = "hashing-384"

	// Dimensions is the vector size.
	Dimensions = 384

	bigramWeight = 0.5
)

// EmbeddingService is a stateless hashing embedder.
type EmbeddingService struct{}

// NewEmbeddingService creates a hashing embedder.
func NewEmbeddingService() *EmbeddingService {
	return &EmbeddingService{}
}

// Embed hashes text into a unit vector. Text without tokens yields the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return embed(text), nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = embed(text)
	}
	return out, nil
}

// Dimensions returns the vector size.
func (s *EmbeddingService) Dimensions() int { return Dimensions }

// ModelName returns the embedder name.
func (s *EmbeddingService) ModelName() string { return ModelName }

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *EmbeddingService) Close() error { return nil }

func embed(text string) []float32 {
	acc := make([]float64, Dimensions)
	tokens := tokenize(text)
	for i, tok := range tokens {
		addFeature(acc, tok, 1)
		if i > 0 {
			addFeature(acc, tokens[i-1]+" "+tok, bigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	out := make([]float32, Dimensions)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out
}

func addFeature(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := sum % uint64(len(acc))
	if (sum>>63)&1 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

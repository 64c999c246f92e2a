// Package vector holds the exact nearest-neighbour ranking shared by the
// fragment stores that keep embeddings next to the data (memory, sqlite).
// Backends with a native ANN index (pgvector, milvus) rank server-side.
package vector

import (
	"math"
	"sort"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// CosineDistance returns 1 - cos(a, b). Mismatched or zero vectors are
// maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Ranker accumulates scored fragments and returns the k closest.
type Ranker struct {
	query []float32
	hits  []domain.SearchHit
}

// NewRanker creates a ranker for query.
func NewRanker(query []float32) *Ranker {
	return &Ranker{query: query}
}

// Add scores a fragment against the query.
func (r *Ranker) Add(f *domain.Fragment) {
	r.hits = append(r.hits, domain.SearchHit{
		VideoID:  f.VideoID,
		Text:     f.Text,
		Start:    f.Start,
		End:      f.End,
		Position: f.Position,
		Score:    CosineDistance(r.query, f.Embedding),
	})
}

// Top returns at most k hits ordered by ascending distance.
// Ties keep video and position order so results are deterministic.
func (r *Ranker) Top(k int) []domain.SearchHit {
	sort.SliceStable(r.hits, func(i, j int) bool {
		a, b := r.hits[i], r.hits[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.VideoID != b.VideoID {
			return a.VideoID < b.VideoID
		}
		return a.Position < b.Position
	})
	if k > 0 && len(r.hits) > k {
		return r.hits[:k]
	}
	if r.hits == nil {
		return []domain.SearchHit{}
	}
	return r.hits
}

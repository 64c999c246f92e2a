package driving

import (
	"context"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// SearchService provides semantic transcript search to external actors.
type SearchService interface {
	// Search returns transcript fragments ranked by distance (lower is better).
	Search(ctx context.Context, query string, req domain.SearchRequest) ([]domain.SearchHit, error)
}

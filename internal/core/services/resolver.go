package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// FallbackResolver is consulted only when no tier matched.
// It receives the library listing and may pick one entry, for example
// through an LLM. Returning domain.ErrNotFound keeps the original failure.
type FallbackResolver interface {
	Resolve(ctx context.Context, query string, videos []domain.Video) (*domain.Video, error)
}

// Resolver maps user input to exactly one stored video.
//
// Tiers run in order and the first tier that produces a result wins:
//  1. exact video ID
//  2. all-digit input as a 1-based position in the newest-first listing
//  3. case-insensitive substring of title or channel
//
// Tier 1 short-circuits everything. All-digit input that is not an ID
// never reaches tier 3.
type Resolver struct {
	store    driven.VideoStore
	fallback FallbackResolver
}

// NewResolver creates a resolver over the video store.
func NewResolver(store driven.VideoStore) *Resolver {
	return &Resolver{store: store}
}

// WithFallback installs a resolver tried after the substring tier finds nothing.
func (r *Resolver) WithFallback(f FallbackResolver) *Resolver {
	r.fallback = f
	return r
}

// Resolve returns the single video matching query.
// Errors are domain.ErrNotFound (wrapped) or *domain.AmbiguousError.
func (r *Resolver) Resolve(ctx context.Context, query string) (*domain.Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty video reference", domain.ErrNotFound)
	}

	// Tier 1: exact ID.
	video, err := r.store.Get(ctx, query)
	if err == nil {
		logger.Debug("Resolved %q by ID", query)
		return video, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	videos, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	// Tier 2: position in the newest-first listing.
	if isDigits(query) {
		return r.byPosition(ctx, query, videos)
	}

	// Tier 3: substring of title or channel.
	needle := strings.ToLower(query)
	var matches []domain.Video
	for _, v := range videos {
		if strings.Contains(strings.ToLower(v.Title), needle) ||
			strings.Contains(strings.ToLower(v.Channel), needle) {
			matches = append(matches, v)
		}
	}

	switch len(matches) {
	case 0:
		if r.fallback != nil {
			logger.Debug("No tier matched %q, trying fallback", query)
			return r.fallback.Resolve(ctx, query, videos)
		}
		return nil, fmt.Errorf("%w: no video matches %q", domain.ErrNotFound, query)
	case 1:
		logger.Debug("Resolved %q by substring to %s", query, matches[0].ID)
		return r.store.Get(ctx, matches[0].ID)
	default:
		titles := make([]string, len(matches))
		for i := range matches {
			titles[i] = matches[i].Title
		}
		return nil, &domain.AmbiguousError{Query: query, Titles: titles}
	}
}

func (r *Resolver) byPosition(ctx context.Context, query string, videos []domain.Video) (*domain.Video, error) {
	n, err := strconv.Atoi(query)
	if err != nil || n < 1 || n > len(videos) {
		if len(videos) == 0 {
			return nil, fmt.Errorf("%w: index %s out of range, library is empty", domain.ErrNotFound, query)
		}
		return nil, fmt.Errorf("%w: index %s out of range (1-%d)", domain.ErrNotFound, query, len(videos))
	}
	logger.Debug("Resolved %q by position to %s", query, videos[n-1].ID)
	return r.store.Get(ctx, videos[n-1].ID)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

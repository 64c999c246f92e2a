package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// Ensure APISearcher implements the interface.
var _ driven.VideoSearcher = (*APISearcher)(nil)

// maxAPIResults is the largest page the search endpoint returns.
const maxAPIResults = 50

// APISearcher searches with the YouTube Data API v3.
// Durations come from a second videos.list call on the result ids.
type APISearcher struct {
	svc     *ytapi.Service
	limiter *RateLimiter
}

// NewAPISearcher creates a searcher authenticated by an API key.
// Extra options are appended, which lets tests point it at a local endpoint.
func NewAPISearcher(ctx context.Context, apiKey string, limiter *RateLimiter, opts ...option.ClientOption) (*APISearcher, error) {
	if apiKey == "" {
		return nil, &domain.ConfigurationError{Component: "youtube data api", Hint: "set youtube.api_key"}
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	if limiter == nil {
		limiter = NewRateLimiter(0, 0)
	}
	return &APISearcher{svc: svc, limiter: limiter}, nil
}

// SearchVideos returns up to limit video candidates for query.
func (s *APISearcher) SearchVideos(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}
	if limit > maxAPIResults {
		limit = maxAPIResults
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, s.wrap("search.list", err)
	}

	out := make([]domain.Candidate, 0, len(resp.Items))
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		c := domain.Candidate{
			VideoID:     item.Id.VideoId,
			Title:       item.Snippet.Title,
			Channel:     item.Snippet.ChannelTitle,
			URL:         WatchURL(item.Id.VideoId),
			Description: item.Snippet.Description,
		}
		if th := item.Snippet.Thumbnails; th != nil {
			switch {
			case th.High != nil:
				c.ThumbnailURL = th.High.Url
			case th.Default != nil:
				c.ThumbnailURL = th.Default.Url
			}
		}
		out = append(out, c)
		ids = append(ids, c.VideoID)
	}
	if len(ids) == 0 {
		return out, nil
	}

	durations, err := s.durations(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Duration = durations[out[i].VideoID]
	}
	return out, nil
}

func (s *APISearcher) durations(ctx context.Context, ids []string) (map[string]float64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.svc.Videos.List([]string{"contentDetails"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, s.wrap("videos.list", err)
	}
	out := make(map[string]float64, len(resp.Items))
	for _, v := range resp.Items {
		if v.ContentDetails != nil {
			out[v.Id] = parseISODuration(v.ContentDetails.Duration)
		}
	}
	return out, nil
}

func (s *APISearcher) wrap(op string, err error) error {
	if isRateLimited(err) {
		s.limiter.Backoff(0)
	}
	return domain.NewCollaboratorError(domain.CollaboratorDiscovery, "youtube "+op, err)
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration converts an ISO 8601 duration such as PT1H2M3S to seconds.
// Unrecognised input yields zero.
func parseISODuration(s string) float64 {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	var total float64
	for i, mult := range []float64{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		total += float64(n) * mult
	}
	return total
}

package driving

import (
	"context"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// ReportService writes LLM reports over library videos.
type ReportService interface {
	// Generate writes a report about one video.
	Generate(ctx context.Context, query, focus string) (*domain.Report, error)

	// GenerateFromQuery writes a report over the videos matching a search.
	GenerateFromQuery(ctx context.Context, query string, tags []string, focus string) (*domain.Report, error)

	// Synthesize writes a cross-video report over an explicit list of videos.
	Synthesize(ctx context.Context, queries []string, focus string) (*domain.Report, error)

	// Render formats a report as markdown or HTML.
	Render(ctx context.Context, report *domain.Report, format domain.ReportFormat) (string, error)
}

// DiscoveryService finds new videos on a topic.
type DiscoveryService interface {
	// Discover searches the platform and groups results into themes.
	Discover(ctx context.Context, topic string) (*domain.Discovery, error)
}

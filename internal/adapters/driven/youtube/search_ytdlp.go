package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// Ensure YtDlpSearcher implements the interface.
var _ driven.VideoSearcher = (*YtDlpSearcher)(nil)

// YtDlpSearcher searches with yt-dlp's ytsearchN: pseudo-URL.
type YtDlpSearcher struct {
	ytdlp   string
	timeout time.Duration
	run     Runner
}

// NewYtDlpSearcher creates a searcher. Empty path and nil runner use defaults.
func NewYtDlpSearcher(ytdlpPath string, timeout time.Duration, run Runner) *YtDlpSearcher {
	if ytdlpPath == "" {
		ytdlpPath = DefaultYtDlpPath
	}
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}
	if run == nil {
		run = ExecRunner
	}
	return &YtDlpSearcher{ytdlp: ytdlpPath, timeout: timeout, run: run}
}

// SearchVideos returns up to limit candidates for query.
func (s *YtDlpSearcher) SearchVideos(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	target := fmt.Sprintf("ytsearch%d:%s", limit, query)
	out, err := s.run(ctx, s.ytdlp, "--flat-playlist", "-J", "--no-warnings", target)
	if err != nil {
		return nil, domain.NewCollaboratorError(domain.CollaboratorDiscovery, "yt-dlp search", err)
	}
	if !gjson.ValidBytes(out) {
		return nil, domain.NewCollaboratorError(domain.CollaboratorDiscovery, "yt-dlp search",
			fmt.Errorf("invalid JSON output"))
	}
	return parseSearchEntries(gjson.ParseBytes(out), limit), nil
}

// parseSearchEntries maps flat-playlist entries to candidates, skipping
// entries without an id.
func parseSearchEntries(result gjson.Result, limit int) []domain.Candidate {
	out := []domain.Candidate{}
	for _, e := range result.Get("entries").Array() {
		id := e.Get("id").String()
		if id == "" {
			continue
		}
		channel := e.Get("channel").String()
		if channel == "" {
			channel = e.Get("uploader").String()
		}
		out = append(out, domain.Candidate{
			VideoID:      id,
			Title:        e.Get("title").String(),
			Channel:      channel,
			Duration:     e.Get("duration").Float(),
			URL:          WatchURL(id),
			Description:  strings.TrimSpace(e.Get("description").String()),
			ThumbnailURL: lastThumbnail(e),
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

// lastThumbnail returns the final, and largest, entry of the thumbnails list.
func lastThumbnail(entry gjson.Result) string {
	thumbs := entry.Get("thumbnails").Array()
	if len(thumbs) == 0 {
		return entry.Get("thumbnail").String()
	}
	return thumbs[len(thumbs)-1].Get("url").String()
}

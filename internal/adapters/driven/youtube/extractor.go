package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Defaults for the extractor.
const (
	DefaultYtDlpPath        = "yt-dlp"
	DefaultExtractTimeout   = 120 * time.Second
	subtitleDownloadTimeout = 30 * time.Second
	maxSubtitleBytes        = 32 << 20
)

// ExtractorConfig configures an Extractor.
type ExtractorConfig struct {
	// YtDlpPath is the yt-dlp binary (default: yt-dlp).
	YtDlpPath string

	// Timeout bounds one yt-dlp invocation (default: 120s).
	Timeout time.Duration

	// HTTPClient downloads subtitle tracks.
	HTTPClient *http.Client

	// Limiter throttles subtitle downloads. Nil uses a private limiter.
	Limiter *RateLimiter

	// Run executes yt-dlp. Nil uses ExecRunner.
	Run Runner
}

// Extractor reads metadata with `yt-dlp -J` and downloads the best English
// json3 transcript.
type Extractor struct {
	ytdlp   string
	timeout time.Duration
	client  *http.Client
	limiter *RateLimiter
	run     Runner
}

// NewExtractor creates an Extractor.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.YtDlpPath == "" {
		cfg.YtDlpPath = DefaultYtDlpPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultExtractTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: subtitleDownloadTimeout}
	}
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(0, 0)
	}
	if cfg.Run == nil {
		cfg.Run = ExecRunner
	}
	return &Extractor{
		ytdlp:   cfg.YtDlpPath,
		timeout: cfg.Timeout,
		client:  cfg.HTTPClient,
		limiter: cfg.Limiter,
		run:     cfg.Run,
	}
}

// VideoID parses the id out of a URL without network access.
func (e *Extractor) VideoID(url string) (string, error) {
	return ParseVideoID(url)
}

// Extract fetches metadata, chapters and transcript for url.
// A video without English captions is returned with an empty transcript.
func (e *Extractor) Extract(ctx context.Context, url string) (*domain.Video, error) {
	id, err := ParseVideoID(url)
	if err != nil {
		return nil, domain.NewCollaboratorError(domain.CollaboratorExtraction, "parse url", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := e.run(runCtx, e.ytdlp, "-J", "--skip-download", "--no-warnings", "--no-playlist", WatchURL(id))
	if err != nil {
		return nil, domain.NewCollaboratorError(domain.CollaboratorExtraction, "yt-dlp "+id, err)
	}
	if !gjson.ValidBytes(out) {
		return nil, domain.NewCollaboratorError(domain.CollaboratorExtraction, "yt-dlp "+id,
			fmt.Errorf("invalid JSON output"))
	}

	info := gjson.ParseBytes(out)
	video := videoFromInfo(id, info)
	video.Transcript = e.transcript(ctx, id, info)
	return video, nil
}

func videoFromInfo(id string, info gjson.Result) *domain.Video {
	channel := info.Get("channel").String()
	if channel == "" {
		channel = info.Get("uploader").String()
	}
	return &domain.Video{
		ID:           id,
		Title:        info.Get("title").String(),
		Description:  info.Get("description").String(),
		Channel:      channel,
		Duration:     info.Get("duration").Float(),
		ThumbnailURL: info.Get("thumbnail").String(),
		Chapters:     parseChapters(info),
		Transcript:   []domain.Segment{},
		Tags:         []string{},
	}
}

// transcript tries each candidate track until one yields segments.
func (e *Extractor) transcript(ctx context.Context, id string, info gjson.Result) []domain.Segment {
	for _, u := range subtitleCandidates(info) {
		data, err := e.download(ctx, u)
		if err != nil {
			logger.Warn("subtitle download failed for %s: %v", id, err)
			continue
		}
		if segs := parseJSON3(data); len(segs) > 0 {
			return segs
		}
	}
	logger.Warn("no English transcript available for %s", id)
	return []domain.Segment{}
}

func (e *Extractor) download(ctx context.Context, url string) ([]byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		e.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxSubtitleBytes))
}

// Package frames captures still images from videos with yt-dlp and ffmpeg.
//
// yt-dlp resolves a direct media URL, then ffmpeg seeks to the timestamp
// and writes one JPEG. Results are cached as <dir>/<id>_<ts>.jpg with the
// timestamp rendered to two decimals.
package frames

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/mcptube/internal/adapters/driven/youtube"
	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// Ensure Capturer implements the interface.
var _ driven.FrameCapturer = (*Capturer)(nil)

// Defaults for Capturer.
const (
	DefaultFFmpegPath     = "ffmpeg"
	DefaultCaptureTimeout = 30 * time.Second
	resolveTimeout        = 60 * time.Second
	streamFormat          = "best[ext=mp4]/best"
)

// Config configures a Capturer.
type Config struct {
	// Dir is the frame cache directory.
	Dir string

	// YtDlpPath is the yt-dlp binary (default: yt-dlp).
	YtDlpPath string

	// FFmpegPath is the ffmpeg binary (default: ffmpeg).
	FFmpegPath string

	// Timeout bounds the ffmpeg run (default: 30s).
	Timeout time.Duration

	// Run executes both tools. Nil uses youtube.ExecRunner.
	Run youtube.Runner
}

// Capturer implements driven.FrameCapturer with an on-disk cache.
type Capturer struct {
	dir     string
	ytdlp   string
	ffmpeg  string
	timeout time.Duration
	run     youtube.Runner
}

// NewCapturer creates a Capturer writing into cfg.Dir.
func NewCapturer(cfg Config) *Capturer {
	if cfg.YtDlpPath == "" {
		cfg.YtDlpPath = youtube.DefaultYtDlpPath
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = DefaultFFmpegPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCaptureTimeout
	}
	if cfg.Run == nil {
		cfg.Run = youtube.ExecRunner
	}
	return &Capturer{
		dir:     cfg.Dir,
		ytdlp:   cfg.YtDlpPath,
		ffmpeg:  cfg.FFmpegPath,
		timeout: cfg.Timeout,
		run:     cfg.Run,
	}
}

// CachePath returns where the frame for (videoID, timestamp) is stored.
func (c *Capturer) CachePath(videoID string, timestamp float64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%.2f.jpg", videoID, timestamp))
}

// Capture returns the path of a JPEG at timestamp, capturing it on a cache miss.
func (c *Capturer) Capture(ctx context.Context, videoID string, timestamp float64) (string, error) {
	if timestamp < 0 {
		return "", fmt.Errorf("%w: negative timestamp %v", domain.ErrInvalidInput, timestamp)
	}

	out := c.CachePath(videoID, timestamp)
	if info, err := os.Stat(out); err == nil && info.Size() > 0 {
		logger.Debug("frame cache hit: %s", out)
		return out, nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create frames dir: %w", err)
	}

	stream, err := c.resolveStream(ctx, videoID)
	if err != nil {
		return "", domain.NewCollaboratorError(domain.CollaboratorCapture, "resolve stream "+videoID, err)
	}

	if err := c.grab(ctx, stream, timestamp, out); err != nil {
		return "", domain.NewCollaboratorError(domain.CollaboratorCapture,
			fmt.Sprintf("ffmpeg %s@%s", videoID, domain.FormatTimestamp(timestamp)), err)
	}
	logger.Info("frame captured: %s", out)
	return out, nil
}

func (c *Capturer) resolveStream(ctx context.Context, videoID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	stdout, err := c.run(ctx, c.ytdlp, "-f", streamFormat, "-g", "--no-warnings", youtube.WatchURL(videoID))
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", errors.New("no stream URL resolved")
}

// grab writes to a temporary file and renames it so an interrupted run
// never leaves a truncated cache entry.
func (c *Capturer) grab(ctx context.Context, stream string, timestamp float64, out string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tmp := strings.TrimSuffix(out, ".jpg") + ".part.jpg"
	defer os.Remove(tmp)

	_, err := c.run(ctx, c.ffmpeg,
		"-ss", strconv.FormatFloat(timestamp, 'f', -1, 64),
		"-i", stream,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", tmp,
	)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", domain.ErrCaptureTimeout, c.timeout)
	}
	if err != nil {
		return err
	}

	info, err := os.Stat(tmp)
	if err != nil || info.Size() == 0 {
		return errors.New("ffmpeg produced no image")
	}
	return os.Rename(tmp, out)
}

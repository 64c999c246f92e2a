package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

var (
	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/watch\?.*v=([\w-]{11})`),
		regexp.MustCompile(`youtu\.be/([\w-]{11})`),
		regexp.MustCompile(`youtube\.com/embed/([\w-]{11})`),
		regexp.MustCompile(`youtube\.com/v/([\w-]{11})`),
		regexp.MustCompile(`youtube\.com/shorts/([\w-]{11})`),
	}
	bareID = regexp.MustCompile(`^[\w-]{11}$`)
)

// ParseVideoID returns the 11-character video id from a watch, short,
// embed or shorts URL. A bare id is returned unchanged.
func ParseVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if bareID.MatchString(raw) {
		return raw, nil
	}
	for _, p := range urlPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}
	if u, err := url.Parse(raw); err == nil {
		if v := u.Query().Get("v"); len(v) == 11 {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: cannot extract video id from %q", domain.ErrInvalidInput, raw)
}

// WatchURL returns the canonical watch URL for an id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

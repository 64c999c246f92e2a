package youtube

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// languagePreference is tried in order before any other en-* track.
var languagePreference = []string{"en", "en-orig", "en-US", "en-GB"}

// subtitleCandidates lists json3 subtitle URLs from an info dictionary in
// preference order: uploaded subtitles before automatic captions, and
// within each the preferred languages before other English variants.
func subtitleCandidates(info gjson.Result) []string {
	var out []string
	for _, field := range []string{"subtitles", "automatic_captions"} {
		tracks := info.Get(field)
		if !tracks.IsObject() {
			continue
		}
		byLang := tracks.Map()
		seen := make(map[string]bool)
		for _, lang := range languagePreference {
			seen[lang] = true
			if u := json3URL(byLang[lang]); u != "" {
				out = append(out, u)
			}
		}
		tracks.ForEach(func(key, formats gjson.Result) bool {
			lang := key.String()
			if seen[lang] || !strings.HasPrefix(lang, "en") {
				return true
			}
			if u := json3URL(formats); u != "" {
				out = append(out, u)
			}
			return true
		})
	}
	return out
}

func json3URL(formats gjson.Result) string {
	for _, f := range formats.Array() {
		if f.Get("ext").String() == "json3" {
			return f.Get("url").String()
		}
	}
	return ""
}

// parseJSON3 converts YouTube's json3 caption format into segments.
// Events without text, such as window and style events, are skipped.
func parseJSON3(data []byte) []domain.Segment {
	events := gjson.GetBytes(data, "events").Array()
	out := make([]domain.Segment, 0, len(events))
	for _, ev := range events {
		segs := ev.Get("segs")
		if !segs.Exists() {
			continue
		}
		var b strings.Builder
		for _, s := range segs.Array() {
			b.WriteString(s.Get("utf8").String())
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			continue
		}
		out = append(out, domain.Segment{
			Start:    ev.Get("tStartMs").Float() / 1000,
			Duration: ev.Get("dDurationMs").Float() / 1000,
			Text:     text,
		})
	}
	return out
}

// parseChapters reads uploader chapter markers. Untitled chapters are dropped.
func parseChapters(info gjson.Result) []domain.Chapter {
	out := []domain.Chapter{}
	for _, ch := range info.Get("chapters").Array() {
		title := ch.Get("title").String()
		if title == "" {
			continue
		}
		out = append(out, domain.Chapter{Title: title, Start: ch.Get("start_time").Float()})
	}
	return out
}

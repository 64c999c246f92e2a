package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseJSON3(t *testing.T) {
	data := []byte(`{"events":[
		{"tStartMs":0,"dDurationMs":5000,"id":1,"wpWinPosId":1},
		{"tStartMs":1200,"dDurationMs":3400,"segs":[{"utf8":"hello "},{"utf8":"world"}]},
		{"tStartMs":4600,"dDurationMs":100,"segs":[{"utf8":"\n"}]},
		{"tStartMs":5000,"segs":[{"utf8":" second line "}]}
	]}`)

	segs := parseJSON3(data)

	require.Len(t, segs, 2)
	assert.Equal(t, "hello world", segs[0].Text)
	assert.InDelta(t, 1.2, segs[0].Start, 1e-9)
	assert.InDelta(t, 3.4, segs[0].Duration, 1e-9)
	assert.Equal(t, "second line", segs[1].Text)
	assert.Zero(t, segs[1].Duration)
}

func TestParseJSON3_NoEvents(t *testing.T) {
	assert.Empty(t, parseJSON3([]byte(`{}`)))
}

func TestSubtitleCandidates_Order(t *testing.T) {
	info := gjson.Parse(`{
		"subtitles": {
			"de": [{"ext":"json3","url":"sub-de"}],
			"en-AU": [{"ext":"vtt","url":"x"},{"ext":"json3","url":"sub-en-AU"}],
			"en-GB": [{"ext":"json3","url":"sub-en-GB"}]
		},
		"automatic_captions": {
			"en": [{"ext":"srv1","url":"x"},{"ext":"json3","url":"auto-en"}],
			"en-orig": [{"ext":"json3","url":"auto-en-orig"}]
		}
	}`)

	assert.Equal(t, []string{"sub-en-GB", "sub-en-AU", "auto-en", "auto-en-orig"}, subtitleCandidates(info))
}

func TestSubtitleCandidates_None(t *testing.T) {
	assert.Empty(t, subtitleCandidates(gjson.Parse(`{"subtitles":{"fr":[{"ext":"json3","url":"u"}]}}`)))
}

func TestParseChapters(t *testing.T) {
	info := gjson.Parse(`{"chapters":[
		{"title":"Intro","start_time":0,"end_time":30},
		{"title":"","start_time":30},
		{"title":"Main","start_time":30.5}
	]}`)

	chapters := parseChapters(info)

	require.Len(t, chapters, 2)
	assert.Equal(t, "Main", chapters[1].Title)
	assert.InDelta(t, 30.5, chapters[1].Start, 1e-9)
	assert.NotNil(t, parseChapters(gjson.Parse(`{}`)))
}

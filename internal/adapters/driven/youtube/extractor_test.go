package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

func fakeRunner(out string, err error, calls *[][]string) Runner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		if calls != nil {
			*calls = append(*calls, append([]string{name}, args...))
		}
		return []byte(out), err
	}
}

func TestExtractor_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manual":
			w.WriteHeader(http.StatusNotFound)
		case "/auto":
			_, _ = w.Write([]byte(`{"events":[{"tStartMs":0,"dDurationMs":2000,"segs":[{"utf8":"welcome"}]}]}`))
		}
	}))
	defer server.Close()

	info := fmt.Sprintf(`{
		"id":"dQw4w9WgXcQ","title":"Talk","description":"About things",
		"uploader":"Uploader","duration":212,"thumbnail":"https://i.ytimg.com/t.jpg",
		"chapters":[{"title":"Start","start_time":0}],
		"subtitles":{"en":[{"ext":"json3","url":"%[1]s/manual"}]},
		"automatic_captions":{"en":[{"ext":"json3","url":"%[1]s/auto"}]}
	}`, server.URL)

	var calls [][]string
	ex := NewExtractor(ExtractorConfig{Run: fakeRunner(info, nil, &calls)})

	video, err := ex.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", video.ID)
	assert.Equal(t, "Talk", video.Title)
	assert.Equal(t, "Uploader", video.Channel)
	assert.InDelta(t, 212.0, video.Duration, 1e-9)
	require.Len(t, video.Chapters, 1)
	require.Len(t, video.Transcript, 1)
	assert.Equal(t, "welcome", video.Transcript[0].Text)

	require.Len(t, calls, 1)
	assert.Equal(t, "yt-dlp", calls[0][0])
	assert.Contains(t, calls[0], "-J")
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", calls[0][len(calls[0])-1])
}

func TestExtractor_NoTranscript(t *testing.T) {
	ex := NewExtractor(ExtractorConfig{Run: fakeRunner(`{"title":"Silent","channel":"C"}`, nil, nil)})

	video, err := ex.Extract(context.Background(), "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "C", video.Channel)
	assert.NotNil(t, video.Transcript)
	assert.Empty(t, video.Transcript)
}

func TestExtractor_Errors(t *testing.T) {
	t.Run("runner failure", func(t *testing.T) {
		ex := NewExtractor(ExtractorConfig{Run: fakeRunner("", errors.New("video unavailable"), nil)})

		_, err := ex.Extract(context.Background(), "dQw4w9WgXcQ")

		assert.True(t, domain.IsCollaboratorError(err, domain.CollaboratorExtraction))
		assert.Contains(t, err.Error(), "video unavailable")
	})

	t.Run("invalid json", func(t *testing.T) {
		ex := NewExtractor(ExtractorConfig{Run: fakeRunner("not json", nil, nil)})

		_, err := ex.Extract(context.Background(), "dQw4w9WgXcQ")

		assert.True(t, domain.IsCollaboratorError(err, domain.CollaboratorExtraction))
	})

	t.Run("bad url", func(t *testing.T) {
		ex := NewExtractor(ExtractorConfig{Run: fakeRunner("{}", nil, nil)})

		_, err := ex.Extract(context.Background(), "https://vimeo.com/1")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing tool", func(t *testing.T) {
		ex := NewExtractor(ExtractorConfig{YtDlpPath: "mcptube-no-such-binary"})

		_, err := ex.Extract(context.Background(), "dQw4w9WgXcQ")

		assert.ErrorIs(t, err, domain.ErrToolMissing)
	})
}

func TestExtractor_VideoID(t *testing.T) {
	id, err := NewExtractor(ExtractorConfig{}).VideoID("https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", id)
}

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

// testStore connects to MCPTUBE_TEST_POSTGRES_URL or skips.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("MCPTUBE_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("MCPTUBE_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, url)
	require.NoError(t, err)
	_, err = store.pool.Exec(ctx, "TRUNCATE videos")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEncodeJSONColumns_NilSlicesBecomeArrays(t *testing.T) {
	chapters, transcript, tags, err := encodeJSONColumns(&domain.Video{ID: "x"})

	require.NoError(t, err)
	assert.Equal(t, "[]", chapters)
	assert.Equal(t, "[]", transcript)
	assert.Equal(t, "[]", tags)
}

func TestVideoStore_Postgres(t *testing.T) {
	store := testStore(t).VideoStore()
	ctx := context.Background()
	added := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	video := &domain.Video{
		ID:         "dQw4w9WgXcQ",
		Title:      "Title",
		Transcript: []domain.Segment{{Start: 1, Duration: 2, Text: "hi"}},
		Tags:       []string{"music"},
		AddedAt:    added,
	}

	require.NoError(t, store.Save(ctx, video))
	video.AddedAt = added.Add(time.Hour)
	require.NoError(t, store.Save(ctx, video))

	got, err := store.Get(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, added, got.AddedAt)
	assert.Equal(t, []domain.Segment{{Start: 1, Duration: 2, Text: "hi"}}, got.Transcript)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Transcript)

	require.NoError(t, store.Delete(ctx, "dQw4w9WgXcQ"))
	_, err = store.Get(ctx, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFragmentStore_PGVector(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, _ = s.pool.Exec(ctx, "DROP TABLE IF EXISTS fragments")
	store, err := s.FragmentStore(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, store.Upsert(ctx, []domain.Fragment{
		{Key: "a_0", VideoID: "a", Text: "x", Embedding: []float32{1, 0}},
		{Key: "a_1", VideoID: "a", Text: "y", Position: 1, Embedding: []float32{0, 1}},
	}))

	hits, err := store.Search(ctx, []float32{1, 0}, "a", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].Position)

	require.NoError(t, store.DeleteVideo(ctx, "a"))
	n, err := store.Count(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewFragmentStore_RejectsZeroDims(t *testing.T) {
	_, err := NewFragmentStore(context.Background(), nil, 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

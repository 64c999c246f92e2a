package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// Ensure VideoStore implements the interface.
var _ driven.VideoStore = (*VideoStore)(nil)

// VideoStore is a PostgreSQL implementation of driven.VideoStore.
type VideoStore struct {
	pool *pgxpool.Pool
}

// Save inserts or updates a video. added_at is written once.
func (s *VideoStore) Save(ctx context.Context, video *domain.Video) error {
	chapters, transcript, tags, err := encodeJSONColumns(video)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO videos (video_id, title, description, channel, duration,
			thumbnail_url, chapters, transcript, tags, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9::jsonb, $10)
		ON CONFLICT (video_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			channel = EXCLUDED.channel,
			duration = EXCLUDED.duration,
			thumbnail_url = EXCLUDED.thumbnail_url,
			chapters = EXCLUDED.chapters,
			transcript = EXCLUDED.transcript,
			tags = EXCLUDED.tags
	`, video.ID, video.Title, video.Description, video.Channel, video.Duration,
		video.ThumbnailURL, chapters, transcript, tags, video.AddedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving video %s: %w", video.ID, err)
	}
	return nil
}

// Get retrieves a full video record.
func (s *VideoStore) Get(ctx context.Context, id string) (*domain.Video, error) {
	var (
		v                          domain.Video
		chapters, transcript, tags []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT video_id, title, description, channel, duration, thumbnail_url,
			chapters, transcript, tags, added_at
		FROM videos WHERE video_id = $1
	`, id).Scan(&v.ID, &v.Title, &v.Description, &v.Channel, &v.Duration,
		&v.ThumbnailURL, &chapters, &transcript, &tags, &v.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("video %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning video: %w", err)
	}

	if err := json.Unmarshal(chapters, &v.Chapters); err != nil {
		return nil, fmt.Errorf("unmarshaling chapters: %w", err)
	}
	if err := json.Unmarshal(transcript, &v.Transcript); err != nil {
		return nil, fmt.Errorf("unmarshaling transcript: %w", err)
	}
	if err := json.Unmarshal(tags, &v.Tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	v.AddedAt = v.AddedAt.UTC()
	return &v, nil
}

// List returns metadata for every video, newest first.
func (s *VideoStore) List(ctx context.Context) ([]domain.Video, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT video_id, title, description, channel, duration, thumbnail_url, tags, added_at
		FROM videos ORDER BY added_at DESC, video_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	defer rows.Close()

	videos := []domain.Video{}
	for rows.Next() {
		var (
			v    domain.Video
			tags []byte
		)
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.Channel, &v.Duration,
			&v.ThumbnailURL, &tags, &v.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning video: %w", err)
		}
		if err := json.Unmarshal(tags, &v.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
		v.AddedAt = v.AddedAt.UTC()
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// Delete removes a video. Unknown IDs are a no-op.
func (s *VideoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM videos WHERE video_id = $1", id); err != nil {
		return fmt.Errorf("deleting video %s: %w", id, err)
	}
	return nil
}

// Exists reports whether a video is stored.
func (s *VideoStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM videos WHERE video_id = $1)", id).Scan(&exists)
	return exists, err
}

func encodeJSONColumns(v *domain.Video) (chapters, transcript, tags string, err error) {
	enc := func(x any) (string, error) {
		b, err := json.Marshal(x)
		return string(b), err
	}
	if chapters, err = enc(orEmpty(v.Chapters)); err != nil {
		return "", "", "", fmt.Errorf("marshaling chapters: %w", err)
	}
	if transcript, err = enc(orEmpty(v.Transcript)); err != nil {
		return "", "", "", fmt.Errorf("marshaling transcript: %w", err)
	}
	if tags, err = enc(orEmpty(v.Tags)); err != nil {
		return "", "", "", fmt.Errorf("marshaling tags: %w", err)
	}
	return chapters, transcript, tags, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

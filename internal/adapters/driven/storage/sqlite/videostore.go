package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

// Ensure videoStore implements the interface.
var _ driven.VideoStore = (*videoStore)(nil)

type videoStore struct {
	db *sql.DB
}

// Save inserts or updates a video. added_at is written once.
func (s *videoStore) Save(ctx context.Context, video *domain.Video) error {
	chapters, err := json.Marshal(nonNil(video.Chapters))
	if err != nil {
		return fmt.Errorf("marshaling chapters: %w", err)
	}
	transcript, err := json.Marshal(nonNil(video.Transcript))
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}
	tags, err := json.Marshal(nonNil(video.Tags))
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO videos (video_id, title, description, channel, duration,
			thumbnail_url, chapters, transcript, tags, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			channel = excluded.channel,
			duration = excluded.duration,
			thumbnail_url = excluded.thumbnail_url,
			chapters = excluded.chapters,
			transcript = excluded.transcript,
			tags = excluded.tags
	`, video.ID, video.Title, video.Description, video.Channel, video.Duration,
		video.ThumbnailURL, string(chapters), string(transcript), string(tags), formatTime(video.AddedAt))
	if err != nil {
		return fmt.Errorf("saving video %s: %w", video.ID, err)
	}
	return nil
}

// Get retrieves a full video record.
func (s *videoStore) Get(ctx context.Context, id string) (*domain.Video, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT video_id, title, description, channel, duration, thumbnail_url,
			chapters, transcript, tags, added_at
		FROM videos WHERE video_id = ?
	`, id)

	var (
		v                              domain.Video
		chapters, transcript, tags, at string
	)
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.Channel, &v.Duration,
		&v.ThumbnailURL, &chapters, &transcript, &tags, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("video %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning video: %w", err)
	}

	if err := json.Unmarshal([]byte(chapters), &v.Chapters); err != nil {
		return nil, fmt.Errorf("unmarshaling chapters: %w", err)
	}
	if err := json.Unmarshal([]byte(transcript), &v.Transcript); err != nil {
		return nil, fmt.Errorf("unmarshaling transcript: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &v.Tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	if v.AddedAt, err = parseTime(at); err != nil {
		return nil, fmt.Errorf("parsing added_at: %w", err)
	}
	return &v, nil
}

// List returns metadata for every video, newest first. Transcript and
// chapter columns are never read.
func (s *videoStore) List(ctx context.Context) ([]domain.Video, error) {
	rows, err := s.db.QueryContext(ctx, `
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
			v        domain.Video
			tags, at string
		)
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.Channel, &v.Duration,
			&v.ThumbnailURL, &tags, &at); err != nil {
			return nil, fmt.Errorf("scanning video: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &v.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
		if v.AddedAt, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("parsing added_at: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// Delete removes a video. Unknown IDs are a no-op.
func (s *videoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM videos WHERE video_id = ?", id); err != nil {
		return fmt.Errorf("deleting video %s: %w", id, err)
	}
	return nil
}

// Exists reports whether a video is stored.
func (s *videoStore) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM videos WHERE video_id = ? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

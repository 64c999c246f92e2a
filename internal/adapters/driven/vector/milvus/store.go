// Package milvus serves the semantic index from a Milvus collection.
package milvus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// Ensure FragmentStore implements the interface.
var _ driven.FragmentStore = (*FragmentStore)(nil)

// Field names of the fragments collection.
const (
	fieldKey      = "fragment_id"
	fieldVideoID  = "video_id"
	fieldText     = "text"
	fieldStart    = "start_s"
	fieldEnd      = "end_s"
	fieldPosition = "position"
	fieldVector   = "vector"
)

const (
	batchSize   = 500
	maxTextLen  = 8192
	hnswM       = 8
	hnswEF      = 200
	searchEF    = 74
	indexName   = "idx_fragment_vector"
	shardsCount = 2
)

// consistency applies to the collection and to every search and count.
const consistency = entity.ClStrong

var outputFields = []string{fieldVideoID, fieldText, fieldStart, fieldEnd, fieldPosition}

// Config holds the milvus connection settings.
type Config struct {
	Address    string
	Collection string
	Dimensions int
}

// FragmentStore stores fragments in a Milvus collection with an HNSW
// cosine index. Milvus reports cosine similarity; hits carry 1 - similarity
// so lower is closer, like the other backends.
type FragmentStore struct {
	mc   client.Client
	coll string
	dims int
}

// NewFragmentStore connects, creates the collection and index when missing,
// and loads the collection.
func NewFragmentStore(ctx context.Context, cfg Config) (*FragmentStore, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: embedding dimensions must be positive", domain.ErrInvalidInput)
	}
	mc, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}

	s := &FragmentStore{mc: mc, coll: cfg.Collection, dims: cfg.Dimensions}
	if err := s.ensureCollection(ctx); err != nil {
		mc.Close()
		return nil, err
	}
	return s, nil
}

func (s *FragmentStore) ensureCollection(ctx context.Context) error {
	has, err := s.mc.HasCollection(ctx, s.coll)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if !has {
		logger.Info("Creating milvus collection %s (%d dims)", s.coll, s.dims)
		if err := s.mc.CreateCollection(ctx, schema(s.coll, s.dims), shardsCount,
			client.WithConsistencyLevel(consistency)); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
		idx, err := entity.NewIndexHNSW(entity.COSINE, hnswM, hnswEF)
		if err != nil {
			return fmt.Errorf("hnsw index params: %w", err)
		}
		if err := s.mc.CreateIndex(ctx, s.coll, fieldVector, idx, false, client.WithIndexName(indexName)); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	if err := s.mc.LoadCollection(ctx, s.coll, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

func schema(coll string, dims int) *entity.Schema {
	return entity.NewSchema().
		WithName(coll).
		WithDescription("mcptube transcript fragments").
		WithField(entity.NewField().WithName(fieldKey).WithDataType(entity.FieldTypeVarChar).
			WithIsPrimaryKey(true).WithMaxLength(64)).
		WithField(entity.NewField().WithName(fieldVideoID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(32)).
		WithField(entity.NewField().WithName(fieldText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxTextLen)).
		WithField(entity.NewField().WithName(fieldStart).WithDataType(entity.FieldTypeDouble)).
		WithField(entity.NewField().WithName(fieldEnd).WithDataType(entity.FieldTypeDouble)).
		WithField(entity.NewField().WithName(fieldPosition).WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().WithName(fieldVector).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(dims)))
}

// Upsert writes fragments column-wise.
func (s *FragmentStore) Upsert(ctx context.Context, fragments []domain.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}
	cols, err := s.columns(fragments)
	if err != nil {
		return err
	}
	if _, err := s.mc.Upsert(ctx, s.coll, "", cols...); err != nil {
		return fmt.Errorf("milvus upsert: %w", err)
	}
	return nil
}

func (s *FragmentStore) columns(fragments []domain.Fragment) ([]entity.Column, error) {
	n := len(fragments)
	keys := make([]string, n)
	videoIDs := make([]string, n)
	texts := make([]string, n)
	starts := make([]float64, n)
	ends := make([]float64, n)
	positions := make([]int64, n)
	vectors := make([][]float32, n)

	for i := range fragments {
		f := &fragments[i]
		if len(f.Embedding) != s.dims {
			return nil, fmt.Errorf("fragment %s has %d dimensions, collection expects %d", f.Key, len(f.Embedding), s.dims)
		}
		keys[i] = f.Key
		videoIDs[i] = f.VideoID
		texts[i] = clip(f.Text, maxTextLen)
		starts[i] = f.Start
		ends[i] = f.End
		positions[i] = int64(f.Position)
		vectors[i] = f.Embedding
	}

	return []entity.Column{
		entity.NewColumnVarChar(fieldKey, keys),
		entity.NewColumnVarChar(fieldVideoID, videoIDs),
		entity.NewColumnVarChar(fieldText, texts),
		entity.NewColumnDouble(fieldStart, starts),
		entity.NewColumnDouble(fieldEnd, ends),
		entity.NewColumnInt64(fieldPosition, positions),
		entity.NewColumnFloatVector(fieldVector, s.dims, vectors),
	}, nil
}

// DeleteVideo removes every fragment of a video.
func (s *FragmentStore) DeleteVideo(ctx context.Context, videoID string) error {
	if err := s.mc.Delete(ctx, s.coll, "", videoFilter(videoID)); err != nil {
		return fmt.Errorf("milvus delete: %w", err)
	}
	return nil
}

// Search returns the k nearest fragments, optionally within one video.
func (s *FragmentStore) Search(ctx context.Context, query []float32, videoID string, k int) ([]domain.SearchHit, error) {
	sp, err := entity.NewIndexHNSWSearchParam(max(searchEF, k))
	if err != nil {
		return nil, err
	}
	filter := ""
	if videoID != "" {
		filter = videoFilter(videoID)
	}

	res, err := s.mc.Search(ctx, s.coll, []string{}, filter, outputFields,
		[]entity.Vector{entity.FloatVector(query)}, fieldVector, entity.COSINE, max(k, 1), sp, readOptions()...)
	if err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}

	hits := []domain.SearchHit{}
	for _, r := range res {
		hits = append(hits, toHits(r.ResultCount, r.Fields, r.Scores)...)
	}
	return hits, nil
}

// toHits converts one result set. Scores are similarities.
func toHits(count int, fields []entity.Column, scores []float32) []domain.SearchHit {
	cols := make(map[string]entity.Column, len(fields))
	for _, c := range fields {
		cols[c.Name()] = c
	}

	hits := make([]domain.SearchHit, 0, count)
	for i := 0; i < count; i++ {
		var h domain.SearchHit
		if c, ok := cols[fieldVideoID].(*entity.ColumnVarChar); ok && i < c.Len() {
			h.VideoID = c.Data()[i]
		}
		if c, ok := cols[fieldText].(*entity.ColumnVarChar); ok && i < c.Len() {
			h.Text = c.Data()[i]
		}
		if c, ok := cols[fieldStart].(*entity.ColumnDouble); ok && i < c.Len() {
			h.Start = c.Data()[i]
		}
		if c, ok := cols[fieldEnd].(*entity.ColumnDouble); ok && i < c.Len() {
			h.End = c.Data()[i]
		}
		if c, ok := cols[fieldPosition].(*entity.ColumnInt64); ok && i < c.Len() {
			h.Position = int(c.Data()[i])
		}
		if i < len(scores) {
			h.Score = 1 - float64(scores[i])
		}
		hits = append(hits, h)
	}
	return hits
}

// Count returns the fragments of one video, or all when videoID is empty.
func (s *FragmentStore) Count(ctx context.Context, videoID string) (int, error) {
	filter := fieldKey + ` != ""`
	if videoID != "" {
		filter = videoFilter(videoID)
	}
	rs, err := s.mc.Query(ctx, s.coll, []string{}, filter, []string{"count(*)"}, readOptions()...)
	if err != nil {
		return 0, fmt.Errorf("milvus count: %w", err)
	}
	if c, ok := rs.GetColumn("count(*)").(*entity.ColumnInt64); ok && c.Len() > 0 {
		return int(c.Data()[0]), nil
	}
	return 0, nil
}

// MaxBatchSize returns the upsert ceiling.
func (s *FragmentStore) MaxBatchSize() int {
	return batchSize
}

// Close disconnects the client.
func (s *FragmentStore) Close() error {
	return s.mc.Close()
}

// readOptions makes reads observe every prior delete and upsert.
func readOptions() []client.SearchQueryOptionFunc {
	return []client.SearchQueryOptionFunc{client.WithSearchQueryConsistencyLevel(consistency)}
}

func videoFilter(videoID string) string {
	return fieldVideoID + " == " + strconv.Quote(videoID)
}

// clip cuts s to n bytes on a rune boundary.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

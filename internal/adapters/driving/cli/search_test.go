package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

func TestSearch(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.search.hits = []domain.SearchHit{
		{VideoID: "dQw4w9WgXcQ", Title: "Go Concurrency Patterns", Text: " channels are typed pipes ", Start: 65, Score: 0.1},
		{VideoID: "zzzzzzzzzzz", Text: "untitled", Start: 3, Score: 0.4},
	}

	out, err := executeCommand(t, "search", "channels")

	require.NoError(t, err)
	assert.Contains(t, out, "1. [01:05] (Go Concurrency Patterns) channels are typed pipes")
	assert.Contains(t, out, "2. [00:03] (zzzzzzzzzzz) untitled")
	assert.Equal(t, domain.DefaultSearchLimit, mocks.search.lastReq.Limit)
}

func TestSearch_Flags(t *testing.T) {
	mocks := setupTestServices(t)

	_, err := executeCommand(t, "search", "q", "-V", "2", "-t", "golang", "--tag", "rust", "-n", "3")

	require.NoError(t, err)
	assert.Equal(t, domain.SearchRequest{Video: "2", Tags: []string{"golang", "rust"}, Limit: 3}, mocks.search.lastReq)
}

func TestSearch_FlagsDoNotLeak(t *testing.T) {
	mocks := setupTestServices(t)
	_, err := executeCommand(t, "search", "q", "-t", "golang")
	require.NoError(t, err)

	_, err = executeCommand(t, "search", "q")

	require.NoError(t, err)
	assert.Empty(t, mocks.search.lastReq.Tags)
}

func TestSearch_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearch_JSON(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.search.hits = []domain.SearchHit{{VideoID: "dQw4w9WgXcQ", Text: "pipes", Start: 65, End: 70}}

	out, err := executeCommand(t, "search", "pipes", "--json")

	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
}

func TestSearch_Error(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.search.err = errors.New("index offline")

	_, err := executeCommand(t, "search", "q")

	assert.ErrorContains(t, err, "index offline")
}

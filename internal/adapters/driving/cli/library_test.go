package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcptube/internal/core/domain"
)

func TestAdd(t *testing.T) {
	mocks := setupTestServices(t)

	out, err := executeCommand(t, "add", "https://youtu.be/dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://youtu.be/dQw4w9WgXcQ"}, mocks.library.added)
	assert.Contains(t, out, "Added: Go Concurrency Patterns")
	assert.Contains(t, out, "30:30")
	assert.Contains(t, out, "Segments: 2")
	assert.NotContains(t, out, "not searchable")
}

func TestAdd_NoTranscriptWarns(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.library.videos[0].Transcript = nil

	out, err := executeCommand(t, "add", "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Contains(t, out, "not searchable")
}

func TestAdd_Duplicate(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.library.err = domain.ErrAlreadyExists

	_, err := executeCommand(t, "add", "dQw4w9WgXcQ")

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestList(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "dQw4w9WgXcQ")
	assert.Contains(t, out, "GopherCon")
	assert.Contains(t, out, "golang")
}

func TestList_Empty(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.library.videos = nil

	out, err := executeCommand(t, "ls")

	require.NoError(t, err)
	assert.Contains(t, out, "Library is empty")
}

func TestInfo(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "info", "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Contains(t, out, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.Contains(t, out, "Chapters:")
	assert.Contains(t, out, "[01:35] Pipelines")
	assert.Contains(t, out, "2026-03-01")
}

func TestInfo_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "info", "nothing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemove(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "rm", "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed: Go Concurrency Patterns (dQw4w9WgXcQ)")
}

func TestClassify(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "classify", "dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Contains(t, out, "Tags for: Go Concurrency Patterns")
	assert.Contains(t, out, "golang, concurrency")
}

func TestLibraryCommands_NoService(t *testing.T) {
	SetServices(&Services{})
	t.Cleanup(func() { SetServices(nil) })

	for _, args := range [][]string{{"add", "x"}, {"list"}, {"info", "x"}, {"remove", "x"}, {"classify", "x"}} {
		_, err := executeCommand(t, args...)
		assert.ErrorIs(t, err, errLibraryNotConfigured, args[0])
	}
}

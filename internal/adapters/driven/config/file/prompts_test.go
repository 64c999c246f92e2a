package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
)

var testDefaults = map[string]string{
	driven.PromptClassify: "classify %s %s %s",
	driven.PromptDiscover: "discover %s %s",
}

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "prompts")
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)
	return store, dir
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewPromptStore("", nil)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".mcptube", "prompts"), store.Dir())
}

func TestNewPromptStore_NoIOUntilLoad(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	_, err = store.Load(driven.PromptClassify)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "classify.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "README.md"))
	assert.NoError(t, err)
}

func TestPromptStore_Load_ReturnsDefaultContent(t *testing.T) {
	store, _ := newTestPromptStore(t)

	prompt, err := store.Load(driven.PromptDiscover)

	require.NoError(t, err)
	assert.Equal(t, "discover %s %s", prompt)
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	store, dir := newTestPromptStore(t)
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classify.txt"), []byte("  mine %s %s %s\n"), 0600))

	prompt, err := store.Load(driven.PromptClassify)

	require.NoError(t, err)
	assert.Equal(t, "mine %s %s %s", prompt)
}

func TestPromptStore_Load_EmptyFileFallsBackToDefault(t *testing.T) {
	store, dir := newTestPromptStore(t)
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classify.txt"), []byte("   \n"), 0600))

	prompt, err := store.Load(driven.PromptClassify)

	require.NoError(t, err)
	assert.Equal(t, testDefaults[driven.PromptClassify], prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("nonexistent")

	assert.Error(t, err)
}

func TestPromptStore_Reload_ClearsCache(t *testing.T) {
	store, dir := newTestPromptStore(t)

	first, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classify.txt"), []byte("edited"), 0600))

	cached, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, "edited", fresh)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)
	require.NoError(t, os.MkdirAll(dir, 0700))
	path := filepath.Join(dir, "discover.txt")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0600))

	_, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, _ := newTestPromptStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptDiscover)
			assert.NoError(t, err)
			assert.Equal(t, "discover %s %s", prompt)
		}()
	}
	wg.Wait()
}

func TestPromptStore_Watch_ReloadsOnEdit(t *testing.T) {
	store, dir := newTestPromptStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, store.Watch(ctx))
	first, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, "classify %s %s %s", first)

	path := filepath.Join(dir, driven.PromptClassify+".txt")
	require.NoError(t, os.WriteFile(path, []byte("tags for %s %s %s"), 0600))

	assert.Eventually(t, func() bool {
		got, err := store.Load(driven.PromptClassify)
		return err == nil && got == "tags for %s %s %s"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestIsPromptChange(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write txt", fsnotify.Event{Name: "/p/report.txt", Op: fsnotify.Write}, true},
		{"remove txt", fsnotify.Event{Name: "/p/report.txt", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "/p/report.txt", Op: fsnotify.Chmod}, false},
		{"readme", fsnotify.Event{Name: "/p/README.md", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPromptChange(tt.event))
		})
	}
}

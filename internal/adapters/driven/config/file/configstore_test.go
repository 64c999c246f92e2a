package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".mcptube", "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "anthropic"))

	val, ok := store.Get("llm.provider")
	assert.True(t, ok)
	assert.Equal(t, "anthropic", val)
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
}

func TestConfigStore_TypedGetters_WrongType(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("server.port", 9093))
	require.NoError(t, store.Set("server.host", "0.0.0.0"))

	assert.Equal(t, 9093, store.GetInt("server.port"))
	assert.Equal(t, "", store.GetString("server.port"))
	assert.Equal(t, 0, store.GetInt("server.host"))
	assert.Equal(t, 0, store.GetInt("missing"))
}

func TestConfigStore_Persistence_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("data_dir", "/srv/mcptube"))
	require.NoError(t, store1.Set("server.port", 8080))
	require.NoError(t, store1.Set("llm.provider", "openai"))
	require.NoError(t, store1.Set("llm.model", "gpt-4o"))

	raw, err := os.ReadFile(store1.Path())
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "[llm]")
	assert.Contains(t, content, "[server]")
	assert.NotContains(t, content, "'llm.provider'")

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/mcptube", store2.GetString("data_dir"))
	assert.Equal(t, 8080, store2.GetInt("server.port"))
	assert.Equal(t, "openai", store2.GetString("llm.provider"))
	assert.Equal(t, "gpt-4o", store2.GetString("llm.model"))
}

func TestConfigStore_Keys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("server.port", 1))
	require.NoError(t, store.Set("data_dir", "/tmp"))
	require.NoError(t, store.Set("llm.model", "m"))

	assert.Equal(t, []string{"data_dir", "llm.model", "server.port"}, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("youtube.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("server.port", 9000)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("server.port")
		}()
	}
	wg.Wait()

	assert.Equal(t, 9000, store.GetInt("server.port"))
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestNestMap_TableWinsOverScalar(t *testing.T) {
	nested := nestMap(map[string]any{
		"llm":          "flat",
		"llm.provider": "openai",
	})

	table, ok := nested["llm"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "openai", table["provider"])
}

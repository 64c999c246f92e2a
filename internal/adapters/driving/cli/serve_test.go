package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeAddr_FromSettings(t *testing.T) {
	setupTestServices(t)
	resetFlags(rootCmd)

	addr, err := serveAddr()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9093", addr)
}

func TestServeAddr_FlagsOverride(t *testing.T) {
	setupTestServices(t)
	resetFlags(rootCmd)
	require.NoError(t, serveCmd.Flags().Set("host", "0.0.0.0"))
	require.NoError(t, serveCmd.Flags().Set("port", "8080"))
	t.Cleanup(func() { resetFlags(rootCmd) })

	addr, err := serveAddr()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", addr)
}

func TestServeAddr_InvalidPort(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.settings.settings.Server.Port = 70000
	resetFlags(rootCmd)

	_, err := serveAddr()

	assert.ErrorContains(t, err, "invalid port 70000")
}

func TestServeAddr_NoSettings(t *testing.T) {
	SetServices(&Services{})
	t.Cleanup(func() { SetServices(nil) })
	resetFlags(rootCmd)

	_, err := serveAddr()

	assert.ErrorContains(t, err, "invalid port 0")
}

func TestServe_MissingLibrary(t *testing.T) {
	SetServices(&Services{})
	t.Cleanup(func() { SetServices(nil) })

	_, err := executeCommand(t, "serve", "--stdio")

	assert.Error(t, err)
}

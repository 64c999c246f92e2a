package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPorts(t *testing.T) {
	lib := &MockLibraryService{}
	search := &MockSearchService{}
	frames := &MockFrameService{}

	ports := NewPorts(lib, search, frames)

	assert.Equal(t, lib, ports.Library)
	assert.Equal(t, search, ports.Search)
	assert.Equal(t, frames, ports.Frame)
}

func TestPorts_Validate(t *testing.T) {
	t.Run("library required", func(t *testing.T) {
		ports := &Ports{Search: &MockSearchService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingLibraryService)
	})

	t.Run("optional services may be nil", func(t *testing.T) {
		ports := &Ports{Library: &MockLibraryService{}}
		assert.NoError(t, ports.Validate())
	})
}

package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mcptube/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/services"
)

func TestCLIServices_SearchWithoutIndex(t *testing.T) {
	library := services.NewLibraryService(memory.NewVideoStore(), nil, nil, nil, nil)

	svcs := cliServices(library, nil, nil)

	require.NotNil(t, svcs.Search)
	_, err := svcs.Search.Search(context.Background(), "goroutines", domain.SearchRequest{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	var cfgErr *domain.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

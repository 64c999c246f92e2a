package main

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/mcptube/internal/adapters/driven/ai"
	"github.com/custodia-labs/mcptube/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mcptube/internal/adapters/driven/frames"
	"github.com/custodia-labs/mcptube/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mcptube/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/mcptube/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mcptube/internal/adapters/driven/vector/milvus"
	"github.com/custodia-labs/mcptube/internal/adapters/driven/youtube"
	"github.com/custodia-labs/mcptube/internal/adapters/driving/cli"
	"github.com/custodia-labs/mcptube/internal/core/domain"
	"github.com/custodia-labs/mcptube/internal/core/ports/driven"
	"github.com/custodia-labs/mcptube/internal/core/services"
	"github.com/custodia-labs/mcptube/internal/logger"
)

// connectTimeout bounds the initial connection to remote stores.
const connectTimeout = 15 * time.Second

// application holds the wired services and everything that must be closed.
type application struct {
	services *cli.Services
	closers  []func() error
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("closing: %v", err)
		}
	}
}

func (a *application) onClose(f func() error) {
	a.closers = append(a.closers, f)
}

// wire builds the service graph described by settings.
func wire(ctx context.Context, settings *domain.AppSettings) (*application, error) {
	app := &application{}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	aiServices := ai.Build(ctx, settings)
	app.onClose(func() error { aiServices.Close(); return nil })
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	backends := &backends{settings: settings, app: app}
	videoStore, err := backends.videoStore(ctx)
	if err != nil {
		return nil, err
	}

	var index *services.SemanticIndex
	fragments, err := backends.fragmentStore(ctx, aiServices.Embedding.Dimensions())
	if err != nil {
		return nil, err
	}
	if fragments != nil {
		index = services.NewSemanticIndex(fragments, aiServices.Embedding)
	}

	prompts, err := file.NewPromptStore("", services.DefaultPrompts())
	if err != nil {
		return nil, fmt.Errorf("opening prompt store: %w", err)
	}
	if err := prompts.Watch(ctx); err != nil {
		logger.Debug("Prompt edits need a restart: %v", err)
	}

	timeout := time.Duration(settings.YouTube.ExtractTimeoutSeconds) * time.Second
	limiter := youtube.NewRateLimiter(0, 0)
	extractor := youtube.NewExtractor(youtube.ExtractorConfig{
		YtDlpPath: settings.YouTube.YtDlpPath,
		Timeout:   timeout,
		Limiter:   limiter,
	})
	capturer := frames.NewCapturer(frames.Config{
		Dir:        settings.FramesDir(),
		YtDlpPath:  settings.YouTube.YtDlpPath,
		FFmpegPath: settings.YouTube.FFmpegPath,
	})

	var classifier driven.Classifier
	if aiServices.LLM != nil {
		c := services.NewLLMClassifier(aiServices.LLM)
		c.SetPromptStore(prompts)
		classifier = c
	}

	library := services.NewLibraryService(videoStore, extractor, index, classifier, capturer)

	reports := services.NewReportService(library.Resolver(), library, aiServices.LLM, capturer)
	reports.SetPromptStore(prompts)

	searcher, err := videoSearcher(ctx, settings, timeout, limiter)
	if err != nil {
		return nil, err
	}
	discovery := services.NewDiscoveryService(searcher, aiServices.LLM)
	discovery.SetPromptStore(prompts)

	app.services = cliServices(library, reports, discovery)

	ok = true
	return app, nil
}

// cliServices always installs search. Without an index the library
// reports a configuration error naming the missing setting.
func cliServices(
	library *services.LibraryService,
	reports *services.ReportService,
	discovery *services.DiscoveryService,
) *cli.Services {
	if !library.HasIndex() {
		logger.Debug("No semantic index configured, search is disabled")
	}
	return &cli.Services{
		Library:   library,
		Search:    library,
		Frame:     library,
		Report:    reports,
		Discovery: discovery,
	}
}

// videoSearcher prefers the Data API when a key is configured.
func videoSearcher(
	ctx context.Context,
	settings *domain.AppSettings,
	timeout time.Duration,
	limiter *youtube.RateLimiter,
) (driven.VideoSearcher, error) {
	if settings.YouTube.APIKey == "" {
		return youtube.NewYtDlpSearcher(settings.YouTube.YtDlpPath, timeout, nil), nil
	}
	searcher, err := youtube.NewAPISearcher(ctx, settings.YouTube.APIKey, limiter)
	if err != nil {
		return nil, fmt.Errorf("creating youtube searcher: %w", err)
	}
	return searcher, nil
}

// backends opens stores lazily so the sqlite file and the postgres pool are
// shared between the video store and the fragment store.
type backends struct {
	settings *domain.AppSettings
	app      *application
	sqlite   *sqlite.Store
	postgres *postgres.Store
}

func (b *backends) sqliteStore() (*sqlite.Store, error) {
	if b.sqlite != nil {
		return b.sqlite, nil
	}
	store, err := sqlite.NewStore(b.settings.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	b.app.onClose(store.Close)
	b.sqlite = store
	return store, nil
}

func (b *backends) postgresStore(ctx context.Context) (*postgres.Store, error) {
	if b.postgres != nil {
		return b.postgres, nil
	}
	if b.settings.Storage.PostgresURL == "" {
		return nil, &domain.ConfigurationError{Component: "postgres", Hint: "set storage.postgres_url"}
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	store, err := postgres.NewStore(connectCtx, b.settings.Storage.PostgresURL)
	if err != nil {
		return nil, err
	}
	b.app.onClose(store.Close)
	b.postgres = store
	return store, nil
}

func (b *backends) videoStore(ctx context.Context) (driven.VideoStore, error) {
	switch b.settings.Storage.Backend {
	case domain.StoreSQLite, "":
		store, err := b.sqliteStore()
		if err != nil {
			return nil, err
		}
		return store.VideoStore(), nil

	case domain.StorePostgres:
		store, err := b.postgresStore(ctx)
		if err != nil {
			return nil, err
		}
		return store.VideoStore(), nil

	case domain.StoreMemory:
		return memory.NewVideoStore(), nil

	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, b.settings.Storage.Backend)
	}
}

// fragmentStore returns nil when the index is disabled.
func (b *backends) fragmentStore(ctx context.Context, dims int) (driven.FragmentStore, error) {
	switch b.settings.Index.Backend {
	case domain.IndexSQLite, "":
		store, err := b.sqliteStore()
		if err != nil {
			return nil, err
		}
		return store.FragmentStore(), nil

	case domain.IndexPGVector:
		store, err := b.postgresStore(ctx)
		if err != nil {
			return nil, err
		}
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		fragments, err := store.FragmentStore(connectCtx, dims)
		if err != nil {
			return nil, fmt.Errorf("preparing pgvector index: %w", err)
		}
		return fragments, nil

	case domain.IndexMilvus:
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		fragments, err := milvus.NewFragmentStore(connectCtx, milvus.Config{
			Address:    b.settings.Index.MilvusAddr,
			Collection: b.settings.Index.MilvusCollection,
			Dimensions: dims,
		})
		if err != nil {
			return nil, err
		}
		b.app.onClose(fragments.Close)
		return fragments, nil

	case domain.IndexMemory:
		return memory.NewFragmentStore(), nil

	case domain.IndexNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, b.settings.Index.Backend)
	}
}

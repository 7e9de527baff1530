package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/GojiraTai/koleksiyon-takip/config"
	"github.com/GojiraTai/koleksiyon-takip/internal/catalog"
	"github.com/GojiraTai/koleksiyon-takip/internal/storage"
	"github.com/GojiraTai/koleksiyon-takip/models"
	"github.com/GojiraTai/koleksiyon-takip/services/completion"
	"github.com/GojiraTai/koleksiyon-takip/services/lookup"
	"github.com/GojiraTai/koleksiyon-takip/services/metadata"
	"github.com/GojiraTai/koleksiyon-takip/services/progress"
)

// app wires the services for a single command invocation.
type app struct {
	settings config.Settings
	catalog  *models.Catalog
	store    *storage.Store
	resolver *metadata.Service
	progress *progress.Service
	tracker  *completion.Service

	closers []io.Closer
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.PathFromEnv()
	}
	settings, err := config.NewManager(configPath).Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	config.ApplyEnv(&settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	setupLogging(settings.Log, opts.verbose)

	a := &app{settings: settings}

	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	a.store = storage.Open(ctx, backend, settings.Storage.Key)

	if settings.Lookup.APIKey == "" {
		log.Printf("[lookup] no API key configured; set %s or lookup.apiKey in %s", config.EnvAPIKey, configPath)
	}
	client := lookup.NewClient(lookup.Options{
		APIKey:            settings.Lookup.APIKey,
		BaseURL:           settings.Lookup.BaseURL,
		Timeout:           time.Duration(settings.Lookup.TimeoutSeconds) * time.Second,
		MaxRetries:        settings.Lookup.MaxRetries,
		RequestsPerSecond: settings.Lookup.RequestsPerSecond,
	})
	a.resolver = metadata.NewService(client, metadata.NewResolutionCache(a.store), settings.Catalog.Concurrency)
	a.progress = progress.NewService(a.store)
	a.tracker = completion.NewService(a.resolver, a.progress, settings.Catalog.Concurrency)

	cat, err := catalog.Load(afero.NewOsFs(), settings.Catalog.Directory)
	if cat == nil {
		a.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if err != nil {
		log.Printf("[catalog] some entries were skipped:\n%v", err)
	}
	a.catalog = cat
	return a, nil
}

func (a *app) openBackend(ctx context.Context) (storage.Backend, error) {
	s := a.settings.Storage
	switch s.Backend {
	case config.StorageBackendSQLite:
		backend, err := storage.OpenSQLite(ctx, s.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, backend)
		return backend, nil
	case config.StorageBackendMemory:
		return storage.NewMemoryBackend(), nil
	default:
		return storage.NewFileBackend(afero.NewOsFs(), s.Directory), nil
	}
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// item looks an id up in the catalog.
func (a *app) item(id string) (models.CatalogItem, error) {
	item, ok := a.catalog.FindItem(id)
	if !ok {
		return models.CatalogItem{}, fmt.Errorf("no catalog item with id %q", id)
	}
	return item, nil
}

// setupLogging sends log output to stderr when verbose and to a rotating
// file when one is configured.
func setupLogging(cfg config.LogConfig, verbose bool) {
	var console io.Writer = io.Discard
	if verbose {
		console = os.Stderr
	}
	log.SetOutput(console)
	if cfg.File == "" {
		return
	}
	logDir := filepath.Dir(cfg.File)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		return
	}
	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(console, fileWriter))
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"bobbin/internal/api"
	"bobbin/internal/catalog"
	"bobbin/internal/config"
	"bobbin/internal/downloads"
	"bobbin/internal/listing"
	"bobbin/internal/logging"
	"bobbin/internal/notifications"
	"bobbin/internal/semaphore"
	"bobbin/internal/services/ytdlp"
	"bobbin/internal/tasks"
)

// Option adjusts daemon construction, primarily for tests.
type Option func(*buildOptions)

type buildOptions struct {
	ytdlpOpts []ytdlp.Option
	notifier  notifications.Service
}

// WithYTDLPOptions forwards options to the yt-dlp client, letting tests swap
// the executor.
func WithYTDLPOptions(opts ...ytdlp.Option) Option {
	return func(b *buildOptions) {
		b.ytdlpOpts = append(b.ytdlpOpts, opts...)
	}
}

// WithNotifier replaces the configured notification service.
func WithNotifier(svc notifications.Service) Option {
	return func(b *buildOptions) {
		if svc != nil {
			b.notifier = svc
		}
	}
}

// Daemon coordinates the background services and enforces single-instance
// execution through a file lock.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	store        *catalog.Store
	registry     *tasks.Registry
	listingSem   *semaphore.Semaphore
	downloadSem  *semaphore.Semaphore
	reaper       *tasks.Reaper
	reconciler   *listing.Reconciler
	orchestrator *downloads.Orchestrator
	catalogSvc   *api.CatalogService
	notifier     notifications.Service

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	var build buildOptions
	for _, opt := range opts {
		opt(&build)
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}

	registry := tasks.NewRegistry()
	client, err := ytdlp.New(cfg, registry, logger, build.ytdlpOpts...)
	if err != nil {
		store.Close()
		return nil, err
	}

	notifier := build.notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	listingSem := semaphore.New(cfg.Workers.MaxListings)
	downloadSem := semaphore.New(cfg.Workers.MaxDownloads)

	reaper := tasks.NewReaper(registry, tasks.ReaperConfig{
		Interval:    time.Duration(cfg.Reaper.IntervalSeconds) * time.Second,
		IdleCeiling: time.Duration(cfg.Reaper.IdleCeilingSeconds) * time.Second,
	}, logger)

	reconciler := listing.New(store, client, listingSem, notifier, logger, listing.Config{
		ChunkSize:  cfg.YTDLP.ChunkSize,
		MaxPending: cfg.Workers.MaxPendingListings,
	})
	orchestrator := downloads.New(store, client, registry, downloadSem, notifier, logger, downloads.Config{
		RootDir:    cfg.Paths.DownloadDir,
		MaxPending: cfg.Workers.MaxPendingDownloads,
	})

	lockPath := filepath.Join(cfg.Paths.DataDir, "bobbin.lock")
	d := &Daemon{
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "daemon"),
		store:        store,
		registry:     registry,
		listingSem:   listingSem,
		downloadSem:  downloadSem,
		reaper:       reaper,
		reconciler:   reconciler,
		orchestrator: orchestrator,
		catalogSvc:   api.NewCatalogService(store),
		notifier:     notifier,
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and launches the reaper and the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another bobbin daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.reaper.Run(runCtx)
	}()

	if err := d.api.start(runCtx); err != nil {
		cancel()
		d.wg.Wait()
		_ = d.lock.Unlock()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts background work and releases the daemon lock. In-flight listing
// continuations and downloads are drained before the lock is dropped.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.reconciler.Shutdown()
	d.orchestrator.Shutdown()
	d.wg.Wait()
	d.api.stop()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases the catalogue store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr reports the bound API address, or empty before Start.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// List submits a listing request and returns the reconciled first page.
func (d *Daemon) List(ctx context.Context, url string) (*api.ListingResponse, error) {
	result, err := d.reconciler.List(ctx, url)
	if err != nil {
		return nil, err
	}
	resp := &api.ListingResponse{
		Items:                api.FromVideos(result.Items),
		ShouldStopProcessing: result.ShouldStopProcessing,
	}
	if result.Playlist != nil {
		playlist := api.FromPlaylist(*result.Playlist)
		resp.Playlist = &playlist
	}
	return resp, nil
}

// Download submits a download batch and reports per-item dispositions.
func (d *Daemon) Download(ctx context.Context, items []api.DownloadItem) (*api.DownloadResponse, error) {
	requests := make([]downloads.Request, 0, len(items))
	for _, item := range items {
		requests = append(requests, downloads.Request{
			VideoURL:    item.URL,
			PlaylistURL: item.PlaylistURL,
		})
	}
	batch, err := d.orchestrator.Enqueue(ctx, requests)
	if err != nil {
		return nil, err
	}
	resp := &api.DownloadResponse{Accepted: batch.Accepted}
	for _, skip := range batch.Skipped {
		resp.Skipped = append(resp.Skipped, api.SkipDetail{URL: skip.URL, Reason: skip.Reason})
	}
	return resp, nil
}

// SetWorkerLimits adjusts semaphore capacity at runtime. Zero values leave the
// corresponding limit unchanged.
func (d *Daemon) SetWorkerLimits(listings, downloadLimit int) {
	if listings > 0 {
		d.listingSem.SetLimit(listings)
		d.logger.Info("listing limit changed", logging.Int("limit", listings))
	}
	if downloadLimit > 0 {
		d.downloadSem.SetLimit(downloadLimit)
		d.logger.Info("download limit changed", logging.Int("limit", downloadLimit))
	}
}

// Catalog exposes the read-only catalogue service.
func (d *Daemon) Catalog() *api.CatalogService {
	return d.catalogSvc
}

// Registry exposes the task registry for diagnostics.
func (d *Daemon) Registry() *tasks.Registry {
	return d.registry
}

// Tasks returns the current in-flight task snapshot.
func (d *Daemon) Tasks() []api.Task {
	return api.FromTasks(d.registry.Snapshot())
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	stats, err := d.catalogSvc.Stats(ctx)
	if err != nil {
		d.logger.Warn("catalogue stats unavailable", logging.Error(err))
	}
	return api.DaemonStatus{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		CatalogDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
		Listings: api.WorkerStatus{
			Limit:   d.listingSem.Limit(),
			Held:    d.listingSem.Held(),
			Waiting: d.listingSem.Waiting(),
		},
		Downloads: api.WorkerStatus{
			Limit:   d.downloadSem.Limit(),
			Held:    d.downloadSem.Held(),
			Waiting: d.downloadSem.Waiting(),
		},
		Stats: stats,
		Tasks: d.Tasks(),
	}
}

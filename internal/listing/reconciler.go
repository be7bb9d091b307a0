package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"bobbin/internal/catalog"
	"bobbin/internal/logging"
	"bobbin/internal/notifications"
	"bobbin/internal/semaphore"
	"bobbin/internal/services/ytdlp"
)

// ErrCapacityExceeded reports that the listing queue is already saturated.
// The request is rejected rather than queued forever.
var ErrCapacityExceeded = errors.New("too many pending listing requests")

// Lister is the subprocess surface the reconciler drives.
type Lister interface {
	ListPage(ctx context.Context, url string, start, count int) ([]ytdlp.ListingRow, error)
	ProbeTitle(ctx context.Context, url string) (string, error)
}

// Config carries the reconciler's tuning knobs.
type Config struct {
	// ChunkSize is the page size for one listing invocation.
	ChunkSize int
	// MaxPending caps queued listing requests before rejection.
	MaxPending int
}

// Result is the synchronous answer to a listing request: the first reconciled
// page plus whether pagination already hit the known tail.
type Result struct {
	Playlist             *catalog.Playlist
	Items                []catalog.Video
	ShouldStopProcessing bool
}

// Reconciler classifies listing requests, reconciles pages against the
// catalogue, and continues pagination in the background after the first page
// has been answered.
type Reconciler struct {
	store    *catalog.Store
	lister   Lister
	sem      *semaphore.Semaphore
	notifier notifications.Service
	logger   *slog.Logger
	cfg      Config

	bgCtx  context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a reconciler. The semaphore gates every page fetch,
// including background continuation iterations.
func New(store *catalog.Store, lister Lister, sem *semaphore.Semaphore, notifier notifications.Service, logger *slog.Logger, cfg Config) *Reconciler {
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = 10
	}
	if cfg.MaxPending < 1 {
		cfg.MaxPending = 20
	}
	bgCtx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		store:    store,
		lister:   lister,
		sem:      sem,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "listing"),
		cfg:      cfg,
		bgCtx:    bgCtx,
		cancel:   cancel,
	}
}

// Shutdown stops background pagination and waits for in-flight loops.
func (r *Reconciler) Shutdown() {
	r.cancel()
	r.wg.Wait()
}

// Wait blocks until all background continuation loops have finished.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

// List answers a listing request with its reconciled first page and, for
// playlists with more content, keeps fetching subsequent chunks in the
// background.
func (r *Reconciler) List(ctx context.Context, rawURL string) (*Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("listing URL required")
	}
	if r.sem.Waiting() >= r.cfg.MaxPending {
		return nil, fmt.Errorf("%w: %d queued", ErrCapacityExceeded, r.sem.Waiting())
	}

	ctx = logging.WithRequestID(ctx, uuid.NewString())
	ctx = logging.WithJobKind(ctx, "listing")
	logger := logging.WithContext(ctx, r.logger)

	result, isPlaylist, err := r.firstPage(ctx, rawURL)
	if err != nil {
		logger.Error("listing request failed", logging.String(logging.FieldURL, rawURL), logging.Error(err))
		r.publish(notifications.EventListingFailed, notifications.Payload{"url": rawURL, "error": err.Error()})
		return nil, err
	}

	if !isPlaylist || result.ShouldStopProcessing {
		r.publish(notifications.EventListingDone, notifications.Payload{"url": rawURL})
		return result, nil
	}

	r.wg.Add(1)
	go r.continueInBackground(rawURL, logger)

	return result, nil
}

func (r *Reconciler) firstPage(ctx context.Context, rawURL string) (*Result, bool, error) {
	if err := r.sem.Acquire(ctx); err != nil {
		return nil, false, err
	}
	defer r.sem.Release()

	rows, err := r.lister.ListPage(ctx, rawURL, 1, r.cfg.ChunkSize)
	if err != nil {
		return nil, false, fmt.Errorf("list first page: %w", err)
	}

	if len(rows) > 1 || looksLikeCollection(rawURL) {
		result, err := r.firstPlaylistPage(ctx, rawURL, rows)
		return result, true, err
	}
	result, err := r.singleItem(ctx, rows)
	return result, false, err
}

// singleItem buckets a standalone item under the sentinel collection. An
// already-indexed item short-circuits with the stored data.
func (r *Reconciler) singleItem(ctx context.Context, rows []ytdlp.ListingRow) (*Result, error) {
	if len(rows) == 0 {
		return nil, errors.New("no items found at URL")
	}
	row := rows[0]

	indexed, err := r.store.HasIndexEntry(ctx, row.URL, catalog.SentinelPlaylistURL)
	if err != nil {
		return nil, err
	}
	if indexed {
		video, err := r.store.GetVideo(ctx, row.URL)
		if err != nil {
			return nil, err
		}
		return &Result{Items: []catalog.Video{*video}, ShouldStopProcessing: true}, nil
	}

	if _, err := r.store.LookupOrCreatePlaylist(ctx, catalog.SentinelPlaylistURL, "Unlisted", ""); err != nil {
		return nil, err
	}
	position, err := r.store.NextPosition(ctx, catalog.SentinelPlaylistURL)
	if err != nil {
		return nil, err
	}
	if err := r.store.UpsertVideo(ctx, videoFromRow(row)); err != nil {
		return nil, err
	}
	if _, err := r.store.EnsureIndexEntry(ctx, row.URL, catalog.SentinelPlaylistURL, position); err != nil {
		return nil, err
	}

	video, err := r.store.GetVideo(ctx, row.URL)
	if err != nil {
		return nil, err
	}
	return &Result{Items: []catalog.Video{*video}, ShouldStopProcessing: true}, nil
}

func (r *Reconciler) firstPlaylistPage(ctx context.Context, rawURL string, rows []ytdlp.ListingRow) (*Result, error) {
	playlist, err := r.store.GetPlaylist(ctx, rawURL)
	if errors.Is(err, catalog.ErrNotFound) {
		title, probeErr := r.lister.ProbeTitle(ctx, rawURL)
		if probeErr != nil {
			return nil, fmt.Errorf("probe playlist title: %w", probeErr)
		}
		if title == ytdlp.NoValue {
			title = fallbackTitle(rawURL)
		}
		playlist, err = r.store.LookupOrCreatePlaylist(ctx, rawURL, title, "")
	}
	if err != nil {
		return nil, err
	}

	outcome, err := r.reconcilePage(ctx, rawURL, rows, 1)
	if err != nil {
		return nil, err
	}
	return &Result{
		Playlist:             playlist,
		Items:                outcome.videos,
		ShouldStopProcessing: outcome.shortCircuit,
	}, nil
}

// continueInBackground fetches subsequent chunks until a page comes back
// empty (true end of collection) or the short-circuit rule fires. Page N+1 is
// never fetched before page N's reconciliation completes.
func (r *Reconciler) continueInBackground(rawURL string, logger *slog.Logger) {
	defer r.wg.Done()

	start := 1 + r.cfg.ChunkSize
	for {
		if err := r.sem.Acquire(r.bgCtx); err != nil {
			logger.Warn("background listing stopped", logging.String(logging.FieldURL, rawURL), logging.Error(err))
			return
		}
		rows, err := r.lister.ListPage(r.bgCtx, rawURL, start, r.cfg.ChunkSize)
		if err != nil {
			r.sem.Release()
			logger.Error("background page fetch failed",
				logging.String(logging.FieldURL, rawURL),
				logging.Int("start", start),
				logging.Error(err),
			)
			r.publish(notifications.EventListingFailed, notifications.Payload{"url": rawURL, "error": err.Error()})
			return
		}
		outcome, err := r.reconcilePage(r.bgCtx, rawURL, rows, start)
		r.sem.Release()
		if err != nil {
			logger.Error("background reconcile failed",
				logging.String(logging.FieldURL, rawURL),
				logging.Int("start", start),
				logging.Error(err),
			)
			r.publish(notifications.EventListingFailed, notifications.Payload{"url": rawURL, "error": err.Error()})
			return
		}
		if len(rows) == 0 || outcome.shortCircuit {
			break
		}
		start += r.cfg.ChunkSize
	}

	logger.Info("listing complete", logging.String(logging.FieldURL, rawURL))
	r.publish(notifications.EventListingDone, notifications.Payload{"url": rawURL})
}

type pageOutcome struct {
	videos       []catalog.Video
	shortCircuit bool
}

// reconcilePage upserts one page of rows and their index entries. When every
// row already has both a catalogue item and an index entry, the page is the
// previously reconciled tail: nothing is rewritten and the short-circuit flag
// is raised.
func (r *Reconciler) reconcilePage(ctx context.Context, collectionURL string, rows []ytdlp.ListingRow, pageStart int) (pageOutcome, error) {
	allKnown := len(rows) > 0
	for _, row := range rows {
		_, err := r.store.GetVideo(ctx, row.URL)
		if errors.Is(err, catalog.ErrNotFound) {
			allKnown = false
			break
		}
		if err != nil {
			return pageOutcome{}, err
		}
		indexed, err := r.store.HasIndexEntry(ctx, row.URL, collectionURL)
		if err != nil {
			return pageOutcome{}, err
		}
		if !indexed {
			allKnown = false
			break
		}
	}

	if allKnown {
		videos := make([]catalog.Video, 0, len(rows))
		for _, row := range rows {
			video, err := r.store.GetVideo(ctx, row.URL)
			if err != nil {
				return pageOutcome{}, err
			}
			videos = append(videos, *video)
		}
		return pageOutcome{videos: videos, shortCircuit: true}, nil
	}

	videos := make([]catalog.Video, 0, len(rows))
	for i, row := range rows {
		desired := videoFromRow(row)
		existing, err := r.store.GetVideo(ctx, row.URL)
		if err != nil && !errors.Is(err, catalog.ErrNotFound) {
			return pageOutcome{}, err
		}
		if existing == nil || !existing.MetadataEquals(desired) {
			if err := r.store.UpsertVideo(ctx, desired); err != nil {
				return pageOutcome{}, err
			}
		}

		// The tool counts from 1; stored positions count from 0.
		position := int64(pageStart - 1 + i)
		if _, err := r.store.EnsureIndexEntry(ctx, row.URL, collectionURL, position); err != nil {
			return pageOutcome{}, err
		}

		stored, err := r.store.GetVideo(ctx, row.URL)
		if err != nil {
			return pageOutcome{}, err
		}
		videos = append(videos, *stored)
	}
	return pageOutcome{videos: videos}, nil
}

// videoFromRow maps one listing row onto catalogue fields. A title of "NA"
// falls back to the external id; placeholder titles for removed or private
// content mark the item unavailable.
func videoFromRow(row ytdlp.ListingRow) catalog.Video {
	title := row.Title
	if title == ytdlp.NoValue {
		title = row.ExternalID
	}
	return catalog.Video{
		URL:        row.URL,
		ExternalID: row.ExternalID,
		Title:      title,
		ApproxSize: row.ApproxSize,
		Available:  !ytdlp.IsUnavailableTitle(row.Title),
	}
}

func (r *Reconciler) publish(event notifications.Event, payload notifications.Payload) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Publish(context.Background(), event, payload); err != nil {
		r.logger.Warn("notification publish failed", logging.String("event", string(event)), logging.Error(err))
	}
}

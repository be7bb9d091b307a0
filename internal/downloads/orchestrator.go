package downloads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bobbin/internal/catalog"
	"bobbin/internal/logging"
	"bobbin/internal/notifications"
	"bobbin/internal/semaphore"
	"bobbin/internal/services/ytdlp"
	"bobbin/internal/tasks"
)

// ErrCapacityExceeded reports that the download queue is already saturated.
var ErrCapacityExceeded = errors.New("too many pending download requests")

// Downloader is the subprocess surface the orchestrator drives.
type Downloader interface {
	Download(ctx context.Context, req ytdlp.DownloadRequest) (ytdlp.DownloadResult, error)
}

// Request names one catalogue item to fetch, optionally scoped to the
// playlist whose save directory should receive it.
type Request struct {
	VideoURL    string
	PlaylistURL string
}

// Skip records one item left out of a batch and why.
type Skip struct {
	URL    string
	Reason string
}

// Batch is the synchronous answer to an enqueue call. Accepted items run in
// the background; skipped items carry their individual reasons.
type Batch struct {
	Accepted []string
	Skipped  []Skip
}

// Config carries the orchestrator's tuning knobs.
type Config struct {
	// RootDir receives items whose playlist has no save directory of its own.
	RootDir string
	// MaxPending caps queued download requests before rejection.
	MaxPending int
}

// Orchestrator admits download batches through the semaphore and reconciles
// completions back into the catalogue.
type Orchestrator struct {
	store      *catalog.Store
	downloader Downloader
	registry   *tasks.Registry
	sem        *semaphore.Semaphore
	notifier   notifications.Service
	logger     *slog.Logger
	cfg        Config

	now    func() time.Time
	bgCtx  context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs an orchestrator. The semaphore gates concurrent fetches; the
// registry provides the dedupe view of in-flight work.
func New(store *catalog.Store, downloader Downloader, registry *tasks.Registry, sem *semaphore.Semaphore, notifier notifications.Service, logger *slog.Logger, cfg Config) *Orchestrator {
	if cfg.MaxPending < 1 {
		cfg.MaxPending = 20
	}
	bgCtx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		store:      store,
		downloader: downloader,
		registry:   registry,
		sem:        sem,
		notifier:   notifier,
		logger:     logging.NewComponentLogger(logger, "downloads"),
		cfg:        cfg,
		now:        time.Now,
		bgCtx:      bgCtx,
		cancel:     cancel,
	}
}

// Shutdown stops accepting new work in running goroutines and waits for
// in-flight downloads to settle.
func (o *Orchestrator) Shutdown() {
	o.cancel()
	o.wg.Wait()
}

// Wait blocks until every accepted item has finished either way.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Enqueue validates a batch, registers a pending task per accepted item, and
// fetches each in the background. Items already pending or running, unknown
// to the catalogue, or scoped to an unknown playlist are skipped
// individually; one bad item never sinks its siblings.
func (o *Orchestrator) Enqueue(ctx context.Context, requests []Request) (*Batch, error) {
	if len(requests) == 0 {
		return nil, errors.New("no download requests given")
	}
	if o.sem.Waiting() >= o.cfg.MaxPending {
		return nil, fmt.Errorf("%w: %d queued", ErrCapacityExceeded, o.sem.Waiting())
	}

	ctx = logging.WithRequestID(ctx, uuid.NewString())
	ctx = logging.WithJobKind(ctx, "download")
	logger := logging.WithContext(ctx, o.logger)

	batch := &Batch{}
	for _, req := range requests {
		url := strings.TrimSpace(req.VideoURL)
		if url == "" {
			batch.Skipped = append(batch.Skipped, Skip{URL: req.VideoURL, Reason: "empty URL"})
			continue
		}
		if o.registry.ActiveURL(url) {
			batch.Skipped = append(batch.Skipped, Skip{URL: url, Reason: "already pending or running"})
			continue
		}

		video, err := o.store.GetVideo(ctx, url)
		if errors.Is(err, catalog.ErrNotFound) {
			batch.Skipped = append(batch.Skipped, Skip{URL: url, Reason: "not in catalogue"})
			continue
		}
		if err != nil {
			return nil, err
		}

		destDir, err := o.resolveSaveDir(ctx, req.PlaylistURL)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				batch.Skipped = append(batch.Skipped, Skip{URL: url, Reason: "unknown playlist"})
				continue
			}
			return nil, err
		}

		now := o.now()
		task := &tasks.Task{
			ID:             fmt.Sprintf("download-%s-%d", video.ExternalID, now.UnixNano()),
			Kind:           tasks.KindDownload,
			Status:         tasks.StatusPending,
			URL:            url,
			SpawnedAt:      now,
			LastActivityAt: now,
		}
		if err := o.registry.Register(task); err != nil {
			batch.Skipped = append(batch.Skipped, Skip{URL: url, Reason: "already pending or running"})
			continue
		}

		batch.Accepted = append(batch.Accepted, url)
		o.wg.Add(1)
		go o.run(task.ID, *video, destDir, logger)
	}
	return batch, nil
}

// resolveSaveDir maps a playlist scope onto a destination directory. An empty
// playlist URL, the sentinel bucket, and playlists without their own save
// directory all land in the root location.
func (o *Orchestrator) resolveSaveDir(ctx context.Context, playlistURL string) (string, error) {
	playlistURL = strings.TrimSpace(playlistURL)
	if playlistURL == "" || playlistURL == catalog.SentinelPlaylistURL {
		return o.cfg.RootDir, nil
	}
	playlist, err := o.store.GetPlaylist(ctx, playlistURL)
	if err != nil {
		return "", err
	}
	if playlist.SaveDir == "" {
		return o.cfg.RootDir, nil
	}
	return playlist.SaveDir, nil
}

// run fetches one item. The semaphore slot is released on every exit path so
// a failed download never shrinks capacity.
func (o *Orchestrator) run(taskID string, video catalog.Video, destDir string, logger *slog.Logger) {
	defer o.wg.Done()

	logger = logger.With(logging.String(logging.FieldTaskID, taskID), logging.String(logging.FieldURL, video.URL))

	if err := o.sem.Acquire(o.bgCtx); err != nil {
		logger.Warn("download abandoned before start", logging.Error(err))
		o.registry.Delete(taskID)
		return
	}
	defer o.sem.Release()

	o.publish(notifications.EventDownloadStarted, notifications.Payload{"url": video.URL})
	logger.Info("download started", logging.String("dest_dir", destDir))

	result, err := o.downloader.Download(o.bgCtx, ytdlp.DownloadRequest{
		URL:     video.URL,
		DestDir: destDir,
		TaskID:  taskID,
		OnProgress: func(percent float64) {
			o.publish(notifications.EventDownloadPercent, notifications.Payload{
				"url":        video.URL,
				"percentage": strconv.FormatFloat(percent, 'f', 1, 64),
			})
		},
	})
	if err != nil {
		logger.Error("download failed", logging.Error(err))
		o.registry.Update(taskID, func(task *tasks.Task) {
			task.Status = tasks.StatusFailed
		})
		o.registry.Delete(taskID)
		o.publish(notifications.EventDownloadFailed, notifications.Payload{"url": video.URL, "title": video.Title})
		return
	}

	title := o.rewriteTitle(video, result.Filename)
	if err := o.store.MarkVideoDownloaded(o.bgCtx, video.URL, title); err != nil {
		logger.Error("catalogue update failed after download", logging.Error(err))
	}
	o.registry.Update(taskID, func(task *tasks.Task) {
		task.Status = tasks.StatusCompleted
		task.Progress = 100
	})
	o.registry.Delete(taskID)

	finalTitle := video.Title
	if title != "" {
		finalTitle = title
	}
	logger.Info("download complete", logging.String("title", finalTitle))
	o.publish(notifications.EventDownloadDone, notifications.Payload{"url": video.URL, "title": finalTitle})
}

// rewriteTitle returns the replacement title for a finished item, or empty
// when the stored title should be kept. Only placeholder titles and titles
// that merely echo the external id give way to the on-disk filename.
func (o *Orchestrator) rewriteTitle(video catalog.Video, filename string) string {
	if filename == "" {
		return ""
	}
	if video.Title == video.ExternalID || ytdlp.IsUnavailableTitle(video.Title) {
		return filename
	}
	return ""
}

func (o *Orchestrator) publish(event notifications.Event, payload notifications.Payload) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Publish(context.Background(), event, payload); err != nil {
		o.logger.Warn("notification publish failed", logging.String("event", string(event)), logging.Error(err))
	}
}

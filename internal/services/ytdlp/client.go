package ytdlp

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"bobbin/internal/config"
	"bobbin/internal/logging"
	"bobbin/internal/tasks"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(c *Client) {
		if executor != nil {
			c.exec = executor
		}
	}
}

// WithClock overrides the time source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client wraps yt-dlp CLI interactions and maintains the task registry
// bookkeeping for every spawn.
type Client struct {
	binary          string
	listingTimeout  time.Duration
	downloadTimeout time.Duration
	embed           config.YTDLP
	registry        *tasks.Registry
	logger          *slog.Logger
	exec            Executor
	now             func() time.Time
}

// New constructs a yt-dlp client.
func New(cfg *config.Config, registry *tasks.Registry, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("ytdlp client requires config")
	}
	if registry == nil {
		return nil, errors.New("ytdlp client requires a task registry")
	}
	binary := strings.TrimSpace(cfg.YTDLP.Binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}

	client := &Client{
		binary:          binary,
		listingTimeout:  time.Duration(cfg.YTDLP.ListingTimeout) * time.Second,
		downloadTimeout: time.Duration(cfg.YTDLP.DownloadTimeout) * time.Second,
		embed:           cfg.YTDLP,
		registry:        registry,
		logger:          logging.NewComponentLogger(logger, "ytdlp"),
		exec:            commandExecutor{},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// touch advances a task's activity timestamp. Every stdout or stderr chunk
// lands here; this is what lets the reaper tell "stalled" from "slow but
// alive".
func (c *Client) touch(taskID string) {
	now := c.now()
	c.registry.Update(taskID, func(task *tasks.Task) {
		if now.After(task.LastActivityAt) {
			task.LastActivityAt = now
		}
	})
}

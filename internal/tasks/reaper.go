package tasks

import (
	"context"
	"log/slog"
	"time"

	"bobbin/internal/logging"
)

// ReaperConfig carries the timing knobs for the sweep loop. Explicit config
// keeps the reaper testable without process-wide state.
type ReaperConfig struct {
	Interval    time.Duration
	IdleCeiling time.Duration
	// TermGrace is how long a terminated process gets to exit before the
	// reaper escalates to a kill signal.
	TermGrace time.Duration
}

// Reaper periodically evicts terminal tasks and force-terminates tasks whose
// subprocess output has stalled past the idle ceiling.
type Reaper struct {
	registry *Registry
	cfg      ReaperConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewReaper constructs a reaper over the given registry.
func NewReaper(registry *Registry, cfg ReaperConfig, logger *slog.Logger) *Reaper {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.IdleCeiling <= 0 {
		cfg.IdleCeiling = 10 * time.Minute
	}
	if cfg.TermGrace <= 0 {
		cfg.TermGrace = 5 * time.Second
	}
	return &Reaper{
		registry: registry,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "reaper"),
		now:      time.Now,
	}
}

// Run sweeps on a fixed interval until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep performs a single pass over the registry.
func (r *Reaper) Sweep() {
	now := r.now()
	for _, task := range r.registry.Snapshot() {
		switch {
		case task.Terminal():
			// Owners delete their own tasks; this is the safety net for
			// orphaned entries.
			if r.registry.Delete(task.ID) {
				r.logger.Debug("evicted terminal task",
					logging.String(logging.FieldTaskID, task.ID),
					logging.String("status", string(task.Status)),
				)
			}
		case task.Status == StatusRunning && now.Sub(task.LastActivityAt) > r.cfg.IdleCeiling:
			r.reapStalled(task)
		}
	}
}

func (r *Reaper) reapStalled(task Task) {
	r.logger.Warn("terminating stalled task",
		logging.String(logging.FieldTaskID, task.ID),
		logging.String(logging.FieldJobKind, string(task.Kind)),
		logging.String(logging.FieldURL, task.URL),
		logging.Duration("idle", r.now().Sub(task.LastActivityAt)),
	)

	if task.Handle != nil {
		if err := task.Handle.Terminate(); err != nil {
			r.logger.Warn("terminate signal failed",
				logging.String(logging.FieldTaskID, task.ID),
				logging.Error(err),
			)
		}
		select {
		case <-task.Handle.Done():
		case <-time.After(r.cfg.TermGrace):
			if err := task.Handle.Kill(); err != nil {
				r.logger.Warn("kill signal failed",
					logging.String(logging.FieldTaskID, task.ID),
					logging.Error(err),
				)
			}
		}
	}

	// Best-effort: the OS reclaims the process independently, so the entry
	// goes away whether or not the signal was acknowledged.
	r.registry.Delete(task.ID)
}

package tasks

import "time"

// Kind identifies the two job families the registry tracks.
type Kind string

const (
	KindListing  Kind = "listing"
	KindDownload Kind = "download"
)

// Status represents the lifecycle of an in-flight task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Handle is the registry's grip on a live subprocess. It is owned exclusively
// by the task that registered it and is released exactly once, by either
// normal exit or the reaper.
type Handle interface {
	// PID returns the operating system process identifier.
	PID() int
	// Terminate requests graceful shutdown (SIGTERM).
	Terminate() error
	// Kill forcefully ends the process (SIGKILL).
	Kill() error
	// Done is closed once the process has exited.
	Done() <-chan struct{}
}

// Task is the ephemeral in-memory record for one subprocess job. It is never
// persisted to the catalogue.
type Task struct {
	ID             string
	Kind           Kind
	Status         Status
	URL            string
	SpawnedAt      time.Time
	LastActivityAt time.Time
	Progress       float64
	Handle         Handle
}

// Terminal reports whether the task has finished either way.
func (t *Task) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

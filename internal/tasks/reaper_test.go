package tasks

import (
	"sync"
	"testing"
	"time"

	"bobbin/internal/logging"
)

type fakeHandle struct {
	mu         sync.Mutex
	terminated bool
	killed     bool
	done       chan struct{}
	exitOnTerm bool
}

func newFakeHandle(exitOnTerm bool) *fakeHandle {
	return &fakeHandle{done: make(chan struct{}), exitOnTerm: exitOnTerm}
}

func (h *fakeHandle) PID() int { return 4242 }

func (h *fakeHandle) Terminate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.terminated = true
	if h.exitOnTerm {
		close(h.done)
	}
	return nil
}

func (h *fakeHandle) Kill() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.killed = true
	return nil
}

func (h *fakeHandle) Done() <-chan struct{} { return h.done }

func (h *fakeHandle) state() (terminated, killed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.terminated, h.killed
}

func newTestReaper(reg *Registry, idleCeiling time.Duration) *Reaper {
	return NewReaper(reg, ReaperConfig{
		Interval:    time.Minute,
		IdleCeiling: idleCeiling,
		TermGrace:   20 * time.Millisecond,
	}, logging.NewNop())
}

func TestSweepEvictsTerminalTasks(t *testing.T) {
	reg := NewRegistry()
	for _, task := range []*Task{
		{ID: "done", Status: StatusCompleted},
		{ID: "failed", Status: StatusFailed},
		{ID: "live", Status: StatusRunning, LastActivityAt: time.Now()},
	} {
		if err := reg.Register(task); err != nil {
			t.Fatalf("register %s: %v", task.ID, err)
		}
	}

	newTestReaper(reg, time.Hour).Sweep()

	if _, ok := reg.Get("done"); ok {
		t.Fatal("completed task should be evicted")
	}
	if _, ok := reg.Get("failed"); ok {
		t.Fatal("failed task should be evicted")
	}
	if _, ok := reg.Get("live"); !ok {
		t.Fatal("active task should survive the sweep")
	}
}

func TestSweepTerminatesStalledTaskGracefully(t *testing.T) {
	reg := NewRegistry()
	handle := newFakeHandle(true)
	if err := reg.Register(&Task{
		ID:             "stalled",
		Status:         StatusRunning,
		LastActivityAt: time.Now().Add(-time.Hour),
		Handle:         handle,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	newTestReaper(reg, time.Minute).Sweep()

	terminated, killed := handle.state()
	if !terminated {
		t.Fatal("expected terminate signal")
	}
	if killed {
		t.Fatal("acknowledged terminate should not escalate to kill")
	}
	if _, ok := reg.Get("stalled"); ok {
		t.Fatal("stalled task should be removed after termination")
	}
}

func TestSweepEscalatesToKillWhenTerminateIgnored(t *testing.T) {
	reg := NewRegistry()
	handle := newFakeHandle(false)
	if err := reg.Register(&Task{
		ID:             "stuck",
		Status:         StatusRunning,
		LastActivityAt: time.Now().Add(-time.Hour),
		Handle:         handle,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	newTestReaper(reg, time.Minute).Sweep()

	terminated, killed := handle.state()
	if !terminated || !killed {
		t.Fatalf("expected terminate then kill, got terminated=%v killed=%v", terminated, killed)
	}
	if _, ok := reg.Get("stuck"); ok {
		t.Fatal("task should be removed even when kill is required")
	}
}

func TestSweepSparesSlowButAliveTasks(t *testing.T) {
	reg := NewRegistry()
	handle := newFakeHandle(true)
	if err := reg.Register(&Task{
		ID:             "slow",
		Status:         StatusRunning,
		SpawnedAt:      time.Now().Add(-2 * time.Hour),
		LastActivityAt: time.Now(),
		Handle:         handle,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	newTestReaper(reg, time.Minute).Sweep()

	if terminated, _ := handle.state(); terminated {
		t.Fatal("task with recent output should not be signalled")
	}
	if _, ok := reg.Get("slow"); !ok {
		t.Fatal("task with recent output should survive")
	}
}

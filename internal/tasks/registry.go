package tasks

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the single source of truth for in-flight listing and download
// tasks. All operations are atomic with respect to concurrent callers.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]*Task
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*Task)}
}

// Register stores a task under its identifier. Registering an identifier that
// is already present is a programming error and is rejected.
func (r *Registry) Register(task *Task) error {
	if task == nil || task.ID == "" {
		return fmt.Errorf("task registry: missing task id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[task.ID]; exists {
		return fmt.Errorf("task registry: duplicate id %q", task.ID)
	}
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

// Get returns a copy of the task with the given identifier.
func (r *Registry) Get(id string) (Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// Update applies mutator to the stored task under the registry lock.
// It reports whether the task was present.
func (r *Registry) Update(id string, mutator func(*Task)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return false
	}
	mutator(task)
	return true
}

// Delete removes the task and reports whether it was present. A task is
// removed from the registry at most once; the second caller sees false.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return false
	}
	delete(r.tasks, id)
	return true
}

// Snapshot returns a point-in-time copy of all tasks ordered by spawn time,
// for diagnostics and the reaper sweep.
func (r *Registry) Snapshot() []Task {
	r.mu.Lock()
	out := make([]Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, *task)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].SpawnedAt.Equal(out[j].SpawnedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SpawnedAt.Before(out[j].SpawnedAt)
	})
	return out
}

// ActiveURL reports whether any pending or running task already covers url.
// The download orchestrator uses this to avoid double-fetching an item.
func (r *Registry) ActiveURL(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range r.tasks {
		if task.URL != url {
			continue
		}
		if task.Status == StatusPending || task.Status == StatusRunning {
			return true
		}
	}
	return false
}

// Len reports the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

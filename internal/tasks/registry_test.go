package tasks_test

import (
	"testing"
	"time"

	"bobbin/internal/tasks"
)

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := tasks.NewRegistry()
	task := &tasks.Task{ID: "abc", Kind: tasks.KindDownload, Status: tasks.StatusPending}
	if err := reg.Register(task); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := reg.Register(task); err == nil {
		t.Fatal("duplicate register should fail")
	}
}

func TestDeleteIsSingleShot(t *testing.T) {
	reg := tasks.NewRegistry()
	if err := reg.Register(&tasks.Task{ID: "abc", Kind: tasks.KindListing, Status: tasks.StatusRunning}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.Delete("abc") {
		t.Fatal("first delete should succeed")
	}
	if reg.Delete("abc") {
		t.Fatal("second delete should report missing")
	}
}

func TestUpdateMutatesStoredTask(t *testing.T) {
	reg := tasks.NewRegistry()
	if err := reg.Register(&tasks.Task{ID: "abc", Status: tasks.StatusPending}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.Update("abc", func(task *tasks.Task) {
		task.Status = tasks.StatusRunning
		task.Progress = 42
	}) {
		t.Fatal("update should find the task")
	}
	got, ok := reg.Get("abc")
	if !ok {
		t.Fatal("task should exist")
	}
	if got.Status != tasks.StatusRunning || got.Progress != 42 {
		t.Fatalf("unexpected task state: %+v", got)
	}
}

func TestActiveURLIgnoresTerminalTasks(t *testing.T) {
	reg := tasks.NewRegistry()
	url := "https://example.com/watch?v=abc"
	if err := reg.Register(&tasks.Task{ID: "done", URL: url, Status: tasks.StatusCompleted}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.ActiveURL(url) {
		t.Fatal("completed task should not count as active")
	}
	if err := reg.Register(&tasks.Task{ID: "live", URL: url, Status: tasks.StatusPending}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.ActiveURL(url) {
		t.Fatal("pending task should count as active")
	}
}

func TestSnapshotOrdersBySpawnTime(t *testing.T) {
	reg := tasks.NewRegistry()
	base := time.Now()
	for i, id := range []string{"c", "a", "b"} {
		if err := reg.Register(&tasks.Task{ID: id, SpawnedAt: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	snap := reg.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(snap))
	}
	if snap[0].ID != "c" || snap[1].ID != "a" || snap[2].ID != "b" {
		t.Fatalf("snapshot out of spawn order: %v, %v, %v", snap[0].ID, snap[1].ID, snap[2].ID)
	}
}

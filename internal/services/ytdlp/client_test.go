package ytdlp_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bobbin/internal/logging"
	"bobbin/internal/services/ytdlp"
	"bobbin/internal/tasks"
	"bobbin/internal/testsupport"
)

type fakeHandle struct {
	pid  int
	done chan struct{}
}

func newFakeHandle(pid int) *fakeHandle {
	return &fakeHandle{pid: pid, done: make(chan struct{})}
}

func (h *fakeHandle) PID() int              { return h.pid }
func (h *fakeHandle) Terminate() error      { return nil }
func (h *fakeHandle) Kill() error           { return nil }
func (h *fakeHandle) Done() <-chan struct{} { return h.done }

type scriptedExecutor struct {
	gotBinary string
	gotArgs   []string
	stdout    []string
	stderr    []string
	runErr    error
	noSpawn   bool
	// observe runs mid-execution, after OnStart and output delivery.
	observe func()
}

func (e *scriptedExecutor) Run(ctx context.Context, binary string, args []string, hooks ytdlp.RunHooks) error {
	e.gotBinary = binary
	e.gotArgs = args
	if e.noSpawn {
		return &ytdlp.SpawnError{Binary: binary, Err: errors.New("executable file not found")}
	}
	if hooks.OnStart != nil {
		hooks.OnStart(newFakeHandle(31337))
	}
	for _, line := range e.stdout {
		if hooks.OnStdout != nil {
			hooks.OnStdout(line)
		}
	}
	for _, line := range e.stderr {
		if hooks.OnStderr != nil {
			hooks.OnStderr(line)
		}
	}
	if e.observe != nil {
		e.observe()
	}
	return e.runErr
}

func newClient(t *testing.T, registry *tasks.Registry, executor ytdlp.Executor) *ytdlp.Client {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	client, err := ytdlp.New(cfg, registry, logging.NewNop(), ytdlp.WithExecutor(executor))
	if err != nil {
		t.Fatalf("ytdlp.New: %v", err)
	}
	return client
}

func TestListPageParsesRowsAndSkipsAnomalies(t *testing.T) {
	executor := &scriptedExecutor{stdout: []string{
		"First\tid1\thttps://example.com/watch?v=id1\t1000",
		"[youtube:tab] Downloading page 2",
		"Second\tid2\thttps://example.com/watch?v=id2\tNA",
		"",
	}}
	registry := tasks.NewRegistry()
	client := newClient(t, registry, executor)

	rows, err := client.ListPage(context.Background(), "https://example.com/playlist?list=x", 1, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (anomalies skipped, page not aborted)", len(rows))
	}
	if rows[0].ExternalID != "id1" || rows[1].ExternalID != "id2" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	joined := strings.Join(executor.gotArgs, " ")
	for _, want := range []string{"--flat-playlist", "--playlist-start 1", "--playlist-end 10", "--print"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("listing args missing %q: %s", want, joined)
		}
	}
	if registry.Len() != 0 {
		t.Fatalf("listing task should be deleted after completion, registry has %d", registry.Len())
	}
}

func TestListPageRegistersTaskByPID(t *testing.T) {
	registry := tasks.NewRegistry()
	executor := &scriptedExecutor{
		stdout: []string{"First\tid1\thttps://example.com/watch?v=id1\tNA"},
	}
	executor.observe = func() {
		task, ok := registry.Get("listing-31337")
		if !ok {
			t.Error("listing task should be registered under its PID while running")
			return
		}
		if task.Status != tasks.StatusRunning {
			t.Errorf("task status = %s, want running", task.Status)
		}
		if task.Handle == nil {
			t.Error("running task must hold a live handle")
		}
	}
	client := newClient(t, registry, executor)

	if _, err := client.ListPage(context.Background(), "https://example.com/playlist", 1, 10); err != nil {
		t.Fatalf("ListPage: %v", err)
	}
}

func TestListPageSpawnFailure(t *testing.T) {
	registry := tasks.NewRegistry()
	client := newClient(t, registry, &scriptedExecutor{noSpawn: true})

	_, err := client.ListPage(context.Background(), "https://example.com/playlist", 1, 10)
	var spawnErr *ytdlp.SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("expected SpawnError, got %v", err)
	}
	if registry.Len() != 0 {
		t.Fatal("no task should be registered when the spawn fails")
	}
}

func TestProbeTitleFallsBackToNA(t *testing.T) {
	registry := tasks.NewRegistry()

	client := newClient(t, registry, &scriptedExecutor{stdout: []string{"My Mix"}})
	title, err := client.ProbeTitle(context.Background(), "https://example.com/playlist")
	if err != nil || title != "My Mix" {
		t.Fatalf("ProbeTitle = %q, %v", title, err)
	}

	client = newClient(t, registry, &scriptedExecutor{})
	title, err = client.ProbeTitle(context.Background(), "https://example.com/playlist")
	if err != nil || title != ytdlp.NoValue {
		t.Fatalf("empty probe should yield %q, got %q, %v", ytdlp.NoValue, title, err)
	}
}

func TestDownloadTransitionsTaskAndThrottlesProgress(t *testing.T) {
	registry := tasks.NewRegistry()
	if err := registry.Register(&tasks.Task{
		ID:     "dl-1",
		Kind:   tasks.KindDownload,
		Status: tasks.StatusPending,
		URL:    "https://example.com/watch?v=id1",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	executor := &scriptedExecutor{stdout: []string{
		"[download] Destination: /save/My Video.mp4",
		"[download]   0.5% of 100MiB at 1MiB/s",
		"[download]   3.2% of 100MiB at 1MiB/s",
		"[download]  12.0% of 100MiB at 1MiB/s",
		"[download]  19.9% of 100MiB at 1MiB/s",
		"[download]  57.3% of 100MiB at 1MiB/s",
		"[download] 100% of 100MiB in 01:40",
	}}
	executor.observe = func() {
		task, ok := registry.Get("dl-1")
		if !ok {
			t.Error("download task missing mid-run")
			return
		}
		if task.Status != tasks.StatusRunning {
			t.Errorf("task status = %s, want running", task.Status)
		}
	}
	client := newClient(t, registry, executor)

	var emitted []float64
	result, err := client.Download(context.Background(), ytdlp.DownloadRequest{
		URL:        "https://example.com/watch?v=id1",
		DestDir:    "/save",
		TaskID:     "dl-1",
		OnProgress: func(percent float64) { emitted = append(emitted, percent) },
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if result.Filename != "My Video" {
		t.Fatalf("filename = %q, want %q", result.Filename, "My Video")
	}

	// One emission per 10%-block: 0.5, 12.0, 57.3, 100.
	want := []float64{0.5, 12.0, 57.3, 100}
	if len(emitted) != len(want) {
		t.Fatalf("emitted %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("emitted %v, want %v", emitted, want)
		}
	}

	joined := strings.Join(executor.gotArgs, " ")
	if !strings.Contains(joined, "--embed-metadata") {
		t.Fatalf("metadata embedding must always be on: %s", joined)
	}
}

func TestDownloadToolExitSurfacesExitError(t *testing.T) {
	registry := tasks.NewRegistry()
	if err := registry.Register(&tasks.Task{ID: "dl-1", Kind: tasks.KindDownload, Status: tasks.StatusPending}); err != nil {
		t.Fatalf("register: %v", err)
	}
	client := newClient(t, registry, &scriptedExecutor{runErr: &ytdlp.ExitError{Code: 1}})

	_, err := client.Download(context.Background(), ytdlp.DownloadRequest{
		URL: "https://example.com/watch?v=id1", DestDir: "/save", TaskID: "dl-1",
	})
	var exitErr *ytdlp.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
}

package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"golang.org/x/sys/unix"

	"bobbin/internal/tasks"
)

// RunHooks receives subprocess lifecycle callbacks during Executor.Run.
type RunHooks struct {
	// OnStart fires exactly once, synchronously with successful process
	// creation, before any output is delivered.
	OnStart func(handle tasks.Handle)
	// OnStdout receives each stdout line.
	OnStdout func(line string)
	// OnStderr receives each stderr line.
	OnStderr func(line string)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, hooks RunHooks) error
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, hooks RunHooks) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return &SpawnError{Binary: binary, Err: err}
	}

	handle := &processHandle{proc: cmd.Process, done: make(chan struct{})}
	if hooks.OnStart != nil {
		hooks.OnStart(handle)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if forward != nil {
				forward(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() { scanErr = err })
		}
	}

	wg.Add(2)
	go scan(stdout, hooks.OnStdout)
	go scan(stderr, hooks.OnStderr)
	wg.Wait()

	waitErr := cmd.Wait()
	close(handle.done)

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode(), Err: waitErr}
		}
		return fmt.Errorf("wait: %w", waitErr)
	}
	return scanErr
}

// processHandle grants the task registry signal-level control over the live
// subprocess.
type processHandle struct {
	proc *os.Process
	done chan struct{}
}

func (h *processHandle) PID() int { return h.proc.Pid }

func (h *processHandle) Terminate() error {
	return h.proc.Signal(unix.SIGTERM)
}

func (h *processHandle) Kill() error {
	return h.proc.Signal(unix.SIGKILL)
}

func (h *processHandle) Done() <-chan struct{} { return h.done }

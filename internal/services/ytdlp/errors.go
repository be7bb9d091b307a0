package ytdlp

import "fmt"

// SpawnError indicates the OS refused to create the subprocess (for example
// the binary is missing). The job fails immediately and its task never
// reaches the running state.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError indicates the tool ran but exited non-zero. The catalogue is left
// unchanged for the affected item.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("yt-dlp exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

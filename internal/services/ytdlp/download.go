package ytdlp

import (
	"context"
	"errors"
	"path/filepath"

	"bobbin/internal/tasks"
)

// DownloadRequest describes one item fetch. TaskID must reference a pending
// task the caller already registered; the runner transitions it to running
// exactly once, synchronously with process creation.
type DownloadRequest struct {
	URL     string
	DestDir string
	TaskID  string
	// OnProgress receives percentages in increasing 10%-block granularity.
	OnProgress func(percent float64)
}

// DownloadResult is the structured completion record for a download.
type DownloadResult struct {
	// Filename is the on-disk name reported by the tool's "Destination:"
	// line, stripped of the save-path prefix and extension. Empty when the
	// tool never reported one.
	Filename string
}

// Download fetches one item to req.DestDir.
func (c *Client) Download(ctx context.Context, req DownloadRequest) (DownloadResult, error) {
	if req.URL == "" {
		return DownloadResult{}, errors.New("download URL required")
	}
	if req.DestDir == "" {
		return DownloadResult{}, errors.New("destination directory required")
	}

	if c.downloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.downloadTimeout)
		defer cancel()
	}

	args := []string{"--newline", "--embed-metadata"}
	if c.embed.EmbedSubtitles {
		args = append(args, "--embed-subs")
	}
	if c.embed.EmbedDescription {
		args = append(args, "--write-description")
	}
	if c.embed.EmbedComments {
		args = append(args, "--write-comments")
	}
	if c.embed.EmbedThumbnail {
		args = append(args, "--embed-thumbnail")
	}
	args = append(args, "-o", filepath.Join(req.DestDir, "%(title)s.%(ext)s"), req.URL)

	var result DownloadResult
	lastBlock := -1

	hooks := RunHooks{
		OnStart: func(handle tasks.Handle) {
			now := c.now()
			c.registry.Update(req.TaskID, func(task *tasks.Task) {
				task.Status = tasks.StatusRunning
				task.Handle = handle
				task.SpawnedAt = now
				task.LastActivityAt = now
			})
		},
		OnStdout: func(line string) {
			c.touch(req.TaskID)
			if destination, ok := parseDestination(line); ok {
				result.Filename = filenameFromDestination(destination)
				return
			}
			percent, ok := parsePercent(line)
			if !ok {
				return
			}
			c.registry.Update(req.TaskID, func(task *tasks.Task) {
				if percent > task.Progress {
					task.Progress = percent
				}
			})
			// Throttle to 10%-blocks so listeners are not flooded.
			if block := int(percent / 10); block > lastBlock {
				lastBlock = block
				if req.OnProgress != nil {
					req.OnProgress(percent)
				}
			}
		},
		OnStderr: func(line string) {
			c.touch(req.TaskID)
		},
	}

	if err := c.exec.Run(ctx, c.binary, args, hooks); err != nil {
		return DownloadResult{}, err
	}
	return result, nil
}

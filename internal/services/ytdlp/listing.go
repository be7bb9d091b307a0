package ytdlp

import (
	"context"
	"strconv"
	"strings"

	"bobbin/internal/logging"
	"bobbin/internal/tasks"
)

// ListPage enumerates one page of a playlist or channel. start is 1-based per
// the tool's pagination convention; count rows at most are returned. Rows that
// fail to parse are skipped, never aborting the page.
func (c *Client) ListPage(ctx context.Context, url string, start, count int) ([]ListingRow, error) {
	if start < 1 {
		start = 1
	}
	args := []string{
		"--flat-playlist",
		"--skip-download",
		"--ignore-errors",
		"--print", listingTemplate,
		"--playlist-start", strconv.Itoa(start),
		"--playlist-end", strconv.Itoa(start + count - 1),
		url,
	}

	var rows []ListingRow
	err := c.runListing(ctx, url, args, func(line string) {
		row, ok := parseListingLine(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				c.logger.Debug("skipping malformed listing line", logging.String("line", line))
			}
			return
		}
		rows = append(rows, row)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ProbeTitle asks the tool for the collection title. The literal "NA" is
// returned as-is; callers treat it as "no usable title".
func (c *Client) ProbeTitle(ctx context.Context, url string) (string, error) {
	args := []string{
		"--flat-playlist",
		"--skip-download",
		"--playlist-end", "1",
		"--print", titleTemplate,
		url,
	}

	var title string
	err := c.runListing(ctx, url, args, func(line string) {
		if title == "" {
			title = strings.TrimSpace(line)
		}
	})
	if err != nil {
		return "", err
	}
	if title == "" {
		title = NoValue
	}
	return title, nil
}

// runListing spawns one listing invocation, tracking it in the registry under
// an identifier derived from the subprocess PID.
func (c *Client) runListing(ctx context.Context, url string, args []string, onRow func(string)) error {
	if c.listingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.listingTimeout)
		defer cancel()
	}

	var taskID string
	hooks := RunHooks{
		OnStart: func(handle tasks.Handle) {
			taskID = "listing-" + strconv.Itoa(handle.PID())
			now := c.now()
			if err := c.registry.Register(&tasks.Task{
				ID:             taskID,
				Kind:           tasks.KindListing,
				Status:         tasks.StatusRunning,
				URL:            url,
				SpawnedAt:      now,
				LastActivityAt: now,
				Handle:         handle,
			}); err != nil {
				c.logger.Warn("listing task registration failed", logging.Error(err))
			}
		},
		OnStdout: func(line string) {
			c.touch(taskID)
			onRow(line)
		},
		OnStderr: func(line string) {
			c.touch(taskID)
		},
	}

	err := c.exec.Run(ctx, c.binary, args, hooks)
	if taskID != "" {
		c.registry.Delete(taskID)
	}
	return err
}

// Package daemonctl is the typed HTTP client the CLI uses to talk to a
// running daemon's loopback API.
package daemonctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bobbin/internal/api"
)

// ErrDaemonUnavailable reports that the daemon API could not be reached.
var ErrDaemonUnavailable = errors.New("daemon API unavailable")

// Client talks to the daemon's HTTP API.
type Client struct {
	base *url.URL
	http *http.Client
}

// New builds a client for the given bind address ("host:port" or a full URL).
func New(bind string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, errors.New("daemon API address required")
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse daemon API address: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base: base,
		http: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.get(ctx, "/api/status", nil, &status)
	return status, err
}

// Videos fetches catalogue items with an optional title filter.
func (c *Client) Videos(ctx context.Context, titleContains string, offset, limit int) ([]api.Video, error) {
	values := url.Values{}
	if strings.TrimSpace(titleContains) != "" {
		values.Set("title", titleContains)
	}
	if offset > 0 {
		values.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	var resp api.VideoListResponse
	if err := c.get(ctx, "/api/videos", values, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Playlists fetches the known collections.
func (c *Client) Playlists(ctx context.Context) ([]api.Playlist, error) {
	var resp api.PlaylistListResponse
	if err := c.get(ctx, "/api/playlists", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// PlaylistVideos fetches one collection's items in listing order.
func (c *Client) PlaylistVideos(ctx context.Context, playlistURL string) ([]api.Video, error) {
	values := url.Values{}
	values.Set("url", playlistURL)
	var resp api.VideoListResponse
	if err := c.get(ctx, "/api/playlists/videos", values, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Tasks fetches the in-flight task snapshot.
func (c *Client) Tasks(ctx context.Context) ([]api.Task, error) {
	var resp api.TaskListResponse
	if err := c.get(ctx, "/api/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// List submits a listing request and returns the reconciled first page.
func (c *Client) List(ctx context.Context, listURL string) (api.ListingResponse, error) {
	var resp api.ListingResponse
	err := c.post(ctx, "/api/playlists", api.ListingRequest{URL: listURL}, &resp)
	return resp, err
}

// Download submits a download batch.
func (c *Client) Download(ctx context.Context, items []api.DownloadItem) (api.DownloadResponse, error) {
	var resp api.DownloadResponse
	err := c.post(ctx, "/api/downloads", api.DownloadRequest{Items: items}, &resp)
	return resp, err
}

// SetWorkerLimits adjusts semaphore capacity and returns the updated status.
func (c *Client) SetWorkerLimits(ctx context.Context, listings, downloadLimit int) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.post(ctx, "/api/workers", api.WorkerLimitsRequest{Listings: listings, Downloads: downloadLimit}, &status)
	return status, err
}

func (c *Client) get(ctx context.Context, path string, values url.Values, out any) error {
	target := c.endpoint(path, values)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) endpoint(path string, values url.Values) string {
	target := *c.base
	target.Path = path
	if values != nil {
		target.RawQuery = values.Encode()
	}
	return target.String()
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("daemon returned %d", resp.StatusCode)
}

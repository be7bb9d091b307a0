package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Video describes a catalogue item in a transport-friendly format.
type Video struct {
	URL        string `json:"url"`
	ExternalID string `json:"externalId"`
	Title      string `json:"title"`
	ApproxSize int64  `json:"approxSize"`
	Downloaded bool   `json:"downloaded"`
	Available  bool   `json:"available"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Playlist describes a collection in a transport-friendly format.
type Playlist struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Monitoring string `json:"monitoring,omitempty"`
	SaveDir    string `json:"saveDir,omitempty"`
	Position   int64  `json:"position"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Task describes one in-flight subprocess job.
type Task struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	Status         string  `json:"status"`
	URL            string  `json:"url"`
	Progress       float64 `json:"progress"`
	PID            int     `json:"pid,omitempty"`
	SpawnedAt      string  `json:"spawnedAt,omitempty"`
	LastActivityAt string  `json:"lastActivityAt,omitempty"`
}

// WorkerStatus reports one semaphore's admission state.
type WorkerStatus struct {
	Limit   int `json:"limit"`
	Held    int `json:"held"`
	Waiting int `json:"waiting"`
}

// CatalogStats summarizes catalogue contents.
type CatalogStats struct {
	Videos     int64 `json:"videos"`
	Downloaded int64 `json:"downloaded"`
	Playlists  int64 `json:"playlists"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool         `json:"running"`
	PID           int          `json:"pid"`
	CatalogDBPath string       `json:"catalogDbPath"`
	LockFilePath  string       `json:"lockFilePath"`
	Listings      WorkerStatus `json:"listings"`
	Downloads     WorkerStatus `json:"downloads"`
	Stats         CatalogStats `json:"stats"`
	Tasks         []Task       `json:"tasks"`
}

// ListingRequest asks the daemon to enumerate a URL.
type ListingRequest struct {
	URL string `json:"url"`
}

// ListingResponse carries the reconciled first page.
type ListingResponse struct {
	Playlist             *Playlist `json:"playlist,omitempty"`
	Items                []Video   `json:"items"`
	ShouldStopProcessing bool      `json:"shouldStopProcessing"`
}

// DownloadItem names one item to fetch, optionally scoped to a playlist.
type DownloadItem struct {
	URL         string `json:"url"`
	PlaylistURL string `json:"playlistUrl,omitempty"`
}

// DownloadRequest asks the daemon to fetch a batch of items.
type DownloadRequest struct {
	Items []DownloadItem `json:"items"`
}

// SkipDetail records one item left out of a download batch.
type SkipDetail struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// DownloadResponse reports the per-item disposition of a batch.
type DownloadResponse struct {
	Accepted []string     `json:"accepted"`
	Skipped  []SkipDetail `json:"skipped"`
}

// WorkerLimitsRequest adjusts semaphore capacity at runtime. A zero value
// leaves that limit unchanged.
type WorkerLimitsRequest struct {
	Listings  int `json:"listings"`
	Downloads int `json:"downloads"`
}

// VideoListResponse wraps a collection of catalogue items.
type VideoListResponse struct {
	Items []Video `json:"items"`
}

// PlaylistListResponse wraps the known collections.
type PlaylistListResponse struct {
	Items []Playlist `json:"items"`
}

// TaskListResponse wraps the in-flight task snapshot.
type TaskListResponse struct {
	Items []Task `json:"items"`
}

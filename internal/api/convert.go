package api

import (
	"time"

	"bobbin/internal/catalog"
	"bobbin/internal/tasks"
)

// FromVideo converts a catalogue item into its API representation.
func FromVideo(video catalog.Video) Video {
	return Video{
		URL:        video.URL,
		ExternalID: video.ExternalID,
		Title:      video.Title,
		ApproxSize: video.ApproxSize,
		Downloaded: video.Downloaded,
		Available:  video.Available,
		CreatedAt:  formatTimestamp(video.CreatedAt),
		UpdatedAt:  formatTimestamp(video.UpdatedAt),
	}
}

// FromVideos converts a slice of catalogue items, preserving order.
func FromVideos(videos []catalog.Video) []Video {
	if len(videos) == 0 {
		return nil
	}
	out := make([]Video, 0, len(videos))
	for _, video := range videos {
		out = append(out, FromVideo(video))
	}
	return out
}

// FromPlaylist converts a collection into its API representation.
func FromPlaylist(playlist catalog.Playlist) Playlist {
	return Playlist{
		URL:        playlist.URL,
		Title:      playlist.Title,
		Monitoring: playlist.Monitoring,
		SaveDir:    playlist.SaveDir,
		Position:   playlist.Position,
		CreatedAt:  formatTimestamp(playlist.CreatedAt),
		UpdatedAt:  formatTimestamp(playlist.UpdatedAt),
	}
}

// FromPlaylists converts a slice of collections, preserving order.
func FromPlaylists(playlists []catalog.Playlist) []Playlist {
	if len(playlists) == 0 {
		return nil
	}
	out := make([]Playlist, 0, len(playlists))
	for _, playlist := range playlists {
		out = append(out, FromPlaylist(playlist))
	}
	return out
}

// FromTask converts a registry record into its API representation.
func FromTask(task tasks.Task) Task {
	dto := Task{
		ID:             task.ID,
		Kind:           string(task.Kind),
		Status:         string(task.Status),
		URL:            task.URL,
		Progress:       task.Progress,
		SpawnedAt:      formatTimestamp(task.SpawnedAt),
		LastActivityAt: formatTimestamp(task.LastActivityAt),
	}
	if task.Handle != nil {
		dto.PID = task.Handle.PID()
	}
	return dto
}

// FromTasks converts a registry snapshot, preserving order.
func FromTasks(records []tasks.Task) []Task {
	if len(records) == 0 {
		return nil
	}
	out := make([]Task, 0, len(records))
	for _, record := range records {
		out = append(out, FromTask(record))
	}
	return out
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(dateTimeFormat)
}

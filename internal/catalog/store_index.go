package catalog

import (
	"context"
	"fmt"
	"time"
)

// EnsureIndexEntry records that video appears in playlist at position. The
// unique-constraint-backed insert guarantees at most one entry per
// (video, playlist) pair under concurrent listings; an existing entry wins
// and its position is preserved. Reports whether a new row was created.
func (s *Store) EnsureIndexEntry(ctx context.Context, videoURL, playlistURL string, position int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO playlist_videos (video_url, playlist_url, position, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(video_url, playlist_url) DO NOTHING`,
		videoURL, playlistURL, position, formatTime(time.Now()),
	)
	if err != nil {
		return false, fmt.Errorf("ensure index entry (%q, %q): %w", videoURL, playlistURL, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure index entry (%q, %q): %w", videoURL, playlistURL, err)
	}
	return affected > 0, nil
}

// HasIndexEntry reports whether the (video, playlist) pair is already indexed.
func (s *Store) HasIndexEntry(ctx context.Context, videoURL, playlistURL string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM playlist_videos WHERE video_url = ? AND playlist_url = ?`,
		videoURL, playlistURL,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check index entry (%q, %q): %w", videoURL, playlistURL, err)
	}
	return count > 0, nil
}

// NextPosition returns one past the highest position recorded for playlist,
// or zero for an empty collection.
func (s *Store) NextPosition(ctx context.Context, playlistURL string) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_videos WHERE playlist_url = ?`,
		playlistURL,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next position for %q: %w", playlistURL, err)
	}
	return next, nil
}

// CountIndexEntries reports how many videos are indexed under playlist.
func (s *Store) CountIndexEntries(ctx context.Context, playlistURL string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM playlist_videos WHERE playlist_url = ?`,
		playlistURL,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count index entries for %q: %w", playlistURL, err)
	}
	return count, nil
}

// PlaylistVideos returns the videos indexed under playlist in listing order.
func (s *Store) PlaylistVideos(ctx context.Context, playlistURL string) ([]Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT v.url, v.external_id, v.title, v.approx_size, v.downloaded, v.available, v.created_at, v.updated_at
         FROM playlist_videos pv
         JOIN videos v ON v.url = pv.video_url
         WHERE pv.playlist_url = ?
         ORDER BY pv.position`, playlistURL)
	if err != nil {
		return nil, fmt.Errorf("playlist videos for %q: %w", playlistURL, err)
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		video, err := scanVideoRows(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

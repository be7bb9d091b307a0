package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LookupOrCreatePlaylist fetches the playlist for url, inserting it first if
// absent. The insert is conditional on the primary key, so concurrent
// requests for the same new collection resolve to a single row. The insertion
// index is assigned inside the same statement.
func (s *Store) LookupOrCreatePlaylist(ctx context.Context, url, title, saveDir string) (*Playlist, error) {
	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO playlists (url, title, monitoring, save_dir, position, created_at, updated_at)
         VALUES (?, ?, 'none', ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM playlists), ?, ?)
         ON CONFLICT(url) DO NOTHING`,
		url, title, saveDir, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create playlist %q: %w", url, err)
	}
	return s.GetPlaylist(ctx, url)
}

// GetPlaylist fetches a playlist by canonical URL.
func (s *Store) GetPlaylist(ctx context.Context, url string) (*Playlist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT url, title, monitoring, save_dir, position, created_at, updated_at
         FROM playlists WHERE url = ?`, url)

	var playlist Playlist
	var createdAt, updatedAt string
	err := row.Scan(&playlist.URL, &playlist.Title, &playlist.Monitoring,
		&playlist.SaveDir, &playlist.Position, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan playlist: %w", err)
	}
	playlist.CreatedAt = parseTime(createdAt)
	playlist.UpdatedAt = parseTime(updatedAt)
	return &playlist, nil
}

// UpdatePlaylist overwrites the mutable playlist attributes.
func (s *Store) UpdatePlaylist(ctx context.Context, playlist *Playlist) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE playlists SET title = ?, monitoring = ?, save_dir = ?, updated_at = ? WHERE url = ?`,
		playlist.Title, playlist.Monitoring, playlist.SaveDir, formatTime(time.Now()), playlist.URL,
	)
	if err != nil {
		return fmt.Errorf("update playlist %q: %w", playlist.URL, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update playlist %q: %w", playlist.URL, err)
	}
	if affected == 0 {
		return fmt.Errorf("update playlist %q: %w", playlist.URL, ErrNotFound)
	}
	return nil
}

// ListPlaylists returns all playlists in insertion order.
func (s *Store) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, title, monitoring, save_dir, position, created_at, updated_at
         FROM playlists ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var playlist Playlist
		var createdAt, updatedAt string
		if err := rows.Scan(&playlist.URL, &playlist.Title, &playlist.Monitoring,
			&playlist.SaveDir, &playlist.Position, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan playlist row: %w", err)
		}
		playlist.CreatedAt = parseTime(createdAt)
		playlist.UpdatedAt = parseTime(updatedAt)
		playlists = append(playlists, playlist)
	}
	return playlists, rows.Err()
}

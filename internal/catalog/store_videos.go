package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GetVideo fetches a catalogue item by canonical URL.
func (s *Store) GetVideo(ctx context.Context, url string) (*Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT url, external_id, title, approx_size, downloaded, available, created_at, updated_at
         FROM videos WHERE url = ?`, url)
	return scanVideo(row)
}

// UpsertVideo inserts the video or overwrites its listing-visible fields in
// place. The write is a single atomic statement so concurrent listings of the
// same collection cannot duplicate rows. Downloaded state is never touched.
func (s *Store) UpsertVideo(ctx context.Context, video Video) error {
	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (url, external_id, title, approx_size, downloaded, available, created_at, updated_at)
         VALUES (?, ?, ?, ?, 0, ?, ?, ?)
         ON CONFLICT(url) DO UPDATE SET
             external_id = excluded.external_id,
             title       = excluded.title,
             approx_size = excluded.approx_size,
             available   = excluded.available,
             updated_at  = excluded.updated_at`,
		video.URL, video.ExternalID, video.Title, video.ApproxSize,
		boolToInt(video.Available), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert video %q: %w", video.URL, err)
	}
	return nil
}

// MarkVideoDownloaded flips the downloaded flag after a successful fetch and
// optionally replaces the stored title. Availability is restored; a video that
// just downloaded is evidently available.
func (s *Store) MarkVideoDownloaded(ctx context.Context, url, title string) error {
	var res sql.Result
	var err error
	now := formatTime(time.Now())
	if strings.TrimSpace(title) != "" {
		res, err = s.db.ExecContext(ctx,
			`UPDATE videos SET downloaded = 1, available = 1, title = ?, updated_at = ? WHERE url = ?`,
			title, now, url)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE videos SET downloaded = 1, available = 1, updated_at = ? WHERE url = ?`,
			now, url)
	}
	if err != nil {
		return fmt.Errorf("mark downloaded %q: %w", url, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark downloaded %q: %w", url, err)
	}
	if affected == 0 {
		return fmt.Errorf("mark downloaded %q: %w", url, ErrNotFound)
	}
	return nil
}

// VideoFilter narrows and pages ListVideos results.
type VideoFilter struct {
	// TitleContains is a case-insensitive substring match on the title.
	TitleContains string
	Offset        int
	Limit         int
}

// ListVideos returns catalogue items in insertion order.
func (s *Store) ListVideos(ctx context.Context, filter VideoFilter) ([]Video, error) {
	query := `SELECT url, external_id, title, approx_size, downloaded, available, created_at, updated_at
              FROM videos`
	args := make([]any, 0, 3)
	if strings.TrimSpace(filter.TitleContains) != "" {
		query += ` WHERE title LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(filter.TitleContains)+"%")
	}
	query += " ORDER BY rowid"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
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

func scanVideo(row *sql.Row) (*Video, error) {
	var video Video
	var downloaded, available int
	var createdAt, updatedAt string
	err := row.Scan(&video.URL, &video.ExternalID, &video.Title, &video.ApproxSize,
		&downloaded, &available, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan video: %w", err)
	}
	video.Downloaded = downloaded != 0
	video.Available = available != 0
	video.CreatedAt = parseTime(createdAt)
	video.UpdatedAt = parseTime(updatedAt)
	return &video, nil
}

func scanVideoRows(rows *sql.Rows) (Video, error) {
	var video Video
	var downloaded, available int
	var createdAt, updatedAt string
	if err := rows.Scan(&video.URL, &video.ExternalID, &video.Title, &video.ApproxSize,
		&downloaded, &available, &createdAt, &updatedAt); err != nil {
		return Video{}, fmt.Errorf("scan video row: %w", err)
	}
	video.Downloaded = downloaded != 0
	video.Available = available != 0
	video.CreatedAt = parseTime(createdAt)
	video.UpdatedAt = parseTime(updatedAt)
	return video, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

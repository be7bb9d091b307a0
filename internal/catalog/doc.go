// Package catalog persists the media catalogue: videos, playlists, and the
// ordered index between them, backed by SQLite.
//
// Every write path is either a look-up-or-create (conditional insert on the
// primary key) or a full-replace update, so concurrent listing requests
// targeting the same collection stay correct without external locking. The
// "unlisted" sentinel playlist buckets standalone items.
package catalog

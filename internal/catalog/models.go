package catalog

import "time"

// SentinelPlaylistURL is the reserved collection key for standalone items that
// do not belong to any real playlist.
const SentinelPlaylistURL = "unlisted"

// Video is a persistent catalogue item keyed by its canonical URL.
type Video struct {
	URL        string
	ExternalID string
	Title      string
	ApproxSize int64
	Downloaded bool
	Available  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MetadataEquals reports whether the listing-visible fields match. Downloaded
// state and timestamps are deliberately excluded; re-listing never touches
// them.
func (v Video) MetadataEquals(other Video) bool {
	return v.ExternalID == other.ExternalID &&
		v.Title == other.Title &&
		v.ApproxSize == other.ApproxSize &&
		v.Available == other.Available
}

// Playlist is a persistent collection keyed by its canonical URL. Position is
// the insertion-order index assigned when the playlist is first listed.
type Playlist struct {
	URL        string
	Title      string
	Monitoring string
	SaveDir    string
	Position   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IndexEntry is the junction between a video and a playlist, preserving
// listing order per collection.
type IndexEntry struct {
	VideoURL    string
	PlaylistURL string
	Position    int64
	CreatedAt   time.Time
}

// Stats summarizes catalogue contents for diagnostics.
type Stats struct {
	Videos     int64
	Downloaded int64
	Playlists  int64
}

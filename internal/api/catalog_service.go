package api

import (
	"context"
	"strings"

	"bobbin/internal/catalog"
)

// CatalogReader abstracts the catalogue queries the API surface needs.
type CatalogReader interface {
	ListVideos(ctx context.Context, filter catalog.VideoFilter) ([]catalog.Video, error)
	ListPlaylists(ctx context.Context) ([]catalog.Playlist, error)
	PlaylistVideos(ctx context.Context, playlistURL string) ([]catalog.Video, error)
	Stats(ctx context.Context) (catalog.Stats, error)
}

// CatalogService exposes read-only catalogue operations returning API DTOs.
type CatalogService struct {
	store CatalogReader
}

// NewCatalogService constructs a CatalogService around the provided reader.
func NewCatalogService(store CatalogReader) *CatalogService {
	if store == nil {
		return nil
	}
	return &CatalogService{store: store}
}

// Videos returns catalogue items, optionally filtered by a case-insensitive
// title substring and paginated.
func (s *CatalogService) Videos(ctx context.Context, titleContains string, offset, limit int) ([]Video, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	videos, err := s.store.ListVideos(ctx, catalog.VideoFilter{
		TitleContains: strings.TrimSpace(titleContains),
		Offset:        offset,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}
	return FromVideos(videos), nil
}

// Playlists returns all known collections in insertion order.
func (s *CatalogService) Playlists(ctx context.Context) ([]Playlist, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	playlists, err := s.store.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	return FromPlaylists(playlists), nil
}

// PlaylistVideos returns one collection's items in listing order.
func (s *CatalogService) PlaylistVideos(ctx context.Context, playlistURL string) ([]Video, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	videos, err := s.store.PlaylistVideos(ctx, playlistURL)
	if err != nil {
		return nil, err
	}
	return FromVideos(videos), nil
}

// Stats returns catalogue summary counts.
func (s *CatalogService) Stats(ctx context.Context) (CatalogStats, error) {
	if s == nil || s.store == nil {
		return CatalogStats{}, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return CatalogStats{}, err
	}
	return CatalogStats{
		Videos:     stats.Videos,
		Downloaded: stats.Downloaded,
		Playlists:  stats.Playlists,
	}, nil
}

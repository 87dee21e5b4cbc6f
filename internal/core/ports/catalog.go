package ports

import (
	"context"

	"github.com/finchley-labs/autodj/internal/core/domain"
)

// Catalog is the search side of the streaming service.
type Catalog interface {
	// SearchTracks runs one page of a track search. Offset is in items.
	SearchTracks(ctx context.Context, query string, limit, offset int) ([]domain.Track, error)
	// SearchAlbums runs one page of an album search.
	SearchAlbums(ctx context.Context, query string, limit, offset int) ([]domain.Album, error)
	// AlbumTracks lists every track of an album, following pagination.
	AlbumTracks(ctx context.Context, albumID string) ([]domain.Track, error)
	// PlaylistTracks lists every track of a playlist, following pagination.
	PlaylistTracks(ctx context.Context, playlistID string) ([]domain.Track, error)
}

// Player is the playback side of the streaming service.
type Player interface {
	Devices(ctx context.Context) ([]domain.Device, error)
	// StartPlayback replaces the queue on the device with the given URIs.
	StartPlayback(ctx context.Context, deviceID string, uris []string) error
	// CurrentlyPlaying returns the current track; ok is false when the
	// player is idle.
	CurrentlyPlaying(ctx context.Context) (track domain.Track, ok bool, err error)
	SkipNext(ctx context.Context) error
	SkipPrevious(ctx context.Context) error
	// SaveTrack and RemoveSavedTrack are best-effort library mutations.
	SaveTrack(ctx context.Context, trackID string) error
	RemoveSavedTrack(ctx context.Context, trackID string) error
}

// Launcher starts the native player application on this machine so a
// playback device can register.
type Launcher interface {
	Launch(ctx context.Context) error
}

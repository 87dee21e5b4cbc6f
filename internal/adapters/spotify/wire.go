package spotify

import "github.com/finchley-labs/autodj/internal/core/domain"

// Wire types mirror the subset of the Spotify Web API responses this
// adapter consumes.

type wireArtist struct {
	Name string `json:"name"`
}

type wireTrack struct {
	URI     string       `json:"uri"`
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Artists []wireArtist `json:"artists"`
}

type wireAlbum struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Artists []wireArtist `json:"artists"`
}

type searchResponse struct {
	Tracks struct {
		Items []wireTrack `json:"items"`
	} `json:"tracks"`
	Albums struct {
		Items []wireAlbum `json:"items"`
	} `json:"albums"`
}

type albumTracksPage struct {
	Items []wireTrack `json:"items"`
	Next  *string     `json:"next"`
}

type playlistTracksPage struct {
	Items []struct {
		Track *wireTrack `json:"track"`
	} `json:"items"`
	Next *string `json:"next"`
}

type wireDevice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type devicesResponse struct {
	Devices []wireDevice `json:"devices"`
}

type currentlyPlayingResponse struct {
	Item      *wireTrack `json:"item"`
	IsPlaying bool       `json:"is_playing"`
}

type startPlaybackRequest struct {
	URIs []string `json:"uris"`
}

func mapTrackToDomain(wt wireTrack) domain.Track {
	artists := make([]string, 0, len(wt.Artists))
	for _, a := range wt.Artists {
		artists = append(artists, a.Name)
	}
	return domain.Track{
		URI:     wt.URI,
		ID:      wt.ID,
		Name:    wt.Name,
		Artists: artists,
	}
}

func mapAlbumToDomain(wa wireAlbum) domain.Album {
	artists := make([]string, 0, len(wa.Artists))
	for _, a := range wa.Artists {
		artists = append(artists, a.Name)
	}
	return domain.Album{
		ID:      wa.ID,
		Name:    wa.Name,
		Artists: artists,
	}
}

func mapTracksToDomain(wts []wireTrack) []domain.Track {
	tracks := make([]domain.Track, 0, len(wts))
	for _, wt := range wts {
		tracks = append(tracks, mapTrackToDomain(wt))
	}
	return tracks
}

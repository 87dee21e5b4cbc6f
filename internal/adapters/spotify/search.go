package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/finchley-labs/autodj/internal/core/domain"
)

// listPageSize is the page size used when exhausting album and playlist
// listings (the provider's per-request maximum for those endpoints).
const listPageSize = 50

// SearchTracks runs one page of a track search.
func (c *Client) SearchTracks(ctx context.Context, query string, limit, offset int) ([]domain.Track, error) {
	u := c.searchURL(query, "track", limit, offset)

	var body searchResponse
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("spotify adapter: track search %q: %w", query, err)
	}
	return mapTracksToDomain(body.Tracks.Items), nil
}

// SearchAlbums runs one page of an album search.
func (c *Client) SearchAlbums(ctx context.Context, query string, limit, offset int) ([]domain.Album, error) {
	u := c.searchURL(query, "album", limit, offset)

	var body searchResponse
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("spotify adapter: album search %q: %w", query, err)
	}

	albums := make([]domain.Album, 0, len(body.Albums.Items))
	for _, wa := range body.Albums.Items {
		albums = append(albums, mapAlbumToDomain(wa))
	}
	return albums, nil
}

// AlbumTracks lists every track of an album, following pagination to
// the end.
func (c *Client) AlbumTracks(ctx context.Context, albumID string) ([]domain.Track, error) {
	var tracks []domain.Track
	for offset := 0; ; offset += listPageSize {
		u := fmt.Sprintf("%s/albums/%s/tracks?limit=%d&offset=%d", c.baseURL, albumID, listPageSize, offset)

		var page albumTracksPage
		if err := c.getJSON(ctx, u, &page); err != nil {
			return nil, fmt.Errorf("spotify adapter: album %s tracks: %w", albumID, err)
		}

		tracks = append(tracks, mapTracksToDomain(page.Items)...)
		if page.Next == nil || len(page.Items) < listPageSize {
			return tracks, nil
		}
	}
}

// PlaylistTracks lists every track of a playlist, following pagination
// to the end. Entries whose track object is null (removed or local
// files) are dropped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	var tracks []domain.Track
	for offset := 0; ; offset += listPageSize {
		u := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d&offset=%d", c.baseURL, playlistID, listPageSize, offset)

		var page playlistTracksPage
		if err := c.getJSON(ctx, u, &page); err != nil {
			return nil, fmt.Errorf("spotify adapter: playlist %s tracks: %w", playlistID, err)
		}

		for _, item := range page.Items {
			if item.Track == nil {
				continue
			}
			tracks = append(tracks, mapTrackToDomain(*item.Track))
		}
		if page.Next == nil || len(page.Items) < listPageSize {
			return tracks, nil
		}
	}
}

func (c *Client) searchURL(query, kind string, limit, offset int) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", kind)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("market", "from_token")
	return c.baseURL + "/search?" + params.Encode()
}

package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(server *httptest.Server) *Client {
	return NewClient(server.Client(), server.URL, WithRetry(1, time.Millisecond))
}

func TestSearchTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "genre:techno" || q.Get("type") != "track" {
			t.Errorf("query params = %v", q)
		}
		if q.Get("limit") != "10" || q.Get("offset") != "20" {
			t.Errorf("pagination params = %v", q)
		}
		if q.Get("market") != "from_token" {
			t.Errorf("market = %q, want from_token", q.Get("market"))
		}

		fmt.Fprint(w, `{"tracks": {"items": [
			{"uri": "spotify:track:1", "id": "1", "name": "One", "artists": [{"name": "A"}, {"name": "B"}]},
			{"uri": "spotify:track:2", "id": "2", "name": "Two", "artists": []}
		]}}`)
	}))
	defer server.Close()

	tracks, err := testClient(server).SearchTracks(context.Background(), "genre:techno", 10, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}
	if tracks[0].PrimaryArtist() != "A" {
		t.Errorf("primary artist = %q, want A", tracks[0].PrimaryArtist())
	}
	if tracks[1].PrimaryArtist() != "" {
		t.Errorf("artist-less track should have no primary artist")
	}
}

func TestSearchAlbums(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "album" {
			t.Errorf("type = %q, want album", r.URL.Query().Get("type"))
		}
		fmt.Fprint(w, `{"albums": {"items": [
			{"id": "alb1", "name": "OST", "artists": [{"name": "Composer"}]}
		]}}`)
	}))
	defer server.Close()

	albums, err := testClient(server).SearchAlbums(context.Background(), "interstellar soundtrack", 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(albums) != 1 || albums[0].ID != "alb1" {
		t.Fatalf("albums = %v", albums)
	}
}

// TestAlbumTracks_Pagination: pages are followed until next is null.
func TestAlbumTracks_Pagination(t *testing.T) {
	page := func(start, count int, next bool) []byte {
		items := make([]map[string]any, count)
		for i := range items {
			items[i] = map[string]any{
				"uri": fmt.Sprintf("spotify:track:%d", start+i),
				"id":  fmt.Sprintf("%d", start+i),
				"name": fmt.Sprintf("Track %d", start+i),
			}
		}
		body := map[string]any{"items": items}
		if next {
			body["next"] = "https://api.spotify.com/v1/next-page"
		} else {
			body["next"] = nil
		}
		raw, _ := json.Marshal(body)
		return raw
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/albums/alb1/tracks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		switch r.URL.Query().Get("offset") {
		case "0":
			w.Write(page(0, listPageSize, true))
		case "50":
			w.Write(page(listPageSize, 7, false))
		default:
			t.Errorf("unexpected offset %s", r.URL.Query().Get("offset"))
		}
	}))
	defer server.Close()

	tracks, err := testClient(server).AlbumTracks(context.Background(), "alb1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != listPageSize+7 {
		t.Errorf("got %d tracks, want %d", len(tracks), listPageSize+7)
	}
}

// TestPlaylistTracks_NullEntriesDropped: removed and local-file entries
// come back with a null track object and are skipped.
func TestPlaylistTracks_NullEntriesDropped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"items": [
			{"track": {"uri": "spotify:track:1", "id": "1", "name": "One", "artists": [{"name": "A"}]}},
			{"track": null},
			{"track": {"uri": "spotify:track:2", "id": "2", "name": "Two", "artists": [{"name": "B"}]}}
		], "next": null}`)
	}))
	defer server.Close()

	tracks, err := testClient(server).PlaylistTracks(context.Background(), "pl1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 2 {
		t.Errorf("got %d tracks, want 2 with the null entry dropped", len(tracks))
	}
}

func TestSearchTracks_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	if _, err := testClient(server).SearchTracks(context.Background(), "q", 10, 0); err == nil {
		t.Fatal("expected an error for a 400 response")
	}
}

package services

import (
	"context"
	"strings"
	"testing"

	"github.com/finchley-labs/autodj/internal/core/domain"
)

func activeDevicePlayer() *mockPlayer {
	return &mockPlayer{devices: []domain.Device{{ID: "dev1", Name: "Desk", IsActive: true}}}
}

func TestOrchestrator_PlayHappyPath(t *testing.T) {
	catalog := &mockCatalog{tracks: map[string][]domain.Track{
		"q": makeTracks("t", 20),
	}}
	player := activeDevicePlayer()
	o := NewOrchestrator(player, nil, NewPoolBuilder(catalog, nil, nil), nil)

	result := o.Play(context.Background(), "some request", domain.Directives{
		Queries:   []string{"q"},
		QueueSize: 5,
	})

	if !result.Success {
		t.Fatalf("play failed: %s", result.Message)
	}
	if result.TrackCount != 5 {
		t.Errorf("track count = %d, want 5", result.TrackCount)
	}
	if player.startedDevice != "dev1" {
		t.Errorf("started on device %q, want dev1", player.startedDevice)
	}
	if result.FirstTrack == "" || !strings.Contains(result.FirstTrack, "–") {
		t.Errorf("first track label %q missing name–artist form", result.FirstTrack)
	}
	if len(o.LastQueries()) != 1 || o.LastRequest() != "some request" {
		t.Error("session state not updated after a successful play")
	}
}

// TestOrchestrator_SessionNonRepetition: sequential plays against the
// same catalog never queue a URI played earlier in the session.
func TestOrchestrator_SessionNonRepetition(t *testing.T) {
	catalog := &mockCatalog{tracks: map[string][]domain.Track{
		"q": makeTracks("t", 50),
	}}
	player := activeDevicePlayer()
	o := NewOrchestrator(player, nil, NewPoolBuilder(catalog, nil, nil), nil)
	d := domain.Directives{Queries: []string{"q"}, QueueSize: 10}

	for i := 0; i < 3; i++ {
		result := o.Play(context.Background(), "req", d)
		if !result.Success {
			t.Fatalf("play %d failed: %s", i, result.Message)
		}
	}

	seen := map[string]int{}
	for _, uris := range player.startedURIs {
		for _, uri := range uris {
			seen[uri]++
		}
	}
	for uri, n := range seen {
		if n > 1 {
			t.Errorf("uri %s queued %d times across the session", uri, n)
		}
	}
}

func TestOrchestrator_EmptyCatalogFails(t *testing.T) {
	catalog := &mockCatalog{tracks: map[string][]domain.Track{}}
	o := NewOrchestrator(activeDevicePlayer(), nil, NewPoolBuilder(catalog, nil, nil), nil)

	result := o.Play(context.Background(), "req", domain.Directives{
		Queries:   []string{"no such thing"},
		QueueSize: 10,
	})

	if result.Success {
		t.Fatal("expected failure for an empty catalog")
	}
	if !strings.Contains(result.Message, "no such thing") {
		t.Errorf("failure message %q does not name the queries tried", result.Message)
	}
}

func TestOrchestrator_NoDeviceNoLauncherFails(t *testing.T) {
	catalog := &mockCatalog{tracks: map[string][]domain.Track{"q": makeTracks("t", 5)}}
	player := &mockPlayer{}
	o := NewOrchestrator(player, nil, NewPoolBuilder(catalog, nil, nil), nil)

	result := o.Play(context.Background(), "req", domain.Directives{Queries: []string{"q"}, QueueSize: 5})

	if result.Success {
		t.Fatal("expected failure with no devices and no launcher")
	}
	if !strings.Contains(result.Message, "No Spotify device") {
		t.Errorf("message = %q, want a no-device explanation", result.Message)
	}
}

// TestOrchestrator_AutoLaunch: with no devices the launcher runs, a
// device registers, and playback proceeds on it.
func TestOrchestrator_AutoLaunch(t *testing.T) {
	catalog := &mockCatalog{tracks: map[string][]domain.Track{"q": makeTracks("t", 5)}}
	player := &mockPlayer{}
	launcher := &mockLauncher{player: player, device: domain.Device{ID: "launched", Name: "Laptop"}}
	o := NewOrchestrator(player, launcher, NewPoolBuilder(catalog, nil, nil), nil)

	result := o.Play(context.Background(), "req", domain.Directives{Queries: []string{"q"}, QueueSize: 3})

	if !launcher.called {
		t.Fatal("launcher was never invoked")
	}
	if !result.Success {
		t.Fatalf("play failed after launch: %s", result.Message)
	}
	if player.startedDevice != "launched" {
		t.Errorf("started on %q, want the launched device", player.startedDevice)
	}
}

// TestOrchestrator_MixedInterleave checks the strict alternation:
// 2 playlist tracks and 3 search tracks come out as
// [playlist, search, playlist, search, search].
func TestOrchestrator_MixedInterleave(t *testing.T) {
	playlist := makeTracks("p", 2)
	catalog := &mockCatalog{tracks: map[string][]domain.Track{
		"q": makeTracks("s", 20),
	}}
	player := activeDevicePlayer()
	o := NewOrchestrator(player, nil, NewPoolBuilder(catalog, nil, nil), nil)

	result := o.PlayMixed(context.Background(), "req", playlist, domain.Directives{
		Queries:   []string{"q"},
		QueueSize: 5,
	}, 0.4)

	if !result.Success {
		t.Fatalf("mixed play failed: %s", result.Message)
	}
	if len(player.startedURIs) != 1 || len(player.startedURIs[0]) != 5 {
		t.Fatalf("queued %v, want exactly 5 uris", player.startedURIs)
	}

	fromPlaylist := uriSet(playlist)
	wantPlaylist := []bool{true, false, true, false, false}
	for i, uri := range player.startedURIs[0] {
		_, isPlaylist := fromPlaylist[uri]
		if isPlaylist != wantPlaylist[i] {
			t.Errorf("position %d: playlist=%v, want %v", i, isPlaylist, wantPlaylist[i])
		}
	}
}

// TestOrchestrator_MixedExcludesPlaylistURIs: the discovery side never
// re-queues a track the playlist already contains.
func TestOrchestrator_MixedExcludesPlaylistURIs(t *testing.T) {
	playlist := makeTracks("p", 4)
	// Search results are half playlist duplicates.
	searchResults := append(append([]domain.Track{}, playlist...), makeTracks("s", 10)...)
	catalog := &mockCatalog{tracks: map[string][]domain.Track{"q": searchResults}}
	player := activeDevicePlayer()
	o := NewOrchestrator(player, nil, NewPoolBuilder(catalog, nil, nil), nil)

	result := o.PlayMixed(context.Background(), "req", playlist, domain.Directives{
		Queries:   []string{"q"},
		QueueSize: 6,
	}, 0.5)

	if !result.Success {
		t.Fatalf("mixed play failed: %s", result.Message)
	}
	fromPlaylist := uriSet(playlist)
	playlistCount := 0
	for _, uri := range player.startedURIs[0] {
		if _, ok := fromPlaylist[uri]; ok {
			playlistCount++
		}
	}
	if playlistCount != 3 {
		t.Errorf("queue holds %d playlist tracks, want exactly the sampled 3", playlistCount)
	}
}

func TestOrchestrator_ToggleLike(t *testing.T) {
	track := domain.Track{URI: "u", ID: "id1", Name: "Song", Artists: []string{"A"}}
	player := &mockPlayer{playing: track, playingOK: true}
	o := NewOrchestrator(player, nil, nil, nil)

	now, err := o.ToggleLike(context.Background())
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !now.IsLiked {
		t.Error("first toggle should like the track")
	}
	if len(player.saved) != 1 || player.saved[0] != "id1" {
		t.Errorf("saved = %v, want [id1]", player.saved)
	}

	now, err = o.ToggleLike(context.Background())
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if now.IsLiked {
		t.Error("second toggle should unlike the track")
	}
	if len(player.removed) != 1 {
		t.Errorf("removed = %v, want one removal", player.removed)
	}
}

func TestOrchestrator_CurrentTrackIdle(t *testing.T) {
	o := NewOrchestrator(&mockPlayer{}, nil, nil, nil)
	if _, ok, err := o.CurrentTrack(context.Background()); ok || err != nil {
		t.Errorf("idle player: ok=%v err=%v, want false, nil", ok, err)
	}
}

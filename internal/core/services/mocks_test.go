package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/finchley-labs/autodj/internal/core/domain"
	"github.com/finchley-labs/autodj/internal/core/ports"
)

// mockModel returns a fixed result or error and records whether it was
// consulted.
type mockModel struct {
	name   string
	result domain.Directives
	err    error
	calls  int
}

func (m *mockModel) Name() string { return m.name }

func (m *mockModel) GenerateDirectives(_ context.Context, _ string) (domain.Directives, error) {
	m.calls++
	if m.err != nil {
		return domain.Directives{}, m.err
	}
	return m.result, nil
}

// mockCatalog serves canned pages keyed by query and counts search calls.
type mockCatalog struct {
	mu          sync.Mutex
	tracks      map[string][]domain.Track // query -> full result list, paged by offset
	albums      map[string][]domain.Album
	albumTracks map[string][]domain.Track
	playlist    []domain.Track
	searchCalls int
}

var _ ports.Catalog = (*mockCatalog)(nil)

func (c *mockCatalog) SearchTracks(_ context.Context, query string, limit, offset int) ([]domain.Track, error) {
	c.mu.Lock()
	c.searchCalls++
	c.mu.Unlock()
	all := c.tracks[query]
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (c *mockCatalog) SearchAlbums(_ context.Context, query string, limit, offset int) ([]domain.Album, error) {
	all := c.albums[query]
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (c *mockCatalog) AlbumTracks(_ context.Context, albumID string) ([]domain.Track, error) {
	return c.albumTracks[albumID], nil
}

func (c *mockCatalog) PlaylistTracks(_ context.Context, _ string) ([]domain.Track, error) {
	return c.playlist, nil
}

// mockPlayer records playback commands against a fixed device list.
type mockPlayer struct {
	mu         sync.Mutex
	devices    []domain.Device
	devicesErr error
	playing    domain.Track
	playingOK  bool

	startedDevice string
	startedURIs   [][]string
	saved         []string
	removed       []string
}

var _ ports.Player = (*mockPlayer)(nil)

func (p *mockPlayer) Devices(_ context.Context) ([]domain.Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.devices, p.devicesErr
}

func (p *mockPlayer) StartPlayback(_ context.Context, deviceID string, uris []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startedDevice = deviceID
	p.startedURIs = append(p.startedURIs, uris)
	return nil
}

func (p *mockPlayer) CurrentlyPlaying(_ context.Context) (domain.Track, bool, error) {
	return p.playing, p.playingOK, nil
}

func (p *mockPlayer) SkipNext(_ context.Context) error     { return nil }
func (p *mockPlayer) SkipPrevious(_ context.Context) error { return nil }

func (p *mockPlayer) SaveTrack(_ context.Context, trackID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = append(p.saved, trackID)
	return nil
}

func (p *mockPlayer) RemoveSavedTrack(_ context.Context, trackID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, trackID)
	return nil
}

// mockLauncher flips the player's device list on launch so the
// registration poll can succeed.
type mockLauncher struct {
	player  *mockPlayer
	device  domain.Device
	called  bool
	failErr error
}

func (l *mockLauncher) Launch(_ context.Context) error {
	l.called = true
	if l.failErr != nil {
		return l.failErr
	}
	l.player.mu.Lock()
	l.player.devices = []domain.Device{l.device}
	l.player.mu.Unlock()
	return nil
}

func makeTracks(prefix string, n int) []domain.Track {
	tracks := make([]domain.Track, n)
	for i := range tracks {
		tracks[i] = domain.Track{
			URI:     fmt.Sprintf("spotify:track:%s%d", prefix, i),
			ID:      fmt.Sprintf("%s%d", prefix, i),
			Name:    fmt.Sprintf("Track %s%d", prefix, i),
			Artists: []string{"Artist " + prefix},
		}
	}
	return tracks
}

func uriSet(tracks []domain.Track) map[string]struct{} {
	set := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		set[t.URI] = struct{}{}
	}
	return set
}

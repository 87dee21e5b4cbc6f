package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/finchley-labs/autodj/internal/core/domain"
	"github.com/finchley-labs/autodj/internal/core/ports"
	"github.com/finchley-labs/autodj/internal/prefs"
)

const (
	// Pool overfetch factor: the session filter below eats into the
	// pool, so Build asks for twice the queue size.
	poolOverfetch = 2
	// Mixed-mode search overfetch: playlist URIs are excluded after the
	// fact, so the search side fetches three times its share.
	mixedSearchOverfetch = 3

	deviceWaitTimeout  = 15 * time.Second
	devicePollInterval = time.Second

	// DefaultMixRatio is the playlist share of a mixed queue.
	DefaultMixRatio = 0.5
)

// session is the in-memory playback state for one process lifetime.
// It is never persisted; a restart starts a fresh session.
type session struct {
	id          string
	lastRequest string
	lastQueries []string
	playedURIs  map[string]struct{}
	likedIDs    map[string]struct{}
}

// Orchestrator drives the full request-to-playback pipeline: plan
// results in, device resolution, pool assembly, session filtering, and
// the playback command out. All public operations return plain data and
// are safe to call from any goroutine holding no UI state.
type Orchestrator struct {
	player   ports.Player
	launcher ports.Launcher
	pool     *PoolBuilder
	store    *prefs.Store

	onTrackStarted func(domain.Track)
	rng            *rand.Rand
	sess           *session
}

// NewOrchestrator constructs an Orchestrator with a fresh session.
// launcher and store may be nil.
func NewOrchestrator(player ports.Player, launcher ports.Launcher, pool *PoolBuilder, store *prefs.Store) *Orchestrator {
	return &Orchestrator{
		player:   player,
		launcher: launcher,
		pool:     pool,
		store:    store,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sess: &session{
			id:         uuid.NewString(),
			playedURIs: make(map[string]struct{}),
			likedIDs:   make(map[string]struct{}),
		},
	}
}

// SetTrackStartedHook registers a callback invoked with the first track
// of every successful play call. The skip detector uses it to seed its
// baseline without a poll race.
func (o *Orchestrator) SetTrackStartedHook(fn func(domain.Track)) {
	o.onTrackStarted = fn
}

// LastRequest returns the request text of the most recent successful play.
func (o *Orchestrator) LastRequest() string { return o.sess.lastRequest }

// LastQueries returns the queries run by the most recent successful play.
func (o *Orchestrator) LastQueries() []string { return o.sess.lastQueries }

// SessionID identifies this playback session in logs.
func (o *Orchestrator) SessionID() string { return o.sess.id }

// Play builds a pool for the directives and starts playback. The
// request string is recorded into the preference history alongside the
// outcome.
func (o *Orchestrator) Play(ctx context.Context, request string, d domain.Directives) domain.PlayResult {
	d = d.Clamped()

	deviceID, err := o.resolveDevice(ctx)
	if err != nil {
		o.recordRequest(request, false)
		return domain.Failure(err.Error(), d.Queries)
	}

	pool := o.pool.Build(ctx, d.Queries, d.QueueSize*poolOverfetch, d.Mode)
	pool = o.filterPlayed(pool)
	if len(pool) > d.QueueSize {
		pool = pool[:d.QueueSize]
	}
	if len(pool) == 0 {
		o.recordRequest(request, false)
		return domain.Failure(fmt.Sprintf("No tracks found for queries: %v", d.Queries), d.Queries)
	}

	return o.startQueue(ctx, deviceID, request, pool, d.Queries)
}

// PlayMixed interleaves a random sample of playlist tracks with freshly
// discovered ones, strictly alternating so the playlist portion never
// clusters at the front of the queue.
func (o *Orchestrator) PlayMixed(ctx context.Context, request string, playlistTracks []domain.Track, d domain.Directives, mixRatio float64) domain.PlayResult {
	d = d.Clamped()
	if mixRatio < 0 || mixRatio > 1 {
		mixRatio = DefaultMixRatio
	}

	deviceID, err := o.resolveDevice(ctx)
	if err != nil {
		o.recordRequest(request, false)
		return domain.Failure(err.Error(), d.Queries)
	}

	nPlaylist := int(float64(d.QueueSize) * mixRatio)
	nSearch := d.QueueSize - nPlaylist

	fromPlaylist := o.samplePlaylist(playlistTracks, nPlaylist)

	playlistURIs := make(map[string]struct{}, len(playlistTracks))
	for _, t := range playlistTracks {
		playlistURIs[t.URI] = struct{}{}
	}
	discovered := o.pool.Build(ctx, d.Queries, nSearch*mixedSearchOverfetch, d.Mode)
	fromSearch := make([]domain.Track, 0, nSearch)
	for _, t := range discovered {
		if _, inPlaylist := playlistURIs[t.URI]; inPlaylist {
			continue
		}
		fromSearch = append(fromSearch, t)
		if len(fromSearch) == nSearch {
			break
		}
	}

	queue := interleave(fromPlaylist, fromSearch)
	queue = o.filterPlayed(queue)
	if len(queue) == 0 {
		o.recordRequest(request, false)
		return domain.Failure(fmt.Sprintf("No tracks found for queries: %v", d.Queries), d.Queries)
	}

	return o.startQueue(ctx, deviceID, request, queue, d.Queries)
}

func (o *Orchestrator) startQueue(ctx context.Context, deviceID, request string, queue []domain.Track, queries []string) domain.PlayResult {
	uris := make([]string, len(queue))
	for i, t := range queue {
		uris[i] = t.URI
	}

	if err := o.player.StartPlayback(ctx, deviceID, uris); err != nil {
		o.recordRequest(request, false)
		return domain.Failure(fmt.Sprintf("Playback failed: %v", err), queries)
	}

	o.sess.lastRequest = request
	o.sess.lastQueries = queries
	for _, uri := range uris {
		o.sess.playedURIs[uri] = struct{}{}
	}
	o.recordRequest(request, true)

	first := queue[0]
	if o.onTrackStarted != nil {
		o.onTrackStarted(first)
	}
	log.Printf("DEBUG orchestrator: session %s queued %d tracks", o.sess.id, len(queue))

	return domain.PlayResult{
		Success:    true,
		Message:    fmt.Sprintf("Queued %d tracks. Now playing: %s", len(queue), first.Label()),
		FirstTrack: first.Label(),
		TrackCount: len(queue),
		QueriesRun: queries,
	}
}

// resolveDevice prefers the active device, then the first registered
// one, then launches the native player and waits for it to register.
func (o *Orchestrator) resolveDevice(ctx context.Context) (string, error) {
	if id, ok := o.pickDevice(ctx); ok {
		return id, nil
	}

	if o.launcher == nil {
		return "", errors.New("No Spotify device found. Open Spotify on any device first.")
	}
	if err := o.launcher.Launch(ctx); err != nil {
		return "", fmt.Errorf("No Spotify device found and the player could not be launched: %v", err)
	}

	deadline := time.Now().Add(deviceWaitTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", errors.New("No Spotify device found before the wait was cancelled.")
		case <-time.After(devicePollInterval):
		}
		if id, ok := o.pickDevice(ctx); ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("Spotify was launched but no device registered within %s.", deviceWaitTimeout)
}

func (o *Orchestrator) pickDevice(ctx context.Context) (string, bool) {
	devices, err := o.player.Devices(ctx)
	if err != nil {
		log.Printf("WARN orchestrator: list devices: %v", err)
		return "", false
	}
	for _, d := range devices {
		if d.IsActive {
			return d.ID, true
		}
	}
	if len(devices) > 0 {
		return devices[0].ID, true
	}
	return "", false
}

// filterPlayed drops URIs already queued earlier in this session so a
// continuation never repeats a track.
func (o *Orchestrator) filterPlayed(tracks []domain.Track) []domain.Track {
	out := tracks[:0:0]
	for _, t := range tracks {
		if _, played := o.sess.playedURIs[t.URI]; played {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (o *Orchestrator) samplePlaylist(tracks []domain.Track, n int) []domain.Track {
	shuffled := make([]domain.Track, len(tracks))
	copy(shuffled, tracks)
	o.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}

// interleave alternates a and b starting with a, draining whichever
// list has remainder once the other is exhausted.
func interleave(a, b []domain.Track) []domain.Track {
	out := make([]domain.Track, 0, len(a)+len(b))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			out = append(out, a[i])
		}
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}

// CurrentTrack returns the playing track with its session-local like
// state. ok is false when the player is idle.
func (o *Orchestrator) CurrentTrack(ctx context.Context) (domain.NowPlaying, bool, error) {
	track, ok, err := o.player.CurrentlyPlaying(ctx)
	if err != nil || !ok {
		return domain.NowPlaying{}, false, err
	}
	_, liked := o.sess.likedIDs[track.ID]
	return domain.NowPlaying{Track: track, IsLiked: liked}, true, nil
}

// ToggleLike flips the saved state of the current track. The remote "is
// saved" check is restricted, so liked state is tracked client-side and
// the library mutation is best-effort.
func (o *Orchestrator) ToggleLike(ctx context.Context) (domain.NowPlaying, error) {
	track, ok, err := o.player.CurrentlyPlaying(ctx)
	if err != nil {
		return domain.NowPlaying{}, fmt.Errorf("orchestrator: current track: %w", err)
	}
	if !ok {
		return domain.NowPlaying{}, errors.New("orchestrator: nothing is playing")
	}

	if _, liked := o.sess.likedIDs[track.ID]; liked {
		delete(o.sess.likedIDs, track.ID)
		if err := o.player.RemoveSavedTrack(ctx, track.ID); err != nil {
			log.Printf("WARN orchestrator: remove saved track: %v", err)
		}
		return domain.NowPlaying{Track: track, IsLiked: false}, nil
	}

	o.sess.likedIDs[track.ID] = struct{}{}
	if err := o.player.SaveTrack(ctx, track.ID); err != nil {
		log.Printf("WARN orchestrator: save track: %v", err)
	}
	if o.store != nil {
		o.store.RecordLike(track)
	}
	return domain.NowPlaying{Track: track, IsLiked: true}, nil
}

// SkipNext advances playback to the next queued track.
func (o *Orchestrator) SkipNext(ctx context.Context) error {
	if err := o.player.SkipNext(ctx); err != nil {
		return fmt.Errorf("orchestrator: skip next: %w", err)
	}
	return nil
}

// SkipPrevious returns playback to the previous track.
func (o *Orchestrator) SkipPrevious(ctx context.Context) error {
	if err := o.player.SkipPrevious(ctx); err != nil {
		return fmt.Errorf("orchestrator: skip previous: %w", err)
	}
	return nil
}

func (o *Orchestrator) recordRequest(request string, success bool) {
	if o.store != nil && request != "" {
		o.store.RecordRequest(request, success)
	}
}

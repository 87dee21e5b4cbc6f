package prefs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/finchley-labs/autodj/internal/core/domain"
	"github.com/finchley-labs/autodj/internal/core/ports"
)

const pollInterval = 3 * time.Second

// SkipDetector infers dislike signals purely by polling playback state:
// when the playing track changes before SkipThreshold has elapsed, the
// previous track is recorded as skipped. It runs as a background
// goroutine started after playback begins and stopped on shutdown.
type SkipDetector struct {
	player    ports.Player
	store     *Store
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time

	mu        sync.Mutex
	running   bool
	stop      chan struct{}
	currentID string
	current   domain.Track
	startedAt time.Time
}

// NewSkipDetector builds a detector polling player every 3 seconds.
func NewSkipDetector(player ports.Player, store *Store) *SkipDetector {
	return &SkipDetector{
		player:    player,
		store:     store,
		interval:  pollInterval,
		threshold: SkipThreshold,
		now:       time.Now,
	}
}

// Start launches the polling loop. Calling Start while running is a no-op.
func (d *SkipDetector) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.stop = make(chan struct{})
	go d.loop(d.stop)
}

// Stop requests the loop to exit at its next poll boundary. A poll
// already inside its HTTP call completes first; there is no hard
// cancellation.
func (d *SkipDetector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	d.running = false
	close(d.stop)
}

// NotifyTrackStarted seeds the baseline when playback is started by us,
// avoiding a false skip signal on the very first observation.
func (d *SkipDetector) NotifyTrackStarted(track domain.Track) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentID = track.ID
	d.current = track
	d.startedAt = d.now()
}

func (d *SkipDetector) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A bad poll must never kill the loop.
			if err := d.check(context.Background()); err != nil {
				log.Printf("WARN skip detector: %v", err)
			}
		}
	}
}

// check is one poll tick: observe the current track, compare against
// the baseline, and emit a skip signal when the previous track played
// for less than the threshold.
func (d *SkipDetector) check(ctx context.Context) error {
	track, ok, err := d.player.CurrentlyPlaying(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	d.mu.Lock()
	if d.currentID == "" {
		// First observation ever: record the baseline, no signal.
		d.currentID = track.ID
		d.current = track
		d.startedAt = d.now()
		d.mu.Unlock()
		return nil
	}

	if track.ID == d.currentID {
		d.mu.Unlock()
		return nil
	}

	previous := d.current
	elapsed := d.now().Sub(d.startedAt)
	d.currentID = track.ID
	d.current = track
	d.startedAt = d.now()
	d.mu.Unlock()

	if elapsed < d.threshold {
		log.Printf("DEBUG skip detector: skip detected: %s (%.0fs)", previous.Label(), elapsed.Seconds())
		d.store.RecordSkip(previous)
	}
	return nil
}

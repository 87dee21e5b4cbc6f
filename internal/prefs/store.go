// Package prefs learns and stores the user's music taste over time.
//
// Two systems work together: a JSON ledger of liked/skipped artists and
// tracks that is injected into AI prompts, and an embedding taste
// centroid (an exponential moving average of liked-track vectors) used
// to rerank search candidates. Both update automatically from like
// events and from the background skip detector.
package prefs

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/finchley-labs/autodj/internal/core/domain"
	"github.com/finchley-labs/autodj/internal/core/ports"
)

// SkipThreshold is how long a track must play before a track change is
// no longer counted as a skip.
const SkipThreshold = 20 * time.Second

const (
	maxTrackHistory   = 500 // rolling window for liked/skipped tracks
	maxRequestHistory = 100 // rolling window for request history
)

// TrackEntry is one liked or skipped track in the ledger.
type TrackEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// RequestEntry records one play request and whether it found tracks.
type RequestEntry struct {
	Request   string `json:"request"`
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
}

// Profile is the persisted preference document. Field names are part of
// the on-disk format and must not change.
type Profile struct {
	LikedArtists   map[string]int `json:"liked_artists"`
	SkippedArtists map[string]int `json:"skipped_artists"`
	LikedTracks    []TrackEntry   `json:"liked_tracks"`
	SkippedTracks  []TrackEntry   `json:"skipped_tracks"`
	RequestHistory []RequestEntry `json:"request_history"`
	TasteCentroid  []float32      `json:"taste_centroid"`
	Version        int            `json:"version"`
}

func emptyProfile() *Profile {
	return &Profile{
		LikedArtists:   map[string]int{},
		SkippedArtists: map[string]int{},
		LikedTracks:    []TrackEntry{},
		SkippedTracks:  []TrackEntry{},
		RequestHistory: []RequestEntry{},
		Version:        1,
	}
}

// Store reads and writes the preference document. Every mutation
// reloads, modifies, and rewrites the whole file: last write wins
// across processes, which is acceptable at human like/skip rates. A
// process-local mutex keeps the skip-detector goroutine and UI-path
// mutations in this process from interleaving a single read-modify-write.
type Store struct {
	path     string
	embedder ports.Embedder

	// enabled gates all learning; defaults to always-on.
	enabled func() bool
	// async, when set, moves centroid updates off the caller's
	// goroutine (the worker pool is wired here). Nil means inline.
	async func(description string, positive bool)

	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates a store backed by the JSON document at path. The
// embedder may be nil; centroid updates and scoring then degrade to
// no-ops.
func NewStore(path string, embedder ports.Embedder) *Store {
	return &Store{
		path:     path,
		embedder: embedder,
		enabled:  func() bool { return true },
		now:      time.Now,
	}
}

// SetEnabledCheck installs the learning toggle, typically backed by config.
func (s *Store) SetEnabledCheck(fn func() bool) {
	if fn != nil {
		s.enabled = fn
	}
}

// SetAsyncUpdater routes centroid updates through fn instead of running
// them inline.
func (s *Store) SetAsyncUpdater(fn func(description string, positive bool)) {
	s.async = fn
}

// Enabled reports whether preference learning is switched on.
func (s *Store) Enabled() bool {
	return s.enabled()
}

// Load reads the profile from disk. A missing, empty, or corrupt file
// yields an empty profile rather than an error so the app stays usable
// with a damaged ledger.
func (s *Store) Load() *Profile {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN prefs: could not load preferences: %v", err)
		}
		return emptyProfile()
	}

	p := emptyProfile()
	if err := json.Unmarshal(raw, p); err != nil {
		log.Printf("WARN prefs: could not parse preferences: %v", err)
		return emptyProfile()
	}
	// Merge with defaults so documents written by older versions still
	// carry every key.
	if p.LikedArtists == nil {
		p.LikedArtists = map[string]int{}
	}
	if p.SkippedArtists == nil {
		p.SkippedArtists = map[string]int{}
	}
	return p
}

func (s *Store) save(p *Profile) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		log.Printf("WARN prefs: could not create preferences dir: %v", err)
		return
	}
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		log.Printf("WARN prefs: could not encode preferences: %v", err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		log.Printf("WARN prefs: could not save preferences: %v", err)
	}
}

// mutate runs fn against a freshly loaded profile and writes the result
// back under the store mutex.
func (s *Store) mutate(fn func(p *Profile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.Load()
	fn(p)
	s.save(p)
}

// RecordLike increments the artist counter, appends a deduplicated
// ledger entry, and schedules a positive centroid update.
func (s *Store) RecordLike(track domain.Track) {
	if !s.enabled() {
		return
	}

	artist := artistOrUnknown(track)
	entry := TrackEntry{
		ID:          track.ID,
		Name:        track.Name,
		Artist:      artist,
		Description: track.Name + " by " + artist,
		Timestamp:   s.now().Format(time.RFC3339),
	}

	s.mutate(func(p *Profile) {
		p.LikedArtists[artist]++
		p.LikedTracks = appendBounded(p.LikedTracks, entry, maxTrackHistory)
	})

	s.dispatchCentroidUpdate(entry.Description, true)
}

// RecordSkip increments the artist counter and appends a deduplicated
// ledger entry. No centroid update happens on this path; negative
// nudging is only applied where UpdateCentroid is invoked explicitly.
func (s *Store) RecordSkip(track domain.Track) {
	if !s.enabled() {
		return
	}

	artist := artistOrUnknown(track)
	entry := TrackEntry{
		ID:        track.ID,
		Name:      track.Name,
		Artist:    artist,
		Timestamp: s.now().Format(time.RFC3339),
	}

	s.mutate(func(p *Profile) {
		p.SkippedArtists[artist]++
		p.SkippedTracks = appendBounded(p.SkippedTracks, entry, maxTrackHistory)
	})
}

// RecordRequest appends a play request and its outcome to the bounded
// request history.
func (s *Store) RecordRequest(request string, success bool) {
	if !s.enabled() {
		return
	}
	entry := RequestEntry{
		Request:   request,
		Success:   success,
		Timestamp: s.now().Format(time.RFC3339),
	}
	s.mutate(func(p *Profile) {
		p.RequestHistory = append(p.RequestHistory, entry)
		if len(p.RequestHistory) > maxRequestHistory {
			p.RequestHistory = p.RequestHistory[len(p.RequestHistory)-maxRequestHistory:]
		}
	})
}

func (s *Store) dispatchCentroidUpdate(description string, positive bool) {
	if s.async != nil {
		s.async(description, positive)
		return
	}
	s.UpdateCentroid(description, positive)
}

func artistOrUnknown(track domain.Track) string {
	if a := track.PrimaryArtist(); a != "" {
		return a
	}
	return "Unknown"
}

// appendBounded appends entry unless its id is already present, then
// trims to the most recent max entries.
func appendBounded(entries []TrackEntry, entry TrackEntry, max int) []TrackEntry {
	for _, existing := range entries {
		if existing.ID == entry.ID {
			return entries
		}
	}
	entries = append(entries, entry)
	if len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	return entries
}

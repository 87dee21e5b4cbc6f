package services

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/finchley-labs/autodj/internal/core/domain"
	"github.com/finchley-labs/autodj/internal/core/ports"
	"github.com/finchley-labs/autodj/internal/prefs"
)

const (
	playlistSampleSize    = 30
	playlistFallbackSize  = 8
	preferenceArtistLimit = 10
)

// Planner turns a natural-language request into playback directives by
// walking a model chain: cloud candidates in priority order, then the
// local model, then deterministic keyword stripping. Plan calls never
// fail; the fallback always produces something playable.
type Planner struct {
	cloud []ports.DirectiveModel
	local ports.DirectiveModel // nil when no local endpoint is configured
	rng   *rand.Rand
}

// NewPlanner constructs a Planner. cloud may be empty and local may be
// nil; with neither, every plan resolves through the keyword fallback.
func NewPlanner(cloud []ports.DirectiveModel, local ports.DirectiveModel) *Planner {
	return &Planner{
		cloud: cloud,
		local: local,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// PlanFresh plans a brand-new request. The listener's taste digest is
// folded into the prompt as a tiebreaker only.
func (pl *Planner) PlanFresh(ctx context.Context, request string, profile *prefs.Profile, localOnly bool) domain.Directives {
	var listenerContext string
	if profile != nil {
		listenerContext = profile.BuildContext(preferenceArtistLimit)
	}
	if d, ok := pl.runChain(ctx, freshPrompt(request, listenerContext), localOnly); ok {
		return d.Clamped()
	}
	return fallbackDirectives(request)
}

// PlanContinuation plans a "more like that" follow-up. The queue size
// is pinned to the default regardless of what the model asked for, so
// continuation batches stay predictably sized.
func (pl *Planner) PlanContinuation(ctx context.Context, request string, previousQueries []string, localOnly bool) domain.Directives {
	if d, ok := pl.runChain(ctx, continuationPrompt(request, previousQueries), localOnly); ok {
		d.QueueSize = domain.DefaultQueueSize
		return d.Clamped()
	}
	return fallbackDirectives(request)
}

// PlanFromPlaylist plans queries seeded by an external playlist. A
// shuffled sample bounds the prompt; if every AI tier fails, the
// fallback queries are a handful of the playlist's own artist names.
func (pl *Planner) PlanFromPlaylist(ctx context.Context, playlistTracks []domain.Track, intent string, localOnly bool) domain.Directives {
	sample := pl.sampleTracks(playlistTracks, playlistSampleSize)
	if d, ok := pl.runChain(ctx, playlistPrompt(intent, sample), localOnly); ok {
		return d.Clamped()
	}

	artists := pl.shuffledArtists(playlistTracks, playlistFallbackSize)
	if len(artists) == 0 {
		return fallbackDirectives(intent)
	}
	return domain.Directives{
		Reasoning: "All AI models unavailable. Searching by playlist artists.",
		Queries:   artists,
		QueueSize: domain.DefaultQueueSize,
	}.Clamped()
}

// runChain walks the configured tiers and returns the first valid
// directives. Quota (429) and model-not-found (404) responses skip to
// the next candidate silently; anything else is logged and skipped.
func (pl *Planner) runChain(ctx context.Context, prompt string, localOnly bool) (domain.Directives, bool) {
	if !localOnly {
		for _, m := range pl.cloud {
			d, err := m.GenerateDirectives(ctx, prompt)
			if err == nil {
				return d, true
			}
			if skippable(err) {
				continue
			}
			log.Printf("WARN planner: %s: %v", m.Name(), err)
		}
	}
	if pl.local != nil {
		d, err := pl.local.GenerateDirectives(ctx, prompt)
		if err == nil {
			return d, true
		}
		log.Printf("WARN planner: %s: %v", pl.local.Name(), err)
	}
	return domain.Directives{}, false
}

// skippable reports whether a model error is a routine availability
// problem. The string checks cover backends that surface raw status
// text instead of a typed error.
func skippable(err error) bool {
	if errors.Is(err, ports.ErrModelUnavailable) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "404")
}

func fallbackDirectives(request string) domain.Directives {
	return domain.Directives{
		Reasoning: "All AI models unavailable. Using keyword fallback.",
		Queries:   []string{keywordFallback(request)},
		QueueSize: domain.DefaultQueueSize,
	}.Clamped()
}

// sampleTracks returns up to n tracks drawn without replacement.
func (pl *Planner) sampleTracks(tracks []domain.Track, n int) []domain.Track {
	shuffled := make([]domain.Track, len(tracks))
	copy(shuffled, tracks)
	pl.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}

// shuffledArtists returns up to n unique primary artist names from the
// tracks, in random order.
func (pl *Planner) shuffledArtists(tracks []domain.Track, n int) []string {
	seen := make(map[string]struct{})
	var artists []string
	for _, t := range tracks {
		name := t.PrimaryArtist()
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		artists = append(artists, name)
	}
	pl.rng.Shuffle(len(artists), func(i, j int) {
		artists[i], artists[j] = artists[j], artists[i]
	})
	if len(artists) > n {
		artists = artists[:n]
	}
	return artists
}

package prefs

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/finchley-labs/autodj/internal/core/domain"
	"github.com/finchley-labs/autodj/internal/core/ports"
)

// Exponential moving average parameters for the taste centroid. Likes
// pull the centroid toward the new vector fast; skips push it gently
// away so a single skip never overcorrects the profile.
const (
	centroidDecay    = 0.9
	alphaPositive    = 0.1
	alphaNegative    = -0.05
	skipArtistFactor = 0.3 // ranking penalty, not an exclusion
	neutralScore     = 0.5
)

// UpdateCentroid folds one track description into the taste centroid.
// A missing embedder or a failed embedding is a silent no-op.
func (s *Store) UpdateCentroid(description string, positive bool) {
	if !s.enabled() || s.embedder == nil || !s.embedder.Available() {
		return
	}

	vec, err := s.embedder.Embed(context.Background(), description)
	if err != nil {
		log.Printf("WARN prefs: embedding error: %v", err)
		return
	}

	s.mutate(func(p *Profile) {
		p.TasteCentroid = foldIntoCentroid(p.TasteCentroid, vec, positive)
	})
}

func foldIntoCentroid(centroid, vec []float32, positive bool) []float32 {
	if len(centroid) == 0 {
		out := make([]float32, len(vec))
		copy(out, vec)
		return out
	}
	if len(centroid) != len(vec) {
		// Dimensionality is fixed by the embedding model once the
		// centroid exists; a mismatched vector means the backend
		// changed models and cannot be folded in.
		log.Printf("WARN prefs: embedding dimension %d does not match centroid %d", len(vec), len(centroid))
		return centroid
	}

	alpha := float32(alphaPositive)
	if !positive {
		alpha = float32(alphaNegative)
	}
	out := make([]float32, len(centroid))
	for i := range centroid {
		out[i] = centroidDecay*centroid[i] + alpha*vec[i]
	}
	return out
}

// dot is the cosine similarity of two pre-normalized vectors.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// ScoreTracks reranks tracks by similarity to the taste centroid. Each
// track's score starts from embedding similarity mapped into [0,1] and
// is multiplied by skipArtistFactor when its primary artist is in the
// skipped set. Ties keep their original relative order. With no
// centroid the input is returned unchanged.
func ScoreTracks(ctx context.Context, tracks []domain.Track, p *Profile, embedder ports.Embedder) []domain.Track {
	if len(p.TasteCentroid) == 0 {
		return tracks
	}

	scores := make([]float64, len(tracks))
	for i, track := range tracks {
		scores[i] = scoreTrack(ctx, track, p, embedder)
	}

	// Sort indices rather than tracks so scores stay aligned.
	idx := make([]int, len(tracks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	ranked := make([]domain.Track, len(tracks))
	for i, j := range idx {
		ranked[i] = tracks[j]
	}
	return ranked
}

func scoreTrack(ctx context.Context, track domain.Track, p *Profile, embedder ports.Embedder) float64 {
	score := neutralScore
	if embedder != nil && embedder.Available() {
		if vec, err := embedder.Embed(ctx, track.Description()); err == nil && len(vec) == len(p.TasteCentroid) {
			sim := float64(dot(p.TasteCentroid, vec))
			score = (sim + 1) / 2
		} else if err != nil {
			log.Printf("WARN prefs: scoring embed failed for %q: %v", track.Description(), err)
		}
	}

	if _, skipped := p.SkippedArtists[track.PrimaryArtist()]; skipped {
		score *= skipArtistFactor
	}
	return score
}

// BuildContext renders a natural-language digest of the profile for
// injection into AI prompts: top liked artists plus artists skipped at
// least twice. Returns "" when nothing has been recorded yet.
func (p *Profile) BuildContext(maxArtists int) string {
	var parts []string

	liked := sortedByCount(p.LikedArtists, 0)
	if len(liked) > 0 {
		if len(liked) > maxArtists {
			liked = liked[:maxArtists]
		}
		parts = append(parts, "Artists they have liked before: "+strings.Join(liked, ", "))
	}

	// Require two skips before an artist counts, to avoid single-skip noise.
	skipped := sortedByCount(p.SkippedArtists, 2)
	if len(skipped) > 0 {
		if len(skipped) > 5 {
			skipped = skipped[:5]
		}
		parts = append(parts, "Artists they tend to skip: "+strings.Join(skipped, ", "))
	}

	if len(parts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n[LISTENER HISTORY — for context only]\n")
	for _, part := range parts {
		fmt.Fprintf(&b, "  %s\n", part)
	}
	b.WriteString("  IMPORTANT: The user's request above always takes priority over this history.\n")
	b.WriteString("  Only use this history if the request is vague or genre-neutral.\n")
	b.WriteString("  If the request specifies a genre or mood, follow it exactly — even if it\n")
	b.WriteString("  differs from their usual taste. People intentionally listen to new things.\n")
	return b.String()
}

func sortedByCount(counts map[string]int, minCount int) []string {
	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for name, count := range counts {
		if count >= minCount {
			pairs = append(pairs, pair{name, count})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.name
	}
	return names
}

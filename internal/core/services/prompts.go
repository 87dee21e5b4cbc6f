package services

import (
	"fmt"
	"strings"

	"github.com/finchley-labs/autodj/internal/core/domain"
)

// The three prompt variants share one output contract so every model
// tier can be parsed by the same code path.

const directivesContract = `Output JSON only, matching exactly:
{ "reasoning": "short explanation of your choices", "queries": ["query 1", "query 2", ...], "queue_size": 40, "search_mode": "track" }

Rules for queries:
1. Produce between 3 and 8 distinct queries that together cover the request.
2. Use 'genre:' only for clear genres (e.g. dnb, techno, jazz, classical).
3. Use 'year:' for era requests (e.g. year:1990-1995).
4. For moods (relaxing, aggressive, dark), do NOT use 'genre:' - use keywords only.
5. Set "search_mode" to "album" only when the request is for a film, game, or show soundtrack; otherwise "track".

Examples:
  "relaxing coding music"  ->  ["lofi focus chill", "ambient instrumental", "downtempo study"]
  "90s house music"        ->  ["genre:house year:1990-1999", "classic house anthems", "deep house year:1990-1999"]`

func freshPrompt(request, listenerContext string) string {
	var b strings.Builder
	b.WriteString("You are a Spotify search expert. Convert the user's request into high-performing search queries.\n\n")
	fmt.Fprintf(&b, "User Request: %q\n\n", request)
	if listenerContext != "" {
		b.WriteString(listenerContext)
		b.WriteString("\n")
	}
	b.WriteString(directivesContract)
	return b.String()
}

func continuationPrompt(request string, previousQueries []string) string {
	var b strings.Builder
	b.WriteString("You are a Spotify search expert. The listener wants MORE music in the same vein as their earlier request.\n\n")
	fmt.Fprintf(&b, "Original Request: %q\n\n", request)
	b.WriteString("Queries already used (do NOT repeat any of these, find fresh angles on the same vibe):\n")
	for _, q := range previousQueries {
		fmt.Fprintf(&b, "  - %s\n", q)
	}
	b.WriteString("\n")
	b.WriteString(directivesContract)
	return b.String()
}

func playlistPrompt(intent string, sample []domain.Track) string {
	var b strings.Builder
	b.WriteString("You are a Spotify search expert. The listener wants tracks SIMILAR to a playlist they like, but not the same tracks.\n\n")
	if intent != "" {
		fmt.Fprintf(&b, "Listener Intent: %q\n\n", intent)
	}
	b.WriteString("Sample of the playlist:\n")
	for _, t := range sample {
		fmt.Fprintf(&b, "  - %s\n", t.Label())
	}
	b.WriteString("\nProduce queries that find similar but distinct tracks: same genres, adjacent artists, the same era or mood. Avoid querying for the sampled tracks themselves.\n\n")
	b.WriteString(directivesContract)
	return b.String()
}

package services

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/finchley-labs/autodj/internal/core/domain"
	"github.com/finchley-labs/autodj/internal/core/ports"
	"github.com/finchley-labs/autodj/internal/prefs"
)

const (
	searchPageSize = 10
	maxSearchPages = 5
)

// PoolBuilder assembles a candidate track pool from a set of search
// queries. Best-effort throughout: individual query failures are logged
// and the pool is built from whatever the rest returned.
type PoolBuilder struct {
	catalog  ports.Catalog
	store    *prefs.Store
	embedder ports.Embedder
	rng      *rand.Rand
}

// NewPoolBuilder constructs a PoolBuilder. store and embedder may be
// nil; without them the pool is shuffled instead of taste-ranked.
func NewPoolBuilder(catalog ports.Catalog, store *prefs.Store, embedder ports.Embedder) *PoolBuilder {
	return &PoolBuilder{
		catalog:  catalog,
		store:    store,
		embedder: embedder,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Build runs every query against the catalog, dedupes by URI keeping
// the first occurrence, orders the pool (taste rank when a centroid
// exists, uniform shuffle otherwise), and truncates to targetCount.
func (b *PoolBuilder) Build(ctx context.Context, queries []string, targetCount int, mode domain.SearchMode) []domain.Track {
	var pool []domain.Track
	if mode == domain.SearchAlbums {
		pool = b.collectAlbumTracks(ctx, queries)
	} else {
		pool = b.collectSearchTracks(ctx, queries)
	}

	pool = dedupeByURI(pool)
	pool = b.order(ctx, pool, mode)

	if len(pool) > targetCount {
		pool = pool[:targetCount]
	}
	return pool
}

// collectSearchTracks pages through each query sequentially. A short
// page means the catalog has no more results for that query.
func (b *PoolBuilder) collectSearchTracks(ctx context.Context, queries []string) []domain.Track {
	var pool []domain.Track
	for _, query := range queries {
		if query == "" {
			continue
		}
		for page := 0; page < maxSearchPages; page++ {
			tracks, err := b.catalog.SearchTracks(ctx, query, searchPageSize, page*searchPageSize)
			if err != nil {
				log.Printf("WARN pool builder: search %q page %d: %v", query, page, err)
				break
			}
			pool = append(pool, tracks...)
			if len(tracks) < searchPageSize {
				break
			}
		}
	}
	return pool
}

// collectAlbumTracks takes the top-ranked album per query and queues
// its full track listing. Queries that match no album fall back to a
// plain track search.
func (b *PoolBuilder) collectAlbumTracks(ctx context.Context, queries []string) []domain.Track {
	seenAlbums := make(map[string]struct{})
	var pool []domain.Track
	for _, query := range queries {
		if query == "" {
			continue
		}
		albums, err := b.catalog.SearchAlbums(ctx, query, 1, 0)
		if err != nil {
			log.Printf("WARN pool builder: album search %q: %v", query, err)
			continue
		}
		if len(albums) == 0 {
			pool = append(pool, b.collectSearchTracks(ctx, []string{query})...)
			continue
		}

		album := albums[0]
		if _, dup := seenAlbums[album.ID]; dup {
			continue
		}
		seenAlbums[album.ID] = struct{}{}

		tracks, err := b.catalog.AlbumTracks(ctx, album.ID)
		if err != nil {
			log.Printf("WARN pool builder: album tracks %q: %v", album.Name, err)
			continue
		}
		pool = append(pool, tracks...)
	}
	return pool
}

// order ranks the pool by taste when learning is on and a centroid
// exists. Album pools are always shuffled; track order inside one
// soundtrack is not a preference signal.
func (b *PoolBuilder) order(ctx context.Context, pool []domain.Track, mode domain.SearchMode) []domain.Track {
	if mode != domain.SearchAlbums && b.store != nil && b.store.Enabled() {
		profile := b.store.Load()
		if len(profile.TasteCentroid) > 0 {
			return prefs.ScoreTracks(ctx, pool, profile, b.embedder)
		}
	}
	b.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}

func dedupeByURI(tracks []domain.Track) []domain.Track {
	seen := make(map[string]struct{}, len(tracks))
	out := tracks[:0:0]
	for _, t := range tracks {
		if _, dup := seen[t.URI]; dup {
			continue
		}
		seen[t.URI] = struct{}{}
		out = append(out, t)
	}
	return out
}

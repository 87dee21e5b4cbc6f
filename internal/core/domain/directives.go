package domain

// SearchMode selects which catalog index a query runs against.
type SearchMode string

const (
	SearchTracks SearchMode = "track"
	SearchAlbums SearchMode = "album"
)

const (
	MinQueueSize     = 1
	MaxQueueSize     = 100
	DefaultQueueSize = 40
)

// Directives is the structured output of the query-generation stage:
// reasoning text, targeted search queries, and the desired queue size.
// A Directives value with no non-empty query is invalid and never
// crosses the planner boundary.
type Directives struct {
	Reasoning string
	Queries   []string
	QueueSize int
	Mode      SearchMode
}

// Valid reports whether the directives contain at least one non-empty query.
func (d Directives) Valid() bool {
	for _, q := range d.Queries {
		if q != "" {
			return true
		}
	}
	return false
}

// Clamped returns a copy with QueueSize forced into [MinQueueSize,
// MaxQueueSize] and an unset mode defaulted to track search.
func (d Directives) Clamped() Directives {
	if d.QueueSize < MinQueueSize {
		d.QueueSize = MinQueueSize
	}
	if d.QueueSize > MaxQueueSize {
		d.QueueSize = MaxQueueSize
	}
	if d.Mode != SearchAlbums {
		d.Mode = SearchTracks
	}
	return d
}

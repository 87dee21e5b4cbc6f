package domain

// Track is a catalog track as returned by the streaming service.
// Tracks are treated as immutable once fetched; URI is the only field
// used as an identity key.
type Track struct {
	URI     string
	ID      string
	Name    string
	Artists []string // ordered, first entry is the primary artist
}

// PrimaryArtist returns the first credited artist, or "" for an
// artist-less track.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Label renders the track for display, e.g. "Windowlicker – Aphex Twin".
func (t Track) Label() string {
	artist := t.PrimaryArtist()
	if artist == "" {
		artist = "Unknown Artist"
	}
	return t.Name + " – " + artist
}

// Description renders the track for embedding, e.g. "Windowlicker by Aphex Twin".
func (t Track) Description() string {
	return t.Name + " by " + t.PrimaryArtist()
}

// Album is a catalog album search result.
type Album struct {
	ID      string
	Name    string
	Artists []string
}

// Device is a playback target registered with the streaming service.
type Device struct {
	ID       string
	Name     string
	IsActive bool
}

// NowPlaying is the currently playing track plus the locally tracked
// like state. The remote "is saved" check is assumed restricted, so the
// session tracks likes client-side.
type NowPlaying struct {
	Track   Track
	IsLiked bool
}

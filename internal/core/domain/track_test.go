package domain

import "testing"

func TestTrackLabels(t *testing.T) {
	track := Track{Name: "Windowlicker", Artists: []string{"Aphex Twin", "Other"}}
	if got := track.Label(); got != "Windowlicker – Aphex Twin" {
		t.Errorf("Label() = %q", got)
	}
	if got := track.Description(); got != "Windowlicker by Aphex Twin" {
		t.Errorf("Description() = %q", got)
	}

	orphan := Track{Name: "Untitled"}
	if got := orphan.Label(); got != "Untitled – Unknown Artist" {
		t.Errorf("Label() without artists = %q", got)
	}
}

func TestDirectivesValid(t *testing.T) {
	tests := []struct {
		name    string
		queries []string
		want    bool
	}{
		{"nil", nil, false},
		{"all empty", []string{"", ""}, false},
		{"one usable", []string{"", "techno"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Directives{Queries: tt.queries}
			if d.Valid() != tt.want {
				t.Errorf("Valid() = %v, want %v", d.Valid(), tt.want)
			}
		})
	}
}

func TestDirectivesClamped(t *testing.T) {
	tests := []struct {
		name     string
		in       int
		want     int
		mode     SearchMode
		wantMode SearchMode
	}{
		{"too big", 500, MaxQueueSize, "", SearchTracks},
		{"too small", -1, MinQueueSize, "track", SearchTracks},
		{"kept", 40, 40, "album", SearchAlbums},
		{"junk mode normalized", 10, 10, "playlist", SearchTracks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Directives{QueueSize: tt.in, Mode: tt.mode}.Clamped()
			if got.QueueSize != tt.want {
				t.Errorf("QueueSize = %d, want %d", got.QueueSize, tt.want)
			}
			if got.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", got.Mode, tt.wantMode)
			}
		})
	}
}

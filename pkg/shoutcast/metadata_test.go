package shoutcast

import (
	"testing"
	"time"
)

func TestMetadata_Next(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	later := start.Add(time.Minute)

	old := NewMetadata(start)
	old.StationName = "Radio Example"
	old.StationURL = "http://radio.example.com"
	old.Index = 4

	tests := []struct {
		raw    string
		artist string
		title  string
	}{
		{"Michael Jackson - Thriller", "Michael Jackson", "Thriller"},
		{"AB - CD", "AB", "CD"},
		{"Station jingle", "", "Station jingle"},
		{"A - B", "", "A - B"},
		{"", "", ""},
		{"Earth, Wind - Fire - September", "Earth, Wind - Fire", "September"},
		{"Live at\nWembley - Intro", "Live at\nWembley", "Intro"},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			next := old.Next(later, 1234, tc.raw)

			if next.Index != 5 {
				t.Errorf("expected index 5, got %d", next.Index)
			}
			if next.Offset != 1234 {
				t.Errorf("expected offset 1234, got %d", next.Offset)
			}
			if !next.Created.Equal(later) {
				t.Errorf("expected fresh timestamp, got %v", next.Created)
			}
			if next.Artist != tc.artist || next.Title != tc.title {
				t.Errorf("expected %q/%q, got %q/%q", tc.artist, tc.title, next.Artist, next.Title)
			}
			if next.StationName != old.StationName || next.StationURL != old.StationURL {
				t.Error("station fields did not carry over")
			}
		})
	}

	if old.Index != 4 || !old.Created.Equal(start) {
		t.Error("previous snapshot was modified")
	}
}

func TestMetadata_FirstIndexIsZero(t *testing.T) {
	seed := NewMetadata(time.Now())
	if seed.HasTrack() {
		t.Fatal("seed must not have a track")
	}

	first := seed.Next(time.Now(), 0, "Some - Thing")
	if first.Index != 0 || !first.HasTrack() {
		t.Errorf("expected index 0, got %d", first.Index)
	}

	if second := first.Next(time.Now(), 10, "Other - Song"); second.Index != 1 {
		t.Errorf("expected index 1, got %d", second.Index)
	}
}

func TestMetadata_String(t *testing.T) {
	m := Metadata{Artist: "Artist", Title: "Title", StationName: "Station"}
	if got := m.String(); got != "Artist - Title - Station" {
		t.Errorf("unexpected %q", got)
	}
}

package recorder

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zachfi/radiorec/pkg/shoutcast"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func track(index int, artist, title string) *shoutcast.Metadata {
	md := shoutcast.NewMetadata(time.Now())
	md.Index = index
	md.Artist = artist
	md.Title = title
	md.StationName = "Radio Smiley"
	return &md
}

func TestGeneratorSanitizesValues(t *testing.T) {
	dir := t.TempDir()
	g := &Generator{Dir: dir, Format: "${radioName}${suffix}"}

	u := mustURL(t, "http://example.com")
	// a name that cannot come from a URL, so set it on the context
	u.Host = "Radio Smiley?:()"
	u.Path = "/#"

	p, err := g.Generate(NameContext{URL: u, MimeType: shoutcast.AudioMPEG, Known: true}, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(dir, "Radio Smiley______.mp3")
	if p != want {
		t.Errorf("path = %q, want %q", p, want)
	}
}

func TestGeneratorNoPath(t *testing.T) {
	dir := t.TempDir()
	nc := NameContext{ID: 1, URL: mustURL(t, "http://radio.example/live"), MimeType: shoutcast.AudioMPEG, Known: true}

	g := &Generator{Dir: dir, Format: "${id}${suffix}", RequireMetadata: true}

	p, err := g.Generate(nc, nil)
	if err != nil || p != "" {
		t.Errorf("without metadata got %q, %v", p, err)
	}

	seed := shoutcast.NewMetadata(time.Now())
	p, err = g.Generate(nc, &seed)
	if err != nil || p != "" {
		t.Errorf("without track got %q, %v", p, err)
	}

	nc.Known = false
	g.RequireMetadata = false
	p, err = g.Generate(nc, track(1, "a", "b"))
	if err != nil || p != "" {
		t.Errorf("unknown content type got %q, %v", p, err)
	}
}

func TestGeneratorCollisions(t *testing.T) {
	dir := t.TempDir()
	nc := NameContext{ID: 7, URL: mustURL(t, "http://radio.example/live"), MimeType: shoutcast.AudioMPEG, Known: true}
	g := &Generator{Dir: dir, Format: "${id}${suffix}"}

	want := []string{"7.mp3", "7-1.mp3", "7-2.mp3"}
	for _, name := range want {
		p, err := g.Generate(nc, nil)
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(p) != name {
			t.Fatalf("got %q, want %q", filepath.Base(p), name)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGeneratorDefaultTemplates(t *testing.T) {
	dir := t.TempDir()
	nc := NameContext{ID: 1, URL: mustURL(t, "http://radio.example/live/"), MimeType: shoutcast.AudioOGG, Known: true}

	cases := []struct {
		name   string
		format string
		md     *shoutcast.Metadata
		want   string
	}{
		{
			name:   "per track",
			format: defaultNameFormat,
			md:     track(3, "Daft Punk", "Around the World"),
			want:   "Radio Smiley/003.Daft Punk - Around the World.ogg",
		},
		{
			name:   "title only",
			format: defaultNameFormat,
			md:     track(12, "", "Station jingle"),
			want:   "Radio Smiley/012.unknown - Station jingle.ogg",
		},
		{
			name:   "padded values",
			format: defaultNameFormat,
			md:     track(2, " Artist ", " Title "),
			want:   "Radio Smiley/002.Artist - Title.ogg",
		},
		{
			name:   "single file without metadata",
			format: defaultNoNameFormat,
			want:   "radio.example_live/000.ogg",
		},
		{
			name:   "missing field without default",
			format: "${stationHost}/${title}${suffix}",
			md:     track(1, "a", ""),
			want:   "unknown/unknown.ogg",
		},
		{
			name:   "default only for names not known",
			format: "${artist:-anonymous} ${genre:-misc} ${mood}${suffix}",
			md:     track(4, "", "Jingle"),
			want:   "unknown misc unknown.ogg",
		},
		{
			name:   "leading punctuation",
			format: "${artist}${suffix}",
			md:     track(1, " -?:Mr. X", "y"),
			want:   "_Mr. X.ogg",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := &Generator{Dir: dir, Format: tc.format}
			p, err := g.Generate(nc, tc.md)
			if err != nil {
				t.Fatal(err)
			}
			if want := filepath.Join(dir, tc.want); p != want {
				t.Errorf("path = %q, want %q", p, want)
			}
		})
	}
}

func TestGeneratorASCII(t *testing.T) {
	dir := t.TempDir()
	nc := NameContext{URL: mustURL(t, "http://radio.example/"), MimeType: shoutcast.AudioMPEG, Known: true}
	g := &Generator{Dir: dir, Format: "${artist} - ${title}${suffix}", ASCII: true}

	p, err := g.Generate(nc, track(1, "Motörhead", "Ace of Spades"))
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(p); got != "Motorhead - Ace of Spades.mp3" {
		t.Errorf("name = %q", got)
	}
}

func TestGeneratorFieldLength(t *testing.T) {
	dir := t.TempDir()
	nc := NameContext{URL: mustURL(t, "http://radio.example/"), MimeType: shoutcast.AudioMPEG, Known: true}
	g := &Generator{Dir: dir, Format: "${title}${suffix}"}

	p, err := g.Generate(nc, track(1, "", strings.Repeat("é", 300)))
	if err != nil {
		t.Fatal(err)
	}
	name := strings.TrimSuffix(filepath.Base(p), ".mp3")
	if n := len([]rune(name)); n != maxFieldLength {
		t.Errorf("title has %d runes, want %d", n, maxFieldLength)
	}
}

func TestGeneratorOutsideTargetDir(t *testing.T) {
	dir := t.TempDir()
	nc := NameContext{URL: mustURL(t, "http://radio.example/"), MimeType: shoutcast.AudioMPEG, Known: true}

	cases := []struct {
		format string
		title  string
	}{
		{"../${title}${suffix}", "escape"},
		{"${title}/../../x${suffix}", "a"},
		{"${title}/x${suffix}", ".."},
	}

	for _, tc := range cases {
		g := &Generator{Dir: dir, Format: tc.format}
		_, err := g.Generate(nc, track(1, "", tc.title))
		if !errors.Is(err, ErrOutsideTargetDir) {
			t.Errorf("%s with %q: err = %v", tc.format, tc.title, err)
		}
	}

	// separators in values never leave the directory
	g := &Generator{Dir: dir, Format: "${title}${suffix}"}
	p, err := g.Generate(nc, track(1, "", "../../etc/passwd"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(p) != dir {
		t.Errorf("path %q left %q", p, dir)
	}
}

package recorder

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fiam/gounidecode/unidecode"
	"github.com/pkg/errors"

	"github.com/zachfi/radiorec/pkg/shoutcast"
)

const (
	// rendered for known placeholders without a value
	unknownValue = "unknown"

	maxFieldLength = 192
)

// fields are the placeholders a template can refer to.
var fields = map[string]bool{
	"id":                     true,
	"suffix":                 true,
	"index":                  true,
	"artist":                 true,
	"title":                  true,
	"stationName":            true,
	"stationUrl":             true,
	"stationHost":            true,
	"radioName":              true,
	"radioHost":              true,
	"radioUri":               true,
	"stationNameOrRadioName": true,
}

var (
	leadingPunctuation = regexp.MustCompile(`^[ ?:\-]+`)
	illegalCharacters  = regexp.MustCompile(`[/\\:|?*"<>$()#\x00-\x1f]`)
)

// NameContext is what a file name template can refer to besides the track.
type NameContext struct {
	ID       int
	URL      *url.URL
	MimeType shoutcast.MimeType
	Known    bool
}

// Generator renders file names from a template such as
// "${stationNameOrRadioName}/${index}.${artist} - ${title}${suffix}".
// Every substituted value is sanitized on its own before it is inserted.
// A known placeholder without a value renders as "unknown"; the
// ${name:-default} form only supplies values for names it does not know.
type Generator struct {
	Dir             string
	Format          string
	RequireMetadata bool
	ASCII           bool

	exists func(path string) bool
}

// Generate returns a path below Dir that does not exist yet. It returns an
// empty path when md is required but has no track, or when the content type
// is unknown.
func (g *Generator) Generate(nc NameContext, md *shoutcast.Metadata) (string, error) {
	if g.RequireMetadata && (md == nil || !md.HasTrack()) {
		return "", nil
	}
	if !nc.Known {
		return "", nil
	}

	values := g.values(nc, md)
	name := os.Expand(g.Format, func(key string) string {
		field, def, hasDefault := strings.Cut(key, ":-")
		if fields[field] {
			if v := values[field]; v != "" {
				return v
			}
			return unknownValue
		}
		if hasDefault {
			return def
		}
		return unknownValue
	})

	dir, err := filepath.Abs(g.Dir)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve target directory")
	}

	p := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideTargetDir, name)
	}

	return g.unique(p), nil
}

func (g *Generator) values(nc NameContext, md *shoutcast.Metadata) map[string]string {
	v := map[string]string{
		"id":    strconv.Itoa(nc.ID),
		"index": fmt.Sprintf("%03d", 0),
	}

	if nc.Known {
		v["suffix"] = nc.MimeType.Suffix
	}

	if nc.URL != nil {
		radioName := strings.TrimSuffix(nc.URL.Host+nc.URL.Path, "/")
		v["radioName"] = g.sanitize(radioName)
		v["radioHost"] = g.sanitize(nc.URL.Host)
		v["radioUri"] = g.sanitize(nc.URL.String())
		v["stationNameOrRadioName"] = v["radioName"]
	}

	if md != nil {
		if md.HasTrack() {
			v["index"] = fmt.Sprintf("%03d", md.Index)
		}
		v["artist"] = g.sanitize(md.Artist)
		v["title"] = g.sanitize(md.Title)
		v["stationName"] = g.sanitize(md.StationName)
		v["stationUrl"] = g.sanitize(md.StationURL)
		if u, err := url.Parse(md.StationURL); err == nil && md.StationURL != "" {
			v["stationHost"] = g.sanitize(u.Host)
		}
		if v["stationName"] != "" {
			v["stationNameOrRadioName"] = v["stationName"]
		}
	}

	return v
}

// sanitize makes a single value safe to use as part of a file name.
func (g *Generator) sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if g.ASCII {
		s = unidecode.Unidecode(s)
	}

	s = leadingPunctuation.ReplaceAllString(s, "_")
	s = illegalCharacters.ReplaceAllString(s, "_")

	if r := []rune(s); len(r) > maxFieldLength {
		s = string(r[:maxFieldLength])
	}

	return s
}

// unique appends -1, -2, ... before the extension until p names no
// existing file.
func (g *Generator) unique(p string) string {
	exists := g.exists
	if exists == nil {
		exists = fileExists
	}

	if !exists(p) {
		return p
	}

	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}

func fileExists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

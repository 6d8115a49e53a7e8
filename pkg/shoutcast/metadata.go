package shoutcast

import (
	"regexp"
	"strings"
	"time"
)

var artistTitlePattern = regexp.MustCompile(`(?s)^(.{2,}) - (.{2,})$`)

// Metadata is an immutable snapshot of what a station is playing.
// Empty strings mean the field is absent.
type Metadata struct {
	// When the track was first detected
	Created time.Time

	// Zero-based position of the track within the session, -1 before the
	// first metadata block
	Index int

	Artist string
	Title  string

	// Station information, seeded from the response headers
	StationName string
	StationURL  string

	// Byte offset in the stream at which the track began, -1 if unknown
	Offset int64
}

// NewMetadata returns the seed snapshot of a session.
func NewMetadata(now time.Time) Metadata {
	return Metadata{
		Created: now,
		Index:   -1,
		Offset:  -1,
	}
}

// HasTrack reports whether the snapshot was derived from a metadata block.
func (m Metadata) HasTrack() bool {
	return m.Index >= 0
}

// Next derives the snapshot for a new raw StreamTitle. Station fields carry
// over from m. Text that does not split into "artist - title" becomes the
// title as a whole.
func (m Metadata) Next(now time.Time, offset int64, raw string) Metadata {
	next := m
	next.Created = now
	next.Index = m.Index + 1
	next.Offset = offset

	if parts := artistTitlePattern.FindStringSubmatch(raw); parts != nil {
		next.Artist = parts[1]
		next.Title = parts[2]
	} else {
		next.Artist = ""
		next.Title = raw
	}

	return next
}

func (m Metadata) String() string {
	var b strings.Builder
	b.WriteString(m.Artist)
	if m.Title != "" {
		b.WriteString(" - ")
		b.WriteString(m.Title)
	}
	if m.StationName != "" {
		b.WriteString(" - ")
		b.WriteString(m.StationName)
	}
	return b.String()
}

package shoutcast

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// MetadataCallbackFunc is the type of the function called when the stream title changes.
type MetadataCallbackFunc func(title string)

var (
	streamTitlePattern = regexp.MustCompile(`(?s)StreamTitle='(.*?)';`)
	streamURLPattern   = regexp.MustCompile(`(?is)StreamUrl='(.*?)';`)
)

// Stream strips ICY metadata blocks out of an audio stream. Every metaint
// audio bytes the server inserts a length byte L followed by L*16 bytes of
// metadata text. Reads never return metadata bytes and never cross a
// metadata boundary.
type Stream struct {
	// Optional function to be executed when the stream title changes
	MetadataCallbackFunc MetadataCallbackFunc

	// Amount of bytes to read before expecting a metadata block
	metaint int

	// The number of audio bytes read since last metadata block
	pos int

	// The last StreamTitle seen, for de-duplication
	last string
	seen bool

	// The underlying data stream
	r *OffsetReader

	logger *slog.Logger
}

// NewStream wraps r and expects a metadata block every metaint bytes.
func NewStream(r *OffsetReader, metaint int, logger *slog.Logger) (*Stream, error) {
	if metaint <= 0 {
		return nil, fmt.Errorf("invalid metaint %d", metaint)
	}

	return &Stream{
		metaint: metaint,
		r:       r,
		logger:  logger,
	}, nil
}

// LastMetadata returns the last StreamTitle seen and whether there was one.
func (s *Stream) LastMetadata() (string, bool) {
	return s.last, s.seen
}

// Read implements the standard Read interface
func (s *Stream) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	if s.pos == s.metaint {
		if err := s.readMetadata(); err != nil {
			return 0, err
		}
	}

	// stop at the next boundary so the caller re-enters exactly there
	if remaining := s.metaint - s.pos; len(buf) > remaining {
		buf = buf[:remaining]
	}

	n, err := s.r.Read(buf)
	s.pos += n

	return n, err
}

func (s *Stream) readMetadata() error {
	length, err := s.r.ReadByte()
	if err != nil {
		return err
	}

	size := int(length) * 16
	block := make([]byte, size)
	if _, err := io.ReadFull(s.r, block); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	s.pos = 0

	if size == 0 {
		return nil
	}

	if i := bytes.IndexByte(block, 0); i >= 0 {
		block = block[:i]
	}
	text := decodeMetadata(block)

	if m := streamTitlePattern.FindStringSubmatch(text); m != nil {
		title := m[1]
		if !s.seen || title != s.last {
			s.last = title
			s.seen = true
			s.logger.Debug("found metadata", "title", title)
			if s.MetadataCallbackFunc != nil {
				s.MetadataCallbackFunc(title)
			}
		}
	} else {
		s.logger.Warn("no stream title in metadata block", "size", size, "metadata", text)
	}

	if m := streamURLPattern.FindStringSubmatch(text); m != nil && m[1] != "" {
		s.logger.Debug("found stream url", "url", m[1])
	}

	return nil
}

// decodeMetadata treats the block as UTF-8 and falls back to ISO-8859-1,
// which many older servers still send.
func decodeMetadata(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}

	return string(out)
}

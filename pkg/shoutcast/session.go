package shoutcast

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderMetaint = "icy-metaint"
	HeaderName    = "icy-name"
	HeaderURL     = "icy-url"
)

// MetadataListener receives every accepted track change of a session.
type MetadataListener interface {
	OnMetadata(m Metadata)
}

// MetadataListenerFunc adapts a function to MetadataListener.
type MetadataListenerFunc func(m Metadata)

func (f MetadataListenerFunc) OnMetadata(m Metadata) { f(m) }

// Session reads the body of one HTTP response. When the server advertises
// an ICY metadata interval, metadata blocks are stripped from the body and
// published as Metadata snapshots.
type Session struct {
	offset *OffsetReader
	stream *Stream
	reader io.Reader

	current  Metadata
	listener MetadataListener
	now      func() time.Time
	logger   *slog.Logger
}

// NewSession wraps body according to the ICY headers in header.
func NewSession(header http.Header, body io.Reader, logger *slog.Logger) *Session {
	s := &Session{
		offset: NewOffsetReader(body),
		now:    time.Now,
		logger: logger,
	}
	s.reader = s.offset
	s.current = NewMetadata(s.now())

	if name := headerValue(header, HeaderName); name != "" {
		logger.Debug("station name", "name", name)
		s.current.StationName = name
	}
	if u := headerValue(header, HeaderURL); u != "" {
		logger.Debug("station url", "url", u)
		s.current.StationURL = u
	}

	raw := headerValue(header, HeaderMetaint)
	if raw == "" {
		return s
	}

	metaint, err := strconv.Atoi(raw)
	if err != nil || metaint <= 0 {
		logger.Warn("ignoring invalid metadata interval", "metaint", raw)
		return s
	}

	logger.Debug("found metadata interval", "metaint", metaint)
	stream, err := NewStream(s.offset, metaint, logger)
	if err != nil {
		return s
	}
	stream.MetadataCallbackFunc = s.onTitle
	s.stream = stream
	s.reader = stream

	return s
}

// SetListener registers the receiver of track changes.
func (s *Session) SetListener(l MetadataListener) {
	s.listener = l
}

// ProvidesMetadata reports whether the server sends ICY metadata at all.
func (s *Session) ProvidesMetadata() bool {
	return s.stream != nil
}

// Current returns the latest snapshot. Before the first metadata block it
// only carries station information and has no track.
func (s *Session) Current() Metadata {
	return s.current
}

// Offset returns the number of body bytes consumed, metadata included.
func (s *Session) Offset() int64 {
	return s.offset.Offset()
}

// Read returns audio bytes only.
func (s *Session) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *Session) onTitle(raw string) {
	next := s.current.Next(s.now(), s.offset.Offset(), raw)
	if next.Artist == "" {
		s.logger.Info("stream title without artist", "title", raw)
	}
	s.current = next

	if s.listener != nil {
		s.listener.OnMetadata(next)
	}
}

// headerValue looks up key case-insensitively, also for header maps that
// were not built through http.Header.Set.
func headerValue(h http.Header, key string) string {
	if v := h.Get(key); v != "" {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

package recorder

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/zachfi/radiorec/pkg/shoutcast"
)

// Connection is one opened station response.
type Connection struct {
	URL      *url.URL
	Response *http.Response

	// MimeType is only meaningful when Known is set.
	MimeType shoutcast.MimeType
	Known    bool
}

// nameContext is the template context of files recorded from c.
func (c *Connection) nameContext(id int) NameContext {
	return NameContext{
		ID:       id,
		URL:      c.URL,
		MimeType: c.MimeType,
		Known:    c.Known,
	}
}

// PayloadHandler consumes the body of a connection. The returned error
// decides whether the connection handler reconnects, see IsRetryable.
type PayloadHandler interface {
	Consume(ctx context.Context, conn *Connection) error
}

// StreamHandler consumes demultiplexed audio together with its track changes.
type StreamHandler interface {
	ConsumeStream(ctx context.Context, conn *Connection, s *shoutcast.Session) error
}

// streamPayload opens a metadata session on the response body and hands it
// to a StreamHandler.
type streamPayload struct {
	handler StreamHandler
	logger  *slog.Logger
}

func (p *streamPayload) Consume(ctx context.Context, conn *Connection) error {
	s := shoutcast.NewSession(conn.Response.Header, conn.Response.Body, p.logger)
	if !s.ProvidesMetadata() {
		p.logger.Info("station sends no track metadata")
	}
	return p.handler.ConsumeStream(ctx, conn, s)
}

// unsupportedPayload ignores content it has no handler for.
type unsupportedPayload struct {
	logger *slog.Logger
}

func (p *unsupportedPayload) Consume(_ context.Context, conn *Connection) error {
	p.logger.Warn("unsupported content type, ignoring",
		"url", conn.URL.String(),
		"content_type", conn.Response.Header.Get("Content-Type"),
	)
	return nil
}

// logTrack is the console listener of every payload handler.
func logTrack(logger *slog.Logger, m shoutcast.Metadata) {
	logger.Info("now listening to",
		"artist", m.Artist,
		"title", m.Title,
		"station", m.StationName,
		"index", m.Index,
	)
}

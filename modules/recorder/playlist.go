package recorder

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/url"

	"github.com/pkg/errors"

	"github.com/zachfi/radiorec/pkg/shoutcast"
)

// playlists may point at playlists, but not forever
const maxPlaylistDepth = 5

type playlistDepthKey struct{}

func playlistDepth(ctx context.Context) int {
	d, _ := ctx.Value(playlistDepthKey{}).(int)
	return d
}

// playlistPayload re-submits every stream URL of a playlist to the
// connection handler, in order.
type playlistPayload struct {
	consume func(ctx context.Context, rawURL string) error
	logger  *slog.Logger
}

func (p *playlistPayload) Consume(ctx context.Context, conn *Connection) error {
	parse := shoutcast.PlaylistParser(conn.MimeType.Kind)
	if parse == nil {
		return Fatal(errors.Errorf("no parser for %s", conn.MimeType))
	}

	depth := playlistDepth(ctx)
	if depth >= maxPlaylistDepth {
		return Fatal(errors.Errorf("playlists nested deeper than %d", maxPlaylistDepth))
	}

	body, err := io.ReadAll(conn.Response.Body)
	if err != nil {
		return Retryable(errors.Wrap(err, "failed to read playlist"))
	}

	urls, err := parse(bytes.NewReader(body))
	if err != nil {
		return Fatal(errors.Wrap(err, "failed to parse playlist"))
	}
	if len(urls) == 0 {
		p.logger.Warn("playlist has no entries", "url", conn.URL.String())
		return nil
	}

	ctx = context.WithValue(ctx, playlistDepthKey{}, depth+1)
	for _, raw := range urls {
		ref, err := url.Parse(raw)
		if err != nil {
			p.logger.Warn("skipping invalid playlist entry", "entry", raw, "err", err)
			continue
		}
		next := conn.URL.ResolveReference(ref).String()

		p.logger.Info("playing playlist entry", "url", next)
		if err := p.consume(ctx, next); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	return nil
}

package recorder

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zachfi/radiorec/pkg/shoutcast"
)

var tracer = otel.Tracer("github.com/zachfi/radiorec/modules/recorder")

// Handler opens station connections, dispatches their payload by content
// type and reconnects after retryable failures.
type Handler struct {
	cfg     *Config
	client  *http.Client
	station string
	logger  *slog.Logger

	audio       PayloadHandler
	playlist    PayloadHandler
	unsupported PayloadHandler
}

// NewHandler returns a Handler that passes audio to audio.
func NewHandler(cfg *Config, audio StreamHandler, station string, logger *slog.Logger) (*Handler, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		cfg:         cfg,
		client:      client,
		station:     station,
		logger:      logger,
		audio:       &streamPayload{handler: audio, logger: logger},
		unsupported: &unsupportedPayload{logger: logger},
	}
	h.playlist = &playlistPayload{consume: h.Consume, logger: logger}

	return h, nil
}

// Consume records or plays rawURL until the stream ends, a fatal error
// occurs or ctx is done. Retryable errors reconnect after the grace period
// when reconnecting is enabled.
func (h *Handler) Consume(ctx context.Context, rawURL string) error {
	for {
		err := h.consumeOnce(ctx, rawURL)
		switch {
		case err == nil, ctx.Err() != nil:
			return nil
		case !h.cfg.Reconnect || !IsRetryable(err):
			return err
		}

		h.logger.Warn("connection failed, reconnecting", "url", rawURL, "err", err, "grace", h.cfg.ReconnectGrace)
		metricReconnects.WithLabelValues(h.station).Inc()

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(h.cfg.ReconnectGrace):
		}
	}
}

func (h *Handler) consumeOnce(ctx context.Context, rawURL string) (err error) {
	ctx, span := tracer.Start(ctx, "Handler.consume", trace.WithAttributes(
		attribute.String("url", rawURL),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "ok")
		}
		span.End()
	}()

	conn, err := h.open(ctx, rawURL)
	if err != nil {
		return err
	}
	defer conn.Response.Body.Close()

	span.SetAttributes(
		attribute.String("content_type", conn.MimeType.String()),
		attribute.String("kind", conn.MimeType.Kind.String()),
	)

	return h.handlerFor(conn).Consume(ctx, conn)
}

func (h *Handler) open(ctx context.Context, rawURL string) (*Connection, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, Fatal(errors.Wrap(err, "invalid station url"))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, Fatal(errors.Errorf("unsupported scheme %q", u.Scheme))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, Fatal(errors.Wrap(err, "failed to create request"))
	}
	req.Header.Set("Icy-MetaData", "1")
	req.Header.Set("User-Agent", h.cfg.UserAgent)

	h.logger.Debug("connecting", "url", u.String())
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, Retryable(errors.Wrap(err, "failed to connect"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, Retryable(errors.Errorf("unexpected status %s", resp.Status))
	}

	conn := &Connection{
		URL:      resp.Request.URL,
		Response: resp,
	}
	conn.MimeType, conn.Known = shoutcast.ByContentType(resp.Header.Get("Content-Type"))

	h.logger.Debug("connected", "url", conn.URL.String(), "content_type", conn.MimeType.String(), "known", conn.Known)

	return conn, nil
}

func (h *Handler) handlerFor(conn *Connection) PayloadHandler {
	if !conn.Known {
		return h.unsupported
	}

	switch conn.MimeType.Kind {
	case shoutcast.KindAudio:
		return h.audio
	case shoutcast.KindM3U, shoutcast.KindPLS, shoutcast.KindXSPF:
		return h.playlist
	default:
		return h.unsupported
	}
}

func newClient(cfg *Config) (*http.Client, error) {
	proxy := http.ProxyFromEnvironment
	if cfg.Proxy != "" {
		pu, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, errors.Wrap(err, "invalid proxy url")
		}
		proxy = http.ProxyURL(pu)
	}

	dialer := &net.Dialer{
		Timeout:   cfg.Timeout,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		Transport: &http.Transport{
			Proxy: proxy,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				conn, err := dialer.DialContext(ctx, network, addr)
				if err != nil {
					return nil, err
				}
				return &icyConn{Conn: conn, timeout: cfg.Timeout}, nil
			},
			TLSHandshakeTimeout:   cfg.Timeout,
			ResponseHeaderTimeout: cfg.Timeout,
			DisableCompression:    true,
		},
	}, nil
}

const (
	icyStatus  = "ICY "
	httpStatus = "HTTP/1.0 "
)

// icyConn extends the read deadline before every read, so a stalled
// station fails with a timeout. Old SHOUTcast servers answer with an
// "ICY 200 OK" status line, which is rewritten to HTTP/1.0.
type icyConn struct {
	net.Conn
	timeout time.Duration

	started bool
	pending []byte
}

func (c *icyConn) Read(p []byte) (int, error) {
	if len(c.pending) > 0 {
		n := copy(p, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}

	if c.timeout > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}

	if c.started {
		return c.Conn.Read(p)
	}
	c.started = true

	head := make([]byte, len(icyStatus))
	n, err := io.ReadFull(c.Conn, head)
	if n == 0 {
		return 0, err
	}
	head = head[:n]
	if string(head) == icyStatus {
		head = []byte(httpStatus)
	}

	m := copy(p, head)
	c.pending = head[m:]
	return m, nil
}

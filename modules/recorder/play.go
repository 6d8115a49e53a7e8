package recorder

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/zachfi/radiorec/pkg/shoutcast"
)

// player feeds the audio of a station into an external player process.
type player struct {
	cfg     *Config
	station string
	logger  *slog.Logger
}

func (p *player) ConsumeStream(ctx context.Context, _ *Connection, s *shoutcast.Session) error {
	s.SetListener(shoutcast.MetadataListenerFunc(func(m shoutcast.Metadata) {
		metricMetadataChanges.WithLabelValues(p.station).Inc()
		logTrack(p.logger, m)
	}))

	args := strings.Fields(p.cfg.PlayerCommand)
	if len(args) == 0 {
		return Fatal(errors.New("no player command configured"))
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Fatal(errors.Wrap(err, "failed to open player input"))
	}
	if err := cmd.Start(); err != nil {
		return Fatal(errors.Wrapf(err, "failed to start player %q", args[0]))
	}
	p.logger.Info("playing", "player", args[0])

	err = p.feed(ctx, stdin, s)
	_ = stdin.Close()

	if werr := cmd.Wait(); werr != nil && err == nil && ctx.Err() == nil {
		p.logger.Warn("player exited", "err", werr)
	}

	return err
}

func (p *player) feed(ctx context.Context, w io.Writer, s *shoutcast.Session) error {
	buf := make([]byte, p.cfg.BufferSize)
	for {
		n, rerr := s.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return Fatal(errors.Wrap(err, "player stopped accepting audio"))
			}
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return Retryable(errors.Wrap(rerr, "failed to read stream"))
		}
	}
}

package recorder

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/zachfi/radiorec/pkg/tagging"
)

// unit records or plays one station. Units share nothing but the tagging
// pool.
type unit struct {
	id      int
	runID   string
	url     string
	station string

	handler *Handler
	logger  *slog.Logger
}

func newUnit(id int, rawURL string, cfg *Config, pool *tagging.Pool, logger *slog.Logger) (*unit, error) {
	u := &unit{
		id:      id,
		runID:   uuid.NewString(),
		url:     rawURL,
		station: stationLabel(rawURL),
	}
	u.logger = logger.With("unit", u.id, "run", u.runID, "url", rawURL)

	var audio StreamHandler
	if cfg.Play {
		audio = &player{
			cfg:     cfg,
			station: u.station,
			logger:  u.logger,
		}
	} else {
		audio = &copier{
			cfg:     cfg,
			id:      u.id,
			station: u.station,
			pool:    pool,
			logger:  u.logger,
			now:     time.Now,
		}
	}

	h, err := NewHandler(cfg, audio, u.station, u.logger)
	if err != nil {
		return nil, err
	}
	u.handler = h

	return u, nil
}

func (u *unit) run(ctx context.Context) error {
	start := time.Now()
	u.logger.Info("starting")

	if err := u.handler.Consume(ctx, u.url); err != nil {
		u.logger.Error("station failed", "err", err, "elapsed", time.Since(start))
		return err
	}

	u.logger.Info("station finished", "elapsed", time.Since(start))
	return nil
}

// stationLabel is the metrics label of a station URL.
func stationLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

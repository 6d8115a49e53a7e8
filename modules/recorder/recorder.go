package recorder

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/grafana/dskit/modules"
	"github.com/grafana/dskit/services"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/zachfi/radiorec/pkg/tagging"
)

// Recorder runs one unit per configured station, at most Limit at a time,
// and stops the process once all of them finished.
type Recorder struct {
	services.Service
	cfg    *Config
	logger *slog.Logger
	pool   *tagging.Pool
}

var module = "recorder"

// New creates and returns a new Recorder.
func New(cfg Config, logger slog.Logger) (*Recorder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid recorder config")
	}

	r := &Recorder{
		cfg:    &cfg,
		logger: logger.With("module", module),
	}

	r.Service = services.NewBasicService(r.starting, r.running, r.stopping)

	return r, nil
}

func (r *Recorder) starting(_ context.Context) error {
	if r.cfg.Play {
		return nil
	}

	if err := os.MkdirAll(r.cfg.Dir, 0o755); err != nil {
		r.logger.Error("error creating target directory", "err", err)
		return err
	}

	pool, err := tagging.NewPool(r.cfg.TaggingWorkers, r.logger)
	if err != nil {
		return err
	}
	r.pool = pool

	return nil
}

func (r *Recorder) running(ctx context.Context) error {
	var (
		g      errgroup.Group
		failed atomic.Int64
	)
	g.SetLimit(r.cfg.Limit)

	for i, rawURL := range r.cfg.URLs {
		u, err := newUnit(i+1, rawURL, r.cfg, r.pool, r.logger)
		if err != nil {
			r.logger.Error("error creating unit", "url", rawURL, "err", err)
			failed.Add(1)
			continue
		}

		// a failing station does not stop the others
		g.Go(func() error {
			if err := u.run(ctx); err != nil {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return nil
	}

	r.logger.Info("all stations finished", "stations", len(r.cfg.URLs), "failed", failed.Load())
	return modules.ErrStopProcess
}

func (r *Recorder) stopping(_ error) error {
	r.logger.Info("stopping")

	// pending tags are written before the process exits
	if r.pool != nil {
		r.pool.Release()
	}

	return nil
}

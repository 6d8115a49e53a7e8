package tagging

import (
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
)

// Pool runs tagging jobs in the background. Submitting never blocks the
// caller; when all workers are busy the job runs on its own goroutine.
type Pool struct {
	pool   *ants.Pool
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a pool with size workers.
func NewPool(size int, logger *slog.Logger) (*Pool, error) {
	if size <= 0 {
		size = 1
	}

	p, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tagging pool")
	}

	return &Pool{
		pool:   p,
		logger: logger,
	}, nil
}

// Submit tags the MP3 file at path in the background and then sets its
// modification time to t.Created. done, if not nil, receives the tagging
// result.
func (p *Pool) Submit(path string, t Tags, done func(error)) {
	p.wg.Add(1)

	job := func() {
		defer p.wg.Done()
		err := p.run(path, t)
		if done != nil {
			done(err)
		}
	}

	if err := p.pool.Submit(job); err != nil {
		p.logger.Debug("tagging pool busy, running detached", "path", path, "err", err)
		go job()
	}
}

func (p *Pool) run(path string, t Tags) error {
	p.logger.Debug("adding id3 tags", "path", path)

	err := WriteID3(path, t)
	if err != nil {
		p.logger.Warn("error while adding id3 tags", "path", path, "err", err)
	} else {
		p.logger.Debug("done adding id3 tags", "path", path)
	}

	if !t.Created.IsZero() {
		if terr := Touch(path, t.Created); terr != nil {
			p.logger.Warn("error setting file time", "path", path, "err", terr)
		}
	}

	return err
}

// Wait blocks until every submitted job finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Release waits for pending jobs and stops the workers.
func (p *Pool) Release() {
	p.Wait()
	p.pool.Release()
}

package recorder

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/zachfi/radiorec/pkg/shoutcast"
	"github.com/zachfi/radiorec/pkg/tagging"
)

const (
	tagComment = "radiorec"

	// attempts at finding a free file name when files appear concurrently
	maxCreateAttempts = 10
)

// copier records the audio of a station into files, one per track or one
// per connection.
type copier struct {
	cfg     *Config
	id      int
	station string
	pool    *tagging.Pool
	logger  *slog.Logger

	now       func() time.Time
	freeSpace func(dir string) (uint64, error)
}

// outputFile is the file the copy loop is currently writing.
type outputFile struct {
	f       *os.File
	path    string
	md      shoutcast.Metadata
	written int64
	aligner *frameAligner
}

func (c *copier) ConsumeStream(ctx context.Context, conn *Connection, s *shoutcast.Session) (err error) {
	perTrack := c.cfg.UseSongNames && s.ProvidesMetadata()
	gen := c.generator(perTrack)
	nc := conn.nameContext(c.id)

	lim := newLimits(c.cfg, c.now(), c.now)
	if c.freeSpace != nil {
		lim.freeSpace = c.freeSpace
	}

	var (
		state   trackState
		out     *outputFile
		dropped bool
	)

	s.SetListener(shoutcast.MetadataListenerFunc(func(m shoutcast.Metadata) {
		metricMetadataChanges.WithLabelValues(c.station).Inc()
		logTrack(c.logger, m)
		state = state.withMetadata(m)
	}))

	// Whatever is still open when the loop ends did not see its track
	// finish. Per-track files are removed, a single recording is kept.
	defer func() {
		if out == nil {
			return
		}
		if perTrack {
			c.discard(out)
			return
		}
		c.finish(out, conn.MimeType)
	}()

	if !perTrack {
		md := s.Current()
		out, err = c.open(gen, nc, &md, conn.MimeType)
		if err != nil {
			return err
		}
		if out == nil {
			return Fatal(errors.New("no file name for recording"))
		}
	}

	buf := make([]byte, c.cfg.BufferSize)
	for {
		n, rerr := s.Read(buf)
		if n > 0 {
			var written int64
			if out != nil {
				written = out.written
			}
			if reason, stop := lim.check(written); stop {
				c.logger.Warn("stopping recording", "reason", reason, "written", byteCountIEC(written))
				metricAborts.WithLabelValues(c.station, string(reason)).Inc()
				return nil
			}

			var st step
			state, st = state.onChunk(perTrack, out != nil)
			if st == stepRotate {
				if out != nil {
					c.finish(out, conn.MimeType)
					out = nil
				}

				md := state.latest
				out, err = c.open(gen, nc, &md, conn.MimeType)
				if err != nil {
					return err
				}
				if out == nil {
					c.logger.Warn("no file name for track, skipping it", "index", md.Index)
				}
			}

			if out != nil {
				if err := c.write(out, buf[:n]); err != nil {
					return err
				}
			} else if !dropped {
				c.logger.Info("dropping bytes of incomplete track")
				dropped = true
			}
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				c.logger.Info("end of stream")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return Retryable(errors.Wrap(rerr, "failed to read stream"))
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *copier) generator(perTrack bool) *Generator {
	g := &Generator{
		Dir:    c.cfg.Dir,
		Format: c.cfg.NoNameFormat,
		ASCII:  c.cfg.ASCIINames,
	}
	if perTrack {
		g.Format = c.cfg.NameFormat
		g.RequireMetadata = true
	}
	return g
}

// open creates the next recording file. It returns nil without an error
// when the generator has no name for md.
func (c *copier) open(gen *Generator, nc NameContext, md *shoutcast.Metadata, mt shoutcast.MimeType) (*outputFile, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		p, err := gen.Generate(nc, md)
		if err != nil {
			return nil, Fatal(err)
		}
		if p == "" {
			return nil, nil
		}

		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, Fatal(errors.Wrap(err, "failed to create recording directory"))
		}

		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, Fatal(errors.Wrap(err, "failed to create recording"))
		}

		c.logger.Info("writing to file", "path", p)
		metricFilesOpened.WithLabelValues(c.station).Inc()

		out := &outputFile{
			f:    f,
			path: p,
			md:   *md,
		}
		if c.cfg.AlignFrames && mt.IsMP3() {
			out.aligner = &frameAligner{}
		}
		return out, nil
	}

	return nil, Fatal(fmt.Errorf("no free file name after %d attempts", maxCreateAttempts))
}

func (c *copier) write(out *outputFile, chunk []byte) error {
	if out.aligner != nil {
		if chunk = out.aligner.align(chunk); len(chunk) == 0 {
			return nil
		}
	}

	n, err := out.f.Write(chunk)
	out.written += int64(n)
	metricBytesWritten.WithLabelValues(c.station).Add(float64(n))
	if err != nil {
		return Fatal(errors.Wrapf(err, "failed to write %s", out.path))
	}

	return nil
}

// finish closes a complete recording and hands it to tagging. Files that
// get no tags are dated back right away.
func (c *copier) finish(out *outputFile, mt shoutcast.MimeType) {
	if err := out.f.Close(); err != nil {
		c.logger.Warn("error closing file", "path", out.path, "err", err)
	}

	if out.written == 0 {
		c.logger.Debug("removing empty file", "path", out.path)
		_ = os.Remove(out.path)
		return
	}

	c.logger.Info("finished file", "path", out.path, "size", byteCountIEC(out.written))

	if mt.IsMP3() && c.pool != nil {
		c.pool.Submit(out.path, c.tags(out.md), func(err error) {
			result := "success"
			if err != nil {
				result = "failure"
			}
			metricTagging.WithLabelValues(c.station, result).Inc()
		})
		return
	}

	if err := tagging.Touch(out.path, out.md.Created); err != nil {
		c.logger.Warn("error setting file time", "path", out.path, "err", err)
	}
}

// discard closes and removes an incomplete recording.
func (c *copier) discard(out *outputFile) {
	_ = out.f.Close()

	c.logger.Info("deleting incomplete file", "path", out.path)
	if err := os.Remove(out.path); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("error deleting incomplete file", "path", out.path, "err", err)
	}
}

func (c *copier) tags(md shoutcast.Metadata) tagging.Tags {
	return tagging.Tags{
		Title:       md.Title,
		Artist:      md.Artist,
		StationName: md.StationName,
		StationURL:  md.StationURL,
		Comment:     tagComment,
		Created:     md.Created,
	}
}

// byteCountIEC formats b as a human readable size, e.g. 1.5 MiB.
func byteCountIEC(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

package recorder

import (
	"time"
)

type abortReason string

const (
	abortSize     abortReason = "size"
	abortDuration abortReason = "duration"
	abortDiskFree abortReason = "disk_free"
)

// free space is checked at most this often
const freeSpaceInterval = time.Second

// limits decides when a recording stops early. A zero limit is disabled.
type limits struct {
	dir         string
	maxBytes    int64
	maxDuration time.Duration
	minFree     uint64

	start     time.Time
	now       func() time.Time
	freeSpace func(dir string) (uint64, error)

	lastFreeCheck time.Time
	lastFree      uint64
}

func newLimits(cfg *Config, start time.Time, now func() time.Time) *limits {
	return &limits{
		dir:         cfg.Dir,
		maxBytes:    cfg.AbortAfterKB * 1024,
		maxDuration: cfg.AbortAfterDuration,
		minFree:     uint64(cfg.MinFree),
		start:       start,
		now:         now,
		freeSpace:   freeSpace,
	}
}

// check is called before every chunk with the size of the current file.
func (l *limits) check(written int64) (abortReason, bool) {
	if l.maxBytes > 0 && written > l.maxBytes {
		return abortSize, true
	}

	now := l.now()
	if l.maxDuration > 0 && now.Sub(l.start) > l.maxDuration {
		return abortDuration, true
	}

	if l.minFree > 0 && l.dir != "" {
		if l.lastFreeCheck.IsZero() || now.Sub(l.lastFreeCheck) >= freeSpaceInterval {
			l.lastFreeCheck = now
			free, err := l.freeSpace(l.dir)
			if err != nil {
				// unknown, don't stop on it
				free = l.minFree
			}
			l.lastFree = free
		}
		if l.lastFree < l.minFree {
			return abortDiskFree, true
		}
	}

	return "", false
}

package recorder

import (
	"errors"
	"testing"
	"time"
)

func TestLimits(t *testing.T) {
	start := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	now := start

	free := uint64(1 << 30)
	cfg := &Config{
		Dir:                t.TempDir(),
		AbortAfterKB:       2,
		AbortAfterDuration: time.Minute,
		MinFree:            512 << 20,
	}

	l := newLimits(cfg, start, func() time.Time { return now })
	l.freeSpace = func(string) (uint64, error) { return free, nil }

	if reason, stop := l.check(2048); stop {
		t.Fatalf("stopped at the size cap: %s", reason)
	}
	if reason, stop := l.check(2049); !stop || reason != abortSize {
		t.Errorf("size: got %q, %v", reason, stop)
	}

	now = start.Add(time.Minute + time.Second)
	if reason, stop := l.check(0); !stop || reason != abortDuration {
		t.Errorf("duration: got %q, %v", reason, stop)
	}

	l.maxDuration = 0
	if reason, stop := l.check(0); stop {
		t.Fatalf("stopped with enough free space: %s", reason)
	}

	free = 1 << 20

	// still within the free space check interval
	now = now.Add(freeSpaceInterval / 2)
	if reason, stop := l.check(0); stop {
		t.Errorf("free space checked too early: %s", reason)
	}

	now = now.Add(freeSpaceInterval)
	if reason, stop := l.check(0); !stop || reason != abortDiskFree {
		t.Errorf("free space: got %q, %v", reason, stop)
	}
}

func TestLimitsDisabled(t *testing.T) {
	cfg := &Config{}
	l := newLimits(cfg, time.Time{}, time.Now)
	l.freeSpace = func(string) (uint64, error) { return 0, errors.New("unsupported") }

	if reason, stop := l.check(1 << 40); stop {
		t.Errorf("stopped with all limits disabled: %s", reason)
	}
}

func TestLimitsFreeSpaceError(t *testing.T) {
	cfg := &Config{Dir: "/nonexistent", MinFree: 1}
	l := newLimits(cfg, time.Now(), time.Now)
	l.freeSpace = func(string) (uint64, error) { return 0, errors.New("unsupported") }

	if reason, stop := l.check(0); stop {
		t.Errorf("stopped on an unknown free space: %s", reason)
	}
}

package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/grafana/dskit/modules"
	"github.com/grafana/dskit/services"
)

func TestRecorderStopsWhenStationsFinish(t *testing.T) {
	cfg := *testConfig(t)
	cfg.NoNameFormat = "${id}${suffix}"
	cfg.Limit = 1

	first := station(t, "audio/mpeg", 16, icyBody(16, "ab", "Artist - First"))
	second := station(t, "audio/ogg", 16, icyBody(16, "cd", "Artist - Second"))
	cfg.URLs = []string{first.URL, second.URL, "ftp://radio.example/broken"}

	r, err := New(cfg, *slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.StartAsync(ctx); err != nil {
		t.Fatal(err)
	}
	_ = r.AwaitTerminated(ctx)

	if r.State() != services.Failed || !errors.Is(r.FailureCase(), modules.ErrStopProcess) {
		t.Fatalf("state = %s, failure = %v", r.State(), r.FailureCase())
	}

	files := recordings(t, cfg.Dir)
	sort.Strings(files)
	want := []string{"1.mp3", "2.ogg"}
	if len(files) != len(want) {
		t.Fatalf("recordings = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("recording %d = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestRecorderStopsOnCancel(t *testing.T) {
	cfg := *testConfig(t)
	cfg.URLs = []string{liveStation(t, 1024).URL}

	r, err := New(cfg, *slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}

	if err := services.StartAndAwaitRunning(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := services.StopAndAwaitTerminated(context.Background(), r); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if r.State() != services.Terminated {
		t.Errorf("state = %s", r.State())
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cases := map[string]Config{
		"no urls": {Dir: t.TempDir()},
		"no dir":  {URLs: []string{"http://radio.example/"}},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := New(cfg, *slog.New(slog.DiscardHandler)); err == nil {
				t.Error("expected an error")
			}
		})
	}

	// playing needs no target directory
	if _, err := New(Config{URLs: []string{"http://radio.example/"}, Play: true}, *slog.New(slog.DiscardHandler)); err != nil {
		t.Errorf("play: %v", err)
	}
}

func TestValidateClampsBuffer(t *testing.T) {
	cfg := Config{URLs: []string{"http://radio.example/"}, Dir: "x", BufferSize: 10}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.BufferSize != minBufferSize {
		t.Errorf("buffer = %d, want %d", cfg.BufferSize, minBufferSize)
	}
	if cfg.NameFormat != defaultNameFormat || cfg.Limit != 1 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

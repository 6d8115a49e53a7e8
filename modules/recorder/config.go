package recorder

import (
	"flag"
	"fmt"
	"time"

	"github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"
	"github.com/zachfi/zkit/pkg/util"
)

const (
	defaultNameFormat   = "${stationNameOrRadioName}/${index}.${artist} - ${title}${suffix}"
	defaultNoNameFormat = "${stationNameOrRadioName}/${index}${suffix}"

	defaultLimit          = 10
	defaultMinFree        = 512 * 1024 * 1024 // 512 MiB
	defaultReconnectGrace = 5 * time.Second
	defaultTimeout        = 60 * time.Second
	defaultUserAgent      = "radiorec"
	defaultPlayerCommand  = "ffplay -nodisp -loglevel quiet -"
	defaultTaggingWorkers = 4
	defaultBufferSize     = 8192
)

// minBufferSize and maxBufferSize clamp the configured copy buffer to avoid
// tiny reads (no benefit) or very large buffers (memory and latency).
const (
	minBufferSize = 1024            // 1 KiB
	maxBufferSize = 4 * 1024 * 1024 // 4 MiB
)

type Config struct {
	URLs flagext.StringSliceCSV `yaml:"urls,omitempty"`
	Dir  string                 `yaml:"dir,omitempty"`

	UseSongNames bool   `yaml:"use-songnames,omitempty"`
	NameFormat   string `yaml:"name-format,omitempty"`
	NoNameFormat string `yaml:"no-name-format,omitempty"`
	ASCIINames   bool   `yaml:"ascii-names,omitempty"`

	Limit              int           `yaml:"limit,omitempty"`
	MinFree            flagext.Bytes `yaml:"min-free,omitempty"`
	AbortAfterKB       int64         `yaml:"abort-after-kb,omitempty"`
	AbortAfterDuration time.Duration `yaml:"abort-after-duration,omitempty"`

	Reconnect      bool          `yaml:"reconnect,omitempty"`
	ReconnectGrace time.Duration `yaml:"reconnect-grace,omitempty"` // fixed wait between reconnects
	Timeout        time.Duration `yaml:"timeout,omitempty"`         // connect and read timeout
	Proxy          string        `yaml:"proxy,omitempty"`
	UserAgent      string        `yaml:"user-agent,omitempty"`

	Play          bool   `yaml:"play,omitempty"`
	PlayerCommand string `yaml:"player-command,omitempty"`

	TaggingWorkers int  `yaml:"tagging-workers,omitempty"`
	AlignFrames    bool `yaml:"align-frames,omitempty"`
	BufferSize     int  `yaml:"buffer-size,omitempty"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.Var(&cfg.URLs, util.PrefixConfig(prefix, "urls"), "Comma separated list of station URLs to record")
	f.StringVar(&cfg.Dir, util.PrefixConfig(prefix, "dir"), "", "The directory to save the recordings")

	f.BoolVar(&cfg.UseSongNames, util.PrefixConfig(prefix, "use-songnames"), false,
		"Write one file per track, named from the stream metadata. The incomplete first track is dropped.")
	f.StringVar(&cfg.NameFormat, util.PrefixConfig(prefix, "name-format"), defaultNameFormat,
		"File name template used with use-songnames.")
	f.StringVar(&cfg.NoNameFormat, util.PrefixConfig(prefix, "no-name-format"), defaultNoNameFormat,
		"File name template used when recording into a single file.")
	f.BoolVar(&cfg.ASCIINames, util.PrefixConfig(prefix, "ascii-names"), false, "Transliterate file names to ASCII")

	f.IntVar(&cfg.Limit, util.PrefixConfig(prefix, "limit"), defaultLimit, "Maximum number of stations recorded in parallel")
	cfg.MinFree = defaultMinFree
	f.Var(&cfg.MinFree, util.PrefixConfig(prefix, "min-free"), "Stop recording when the target file system has less free space (e.g. 512MiB)")
	f.Int64Var(&cfg.AbortAfterKB, util.PrefixConfig(prefix, "abort-after-kb"), 0, "Stop recording when the current file exceeds this many KiB, 0 disables")
	f.DurationVar(&cfg.AbortAfterDuration, util.PrefixConfig(prefix, "abort-after-duration"), 0, "Stop recording after this long, 0 disables")

	f.BoolVar(&cfg.Reconnect, util.PrefixConfig(prefix, "reconnect"), false, "Reconnect after transient stream failures")
	f.DurationVar(&cfg.ReconnectGrace, util.PrefixConfig(prefix, "reconnect-grace"), defaultReconnectGrace, "Delay before reconnecting")
	f.DurationVar(&cfg.Timeout, util.PrefixConfig(prefix, "timeout"), defaultTimeout, "Connect and read timeout")
	f.StringVar(&cfg.Proxy, util.PrefixConfig(prefix, "proxy"), "", "HTTP proxy URL, empty uses the environment")
	f.StringVar(&cfg.UserAgent, util.PrefixConfig(prefix, "user-agent"), defaultUserAgent, "User-Agent sent to the station")

	f.BoolVar(&cfg.Play, util.PrefixConfig(prefix, "play"), false, "Play the stations instead of recording them")
	f.StringVar(&cfg.PlayerCommand, util.PrefixConfig(prefix, "player-command"), defaultPlayerCommand, "Player command, audio is written to its stdin")

	f.IntVar(&cfg.TaggingWorkers, util.PrefixConfig(prefix, "tagging-workers"), defaultTaggingWorkers, "Number of concurrent ID3 tagging jobs")
	f.BoolVar(&cfg.AlignFrames, util.PrefixConfig(prefix, "align-frames"), false,
		"Start every per-track MP3 file at the first MPEG frame sync")
	f.IntVar(&cfg.BufferSize, util.PrefixConfig(prefix, "buffer-size"), defaultBufferSize, "Bytes read from the stream per copy iteration")
}

// Validate checks the configuration and fills in zero values.
func (cfg *Config) Validate() error {
	if len(cfg.URLs) == 0 {
		return errors.New("no station urls configured")
	}
	if !cfg.Play && cfg.Dir == "" {
		return errors.New("a target directory is required for recording")
	}

	if cfg.NameFormat == "" {
		cfg.NameFormat = defaultNameFormat
	}
	if cfg.NoNameFormat == "" {
		cfg.NoNameFormat = defaultNoNameFormat
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}
	if cfg.AbortAfterKB < 0 {
		return fmt.Errorf("invalid abort-after-kb %d", cfg.AbortAfterKB)
	}
	if cfg.AbortAfterDuration < 0 {
		return fmt.Errorf("invalid abort-after-duration %s", cfg.AbortAfterDuration)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Play && cfg.PlayerCommand == "" {
		cfg.PlayerCommand = defaultPlayerCommand
	}
	if cfg.TaggingWorkers <= 0 {
		cfg.TaggingWorkers = defaultTaggingWorkers
	}

	if cfg.BufferSize == 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.BufferSize < minBufferSize {
		cfg.BufferSize = minBufferSize
	}
	if cfg.BufferSize > maxBufferSize {
		cfg.BufferSize = maxBufferSize
	}

	return nil
}

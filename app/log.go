package app

import (
	"log/slog"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// kitLogger is the logger handed to dskit, filtered to the same level as
// the application logger.
func (a *App) kitLogger() kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)

	var allow level.Option
	switch l := a.cfg.SlogLevel(); {
	case l <= slog.LevelDebug:
		allow = level.AllowDebug()
	case l <= slog.LevelInfo:
		allow = level.AllowInfo()
	case l <= slog.LevelWarn:
		allow = level.AllowWarn()
	default:
		allow = level.AllowError()
	}

	return level.NewFilter(logger, allow)
}

package app

import (
	"io"
	"log/slog"
	"time"
)

// newLogger builds the app's own logger; the global one is left alone so
// several apps can run side by side in tests. levelStr and formatStr are
// validated by the CLI, anything else falls back to info and text.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			// Point and run durations read better rounded.
			if a.Value.Kind() == slog.KindDuration {
				return slog.String(a.Key, a.Value.Duration().Round(time.Millisecond).String())
			}
			return a
		},
	}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if formatStr == "json" {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("app", "apsimgo")
}

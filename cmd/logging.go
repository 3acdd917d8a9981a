// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the diagnostics logger. Verbosity raises the level from
// warn to info (-v) and debug (-vv); format "json" selects the JSON handler.
func newLogger(w io.Writer, verbosity int, format string) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity >= 2:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// level is shared by every handler Init installs, so SetLevel takes effect
// without rebuilding the logger.
var level = new(slog.LevelVar)

// Init configures the global slog default with the given level and format.
// If w is nil, os.Stdout is used. Format must be "json" or "text".
func Init(lvl slog.Level, format string, w ...io.Writer) {
	var writer io.Writer = os.Stdout
	if len(w) > 0 && w[0] != nil {
		writer = w[0]
	}

	level.Set(lvl)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// SetLevel changes the minimum level of the logger installed by Init.
func SetLevel(lvl slog.Level) {
	if level.Level() != lvl {
		slog.Info("logging: level changed", "from", level.Level(), "to", lvl)
	}
	level.Set(lvl)
}

// Level returns the current minimum level.
func Level() slog.Level { return level.Level() }

// New returns a logger with a "component" attribute for module-scoped logging.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

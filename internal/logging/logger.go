package logging

import (
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// Options configures the application logger.
type Options struct {
	// Level is the minimum level emitted.
	Level slog.Level
	// JSON switches from the text handler to the JSON handler.
	JSON bool
	// MaskKeys lists attribute keys whose values are replaced by "***" (e.g. customer PII).
	MaskKeys []string
	// Output defaults to Stderr.
	Output io.Writer
}

// New creates a configured application logger.
// It writes to Stderr (to keep Stdout free for the chat REPL and MCP JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions creates a logger from explicit options.
func NewWithOptions(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	masked := make([]string, len(opts.MaskKeys))
	for i, k := range opts.MaskKeys {
		masked[i] = strings.ToLower(k)
	}

	handlerOpts := &slog.HandlerOptions{
		Level: opts.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			if slices.Contains(masked, strings.ToLower(a.Key)) {
				a.Value = slog.StringValue("***")
			}
			return a
		},
	}

	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

// ParseLevel maps a level name to slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

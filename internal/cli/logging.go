package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// DefaultLogLevel is the level the front ends log at without --log-level.
const DefaultLogLevel = "warn"

// NewLogger builds a text logger on w at the named level
// (debug, info, warn or error).
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("%w: invalid --log-level %q (debug, info, warn or error)", ErrUsage, level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

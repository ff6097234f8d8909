package mdpress

import (
	"errors"

	"github.com/alnah/mdpress/internal/config"
	"github.com/alnah/mdpress/internal/theme"
)

// Sentinel errors for renderer operations.
var (
	ErrServerStart        = errors.New("renderer failed to start")
	ErrServer             = errors.New("renderer request failed")
	ErrTimeout            = errors.New("renderer request timed out")
	ErrRendererNotRunning = errors.New("renderer is not running")
)

// Sentinel errors for conversion runs.
var (
	ErrFileRead          = errors.New("failed to read input file")
	ErrFileWrite         = errors.New("failed to write output file")
	ErrNoFiles           = errors.New("no input files")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Re-exported so callers can classify without importing internal packages.
var (
	ErrThemeNotFound = theme.ErrThemeNotFound
	ErrConfig        = config.ErrConfig
)

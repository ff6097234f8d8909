// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/mdpress/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForServerStart returns hints for a renderer service that never became healthy.
func ForServerStart(command string) string {
	hints := []string{"check that " + command + " is installed and on PATH, or set renderer.command"}

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""
	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use a custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the renderer timeout.
func ForTimeout() string {
	return format("for large documents, raise renderer.timeout in the config")
}

// ForConfigNotFound returns a hint listing where configs are looked up.
func ForConfigNotFound() string {
	return format("omit --config to use ./md2pdf.config.yaml, ~/.config/md2pdf/config.yaml or the built-in defaults")
}

// ForThemeNotFound lists the available themes.
func ForThemeNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available themes: " + strings.Join(available, ", "))
}

// ForNoFiles returns a hint for patterns that matched nothing.
func ForNoFiles() string {
	return format(`quote glob patterns so the shell does not expand them, e.g. --files "docs/**/*.md"`)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

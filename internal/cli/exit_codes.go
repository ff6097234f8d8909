package cli

import (
	"errors"

	"github.com/alnah/mdpress"
)

// Exit codes for the md2pdf front ends.
// Follows Unix conventions: 0=success, 1=failure, 2=usage.
const (
	ExitSuccess = 0 // Every file converted
	ExitFailure = 1 // A file failed or a precondition was not met
	ExitUsage   = 2 // Invalid flags or flag values
)

// ErrUsage marks invalid command-line input.
var ErrUsage = errors.New("usage error")

// exitCodeFor returns the exit code for a run that ended with err.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, ErrUsage) || errors.Is(err, mdpress.ErrUnsupportedFormat) {
		return ExitUsage
	}
	return ExitFailure
}

// exitCodeForSummary returns ExitSuccess only when every file converted.
func exitCodeForSummary(s *mdpress.Summary) int {
	if s == nil || !s.OK() {
		return ExitFailure
	}
	return ExitSuccess
}

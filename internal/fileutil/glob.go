package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoMatch indicates a pattern matched no regular file.
var ErrNoMatch = errors.New("no files found matching")

// ResolvePatterns expands file paths and glob patterns into a sorted,
// de-duplicated list of regular files. "**" matches any number of
// directories. Every pattern must match at least one file.
func ResolvePatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var resolved []string

	for _, pattern := range patterns {
		matches, err := resolvePattern(pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, pattern)
		}
		for _, m := range matches {
			key := filepath.Clean(m)
			if !seen[key] {
				seen[key] = true
				resolved = append(resolved, key)
			}
		}
	}

	sort.Strings(resolved)
	return resolved, nil
}

func resolvePattern(pattern string) ([]string, error) {
	if FileExists(pattern) {
		return []string{pattern}, nil
	}

	// Unreadable directories are skipped; only a malformed pattern errors.
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return regularFiles(matches), nil
}

// regularFiles drops symlinks to non-regular targets and anything else
// that is not a plain file.
func regularFiles(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			out = append(out, p)
		}
	}
	return out
}

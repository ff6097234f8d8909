package mdpress

import (
	"fmt"
	"strings"
	"time"
)

// Format is an output format.
type Format string

// Supported output formats.
const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// ParseFormat parses a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (must be pdf or html)", ErrUnsupportedFormat, s)
}

// Extension returns the file extension for f, with the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Request describes one conversion run.
type Request struct {
	Files  []string // input Markdown paths, already resolved
	Format Format   // empty = settings output.format
	Theme  string   // empty = settings output.default_theme

	// OutputDir receives every output. Empty writes next to each input.
	OutputDir string
	// OutputName overrides the output file name for single-file runs.
	// Ignored when Files has more than one entry.
	OutputName string
}

// ConversionResult is the outcome for one input file.
type ConversionResult struct {
	InputPath  string
	OutputPath string // empty on failure
	Success    bool
	Err        error
	Duration   time.Duration
}

// ErrorMessage returns the failure reason, or "" on success.
func (r ConversionResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Summary aggregates a run. Results has one entry per input, in input order.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []ConversionResult
}

func (s *Summary) add(r ConversionResult) {
	s.Results = append(s.Results, r)
	s.Total++
	if r.Success {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

// OK reports whether every file converted.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

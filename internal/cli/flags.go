package cli

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// Output modes for md2pdf-batch.
const (
	OutputModeSameDir = "same-dir"
	OutputModeCustom  = "custom"
)

// commonFlags holds flags shared by both front ends.
type commonFlags struct {
	config   string
	logLevel string
}

// batchFlags holds md2pdf-batch flags.
type batchFlags struct {
	common     commonFlags
	files      []string
	format     string
	theme      string
	outputMode string
	outputDir  string
	jsonOutput bool
}

// addCommonFlags adds --config and --log-level to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.StringVar(&f.logLevel, "log-level", DefaultLogLevel, "log level: debug, info, warn, error")
}

// parseInteractiveFlags parses md2pdf flags. Positional args are rejected.
func parseInteractiveFlags(args []string, usage io.Writer) (*commonFlags, error) {
	fs := flag.NewFlagSet("md2pdf", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &commonFlags{}
	addCommonFlags(fs, f)
	fs.Usage = func() {
		fmt.Fprintln(usage, "Usage: md2pdf [flags]")
		fmt.Fprintln(usage, "\nConverts Markdown to PDF or HTML, prompting for files, format and theme.")
		fmt.Fprintln(usage, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, wrapParseError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments: %v", ErrUsage, fs.Args())
	}
	return f, nil
}

// parseBatchFlags parses md2pdf-batch flags. Positional args are added to
// --files, so "--files a.md b.md" works as expected.
func parseBatchFlags(args []string, usage io.Writer) (*batchFlags, error) {
	fs := flag.NewFlagSet("md2pdf-batch", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &batchFlags{}

	fs.StringArrayVarP(&f.files, "files", "f", nil, "Markdown file or glob pattern (repeatable)")
	fs.StringVar(&f.format, "format", "", "output format: pdf, html (default from config)")
	fs.StringVarP(&f.theme, "theme", "t", "", "theme name (default from config)")
	fs.StringVar(&f.outputMode, "output-mode", OutputModeSameDir, "where outputs go: same-dir, custom")
	fs.StringVarP(&f.outputDir, "output-dir", "o", "", "output directory (requires --output-mode custom)")
	fs.BoolVar(&f.jsonOutput, "json-output", false, "print a JSON summary instead of text")
	addCommonFlags(fs, &f.common)
	fs.Usage = func() {
		fmt.Fprintln(usage, "Usage: md2pdf-batch --files <path|glob>... [flags]")
		fmt.Fprintln(usage, "\nConverts every matched Markdown file. Exits 0 when all succeed, 1 otherwise.")
		fmt.Fprintln(usage, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, wrapParseError(err)
	}
	f.files = append(f.files, fs.Args()...)

	if err := f.validate(fs.Changed("output-mode")); err != nil {
		return nil, err
	}
	return f, nil
}

// validate checks flag combinations. An --output-dir without an explicit
// --output-mode implies custom.
func (f *batchFlags) validate(modeSet bool) error {
	if len(f.files) == 0 {
		return fmt.Errorf("%w: --files is required", ErrUsage)
	}
	switch f.outputMode {
	case OutputModeSameDir:
		if f.outputDir != "" {
			if modeSet {
				return fmt.Errorf("%w: --output-dir requires --output-mode %s", ErrUsage, OutputModeCustom)
			}
			f.outputMode = OutputModeCustom
		}
	case OutputModeCustom:
		if f.outputDir == "" {
			return fmt.Errorf("%w: --output-mode %s requires --output-dir", ErrUsage, OutputModeCustom)
		}
	default:
		return fmt.Errorf("%w: invalid --output-mode %q (same-dir or custom)", ErrUsage, f.outputMode)
	}
	return nil
}

// wrapParseError marks pflag errors as usage errors, keeping ErrHelp as is.
func wrapParseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/mdpress"
	"github.com/alnah/mdpress/internal/fileutil"
	"github.com/alnah/mdpress/internal/hints"
)

// Banner is printed when md2pdf starts.
const Banner = "=== md2pdf: Markdown to PDF/HTML Converter ==="

var formats = []string{string(mdpress.FormatPDF), string(mdpress.FormatHTML)}

// RunInteractive runs md2pdf with args (without the program name), prompting
// on env.Stdout and reading answers from env.Stdin. It returns the process
// exit code.
func RunInteractive(ctx context.Context, args []string, env *Environment) int {
	f, err := parseInteractiveFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	logger, err := NewLogger(env.Stderr, f.logLevel)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	settings, source, err := env.LoadConfig(f.config)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %s\n", describe(err, nil, nil))
		return exitCodeFor(err)
	}
	logger.Debug("config loaded", "source", source)

	conv, err := env.NewConverter(settings, logger)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %s\n", describe(err, settings, nil))
		return exitCodeFor(err)
	}
	themes, err := conv.Themes()
	if err == nil && len(themes) == 0 {
		err = fmt.Errorf("%w: no themes available", mdpress.ErrThemeNotFound)
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	p := newPrompter(env.Stdin, env.Stdout)
	fmt.Fprintln(env.Stdout, Banner)
	fmt.Fprintln(env.Stdout)

	pattern, ok := p.ask("Markdown file or glob pattern (empty to quit): ")
	if !ok || pattern == "" {
		fmt.Fprintln(env.Stdout, "Nothing to convert.")
		return ExitSuccess
	}
	files, err := fileutil.ResolvePatterns([]string{pattern})
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %s\n", describe(err, settings, themes))
		return exitCodeFor(err)
	}
	fmt.Fprintf(env.Stdout, "Found %d file(s).\n\n", len(files))

	format := mdpress.Format(formats[p.choose("Output format:", formats, indexOf(formats, settings.Output.Format))])
	fmt.Fprintln(env.Stdout)
	themeName := themes[p.choose("Theme:", themes, indexOf(themes, settings.Output.DefaultTheme))]
	fmt.Fprintln(env.Stdout)

	req := mdpress.Request{Files: files, Format: format, Theme: themeName}
	if len(files) == 1 {
		req.OutputName = askOutputName(p, files[0], format)
	}

	summary, err := conv.Convert(ctx, req)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %s\n", describe(err, settings, themes))
		return exitCodeFor(err)
	}

	fmt.Fprintln(env.Stdout)
	writeText(env.Stdout, summary)
	if hasTimeouts(summary) {
		fmt.Fprintln(env.Stderr, "Some files timed out."+hints.ForTimeout())
	}
	return exitCodeForSummary(summary)
}

// askOutputName offers the derived output name for a single file and
// returns the accepted one with its extension corrected. Empty keeps the
// default.
func askOutputName(p *prompter, input string, format mdpress.Format) string {
	def := mdpress.DefaultOutputName(input, format)
	name, ok := p.ask(fmt.Sprintf("Output filename [%s]: ", def))
	if !ok || name == "" {
		return ""
	}
	corrected := mdpress.CorrectExtension(name, format)
	if corrected != name {
		fmt.Fprintf(p.out, "Using %s\n", corrected)
	}
	return corrected
}

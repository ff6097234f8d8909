package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	flag "github.com/spf13/pflag"

	"github.com/alnah/mdpress"
	"github.com/alnah/mdpress/internal/config"
	"github.com/alnah/mdpress/internal/fileutil"
	"github.com/alnah/mdpress/internal/hints"
)

// batchRun carries state shared by the steps of one md2pdf-batch run.
type batchRun struct {
	env       *Environment
	flags     *batchFlags
	settings  *config.Settings
	available []string
}

// RunBatch runs md2pdf-batch with args (without the program name) and
// returns the process exit code.
func RunBatch(ctx context.Context, args []string, env *Environment) int {
	f, err := parseBatchFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	if f.format != "" {
		if _, err := mdpress.ParseFormat(f.format); err != nil {
			fmt.Fprintf(env.Stderr, "Error: %v\n", err)
			return exitCodeFor(err)
		}
	}

	logger, err := NewLogger(env.Stderr, f.common.logLevel)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	run := &batchRun{env: env, flags: f}
	summary, err := run.convert(ctx, logger)
	if err != nil {
		return run.fail(err)
	}

	if f.jsonOutput {
		if err := writeJSON(env.Stdout, summary); err != nil {
			fmt.Fprintf(env.Stderr, "Error: %v\n", err)
			return ExitFailure
		}
	} else {
		writeText(env.Stdout, summary)
		if hasTimeouts(summary) {
			fmt.Fprintln(env.Stderr, "Some files timed out."+hints.ForTimeout())
		}
	}
	return exitCodeForSummary(summary)
}

// convert checks preconditions in order (config, theme, files) and runs
// the conversion.
func (b *batchRun) convert(ctx context.Context, logger *slog.Logger) (*mdpress.Summary, error) {
	settings, source, err := b.env.LoadConfig(b.flags.common.config)
	if err != nil {
		return nil, err
	}
	b.settings = settings
	logger.Debug("config loaded", "source", source)

	conv, err := b.env.NewConverter(settings, logger)
	if err != nil {
		return nil, err
	}

	themeName := b.flags.theme
	if themeName == "" {
		themeName = settings.Output.DefaultTheme
	}
	if b.available, err = conv.Themes(); err != nil {
		return nil, err
	}
	if !slices.Contains(b.available, themeName) {
		return nil, fmt.Errorf("%w: %q", mdpress.ErrThemeNotFound, themeName)
	}

	files, err := fileutil.ResolvePatterns(b.flags.files)
	if err != nil {
		return nil, err
	}
	logger.Debug("files resolved", "count", len(files))

	req := mdpress.Request{
		Files:  files,
		Format: mdpress.Format(b.flags.format),
		Theme:  themeName,
	}
	if b.flags.outputMode == OutputModeCustom {
		req.OutputDir = b.flags.outputDir
	}
	return conv.Convert(ctx, req)
}

// fail reports a precondition failure and returns its exit code.
func (b *batchRun) fail(err error) int {
	if b.flags.jsonOutput {
		if werr := writeJSONError(b.env.Stdout, err); werr != nil {
			fmt.Fprintf(b.env.Stderr, "Error: %v\n", werr)
		}
	} else {
		fmt.Fprintf(b.env.Stderr, "Error: %s\n", describe(err, b.settings, b.available))
	}
	return exitCodeFor(err)
}

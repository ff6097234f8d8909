package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/alnah/mdpress/internal/rendersvc"
)

// PortEnv names the variable the renderer service reads its port from.
const PortEnv = "PORT"

// RunRenderer runs the md2pdf-renderer HTTP service until ctx is done and
// returns the process exit code. The port comes from $PORT, default 3000;
// 0 picks a free port.
func RunRenderer(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("md2pdf-renderer", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	pageTimeout := fs.Duration("page-timeout", rendersvc.DefaultPageTimeout, "page load and print timeout when the request sets none")
	maxBody := fs.Int64("max-body-bytes", rendersvc.DefaultMaxBodyBytes, "request body limit in bytes")
	fs.Usage = func() {
		fmt.Fprintln(env.Stderr, "Usage: md2pdf-renderer [flags]")
		fmt.Fprintln(env.Stderr, "\nServes /health, /render/pdf and /render/html on 127.0.0.1:$PORT (default 3000).")
		fmt.Fprintln(env.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "Error: %v\n", wrapParseError(err))
		return ExitUsage
	}

	logger, err := NewLogger(env.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}
	if *pageTimeout <= 0 || *maxBody <= 0 {
		fmt.Fprintln(env.Stderr, "Error: --page-timeout and --max-body-bytes must be positive")
		return ExitUsage
	}

	port, err := parsePort(env.Getenv(PortEnv))
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	ln, err := net.Listen("tcp", rendersvc.ListenAddr(port))
	if err != nil {
		logger.Error("listen failed", "port", port, "error", err)
		return ExitFailure
	}

	engine := env.NewEngine(*pageTimeout, logger)
	srv := rendersvc.NewServer(engine, rendersvc.WithLogger(logger), rendersvc.WithMaxBodyBytes(*maxBody))
	if err := srv.Serve(ctx, ln); err != nil {
		logger.Error("renderer stopped", "error", err)
		return ExitFailure
	}
	return ExitSuccess
}

// parsePort reads a TCP port. Empty means rendersvc.DefaultPort.
func parsePort(s string) (int, error) {
	if s == "" {
		return rendersvc.DefaultPort, nil
	}
	port, err := strconv.Atoi(s)
	if err != nil || port < 0 || port > 65535 {
		return 0, fmt.Errorf("%w: invalid %s %q (0-65535)", ErrUsage, PortEnv, s)
	}
	return port, nil
}

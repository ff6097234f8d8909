// Package cli implements the md2pdf and md2pdf-batch command-line front ends.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/mdpress"
	"github.com/alnah/mdpress/internal/config"
	"github.com/alnah/mdpress/internal/rendersvc"
)

// Converter is the part of mdpress.Converter the front ends use.
type Converter interface {
	Convert(ctx context.Context, req mdpress.Request) (*mdpress.Summary, error)
	Themes() ([]string, error)
}

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LoadConfig resolves settings from an explicit path or the search order.
	LoadConfig func(path string) (*config.Settings, string, error)
	// NewConverter builds the converter for a run.
	NewConverter func(settings *config.Settings, logger *slog.Logger) (Converter, error)

	// Getenv reads the renderer service's environment (PORT).
	Getenv func(key string) string
	// NewEngine builds the renderer service's PDF backend.
	NewEngine func(pageTimeout time.Duration, logger *slog.Logger) rendersvc.Engine
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		LoadConfig: config.Resolve,
		NewConverter: func(settings *config.Settings, logger *slog.Logger) (Converter, error) {
			return mdpress.NewConverter(settings, mdpress.WithLogger(logger))
		},
		Getenv: os.Getenv,
		NewEngine: func(pageTimeout time.Duration, logger *slog.Logger) rendersvc.Engine {
			return rendersvc.NewRodEngine(pageTimeout, logger)
		},
	}
}

// Compile-time interface check.
var _ Converter = (*mdpress.Converter)(nil)

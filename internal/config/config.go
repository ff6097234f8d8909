// Package config loads and validates md2pdf settings.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/alnah/mdpress/internal/yamlutil"
)

// Sentinel errors for config operations. All wrap ErrConfig.
var (
	ErrConfig         = errors.New("config error")
	ErrConfigNotFound = fmt.Errorf("%w: file not found", ErrConfig)
	ErrConfigParse    = fmt.Errorf("%w: failed to parse", ErrConfig)
	ErrConfigInvalid  = fmt.Errorf("%w: invalid settings", ErrConfig)
)

// Renderer defaults applied when the renderer section omits a field.
const (
	DefaultRendererCommand = "md2pdf-renderer"
	DefaultTimeout         = 60 * time.Second
	DefaultHealthTimeout   = 5 * time.Second
	DefaultHealthRetries   = 10
	DefaultHealthInterval  = 500 * time.Millisecond
	DefaultStopGrace       = 5 * time.Second
	DefaultMaxRestarts     = 1
	DefaultMermaidTheme    = "default"
	DefaultPageSize        = "letter"
	DefaultMargin          = "1in"
)

// Settings holds the full md2pdf configuration. Treat it as read-only once
// returned by Load or Parse.
type Settings struct {
	Output    OutputSettings           `yaml:"output"`
	PDF       PDFSettings              `yaml:"pdf_options"`
	Rendering RenderingSettings        `yaml:"rendering"`
	Themes    map[string]ThemeSettings `yaml:"themes"`
	Renderer  RendererSettings         `yaml:"renderer"`
	Assets    AssetsSettings           `yaml:"assets"`
}

// OutputSettings selects the default format and theme.
type OutputSettings struct {
	Format       string `yaml:"format"`        // "pdf" or "html"
	DefaultTheme string `yaml:"default_theme"` // e.g. "academic"
}

// PDFSettings are forwarded to the renderer service for every PDF.
type PDFSettings struct {
	PageSize        string  `yaml:"page_size"`
	Margins         Margins `yaml:"margins"`
	PrintBackground *bool   `yaml:"print_background"` // nil = true
}

// Background reports whether page backgrounds are printed.
func (p PDFSettings) Background() bool {
	return p.PrintBackground == nil || *p.PrintBackground
}

// Margins are CSS lengths such as "1in" or "20mm".
type Margins struct {
	Top    string `yaml:"top"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
	Right  string `yaml:"right"`
}

// RenderingSettings control in-document scripts.
type RenderingSettings struct {
	MathEngine       string   `yaml:"math_engine"` // katex, mathjax, none
	MermaidTheme     string   `yaml:"mermaid_theme"`
	WaitForRendering Duration `yaml:"wait_for_rendering"`
}

// ThemeSettings are per-theme overrides.
type ThemeSettings struct {
	MermaidTheme string `yaml:"mermaid_theme"`
}

// RendererSettings configure the external renderer process.
type RendererSettings struct {
	Command        string   `yaml:"command"`
	Args           []string `yaml:"args"`
	Port           int      `yaml:"port"` // 0 = pick a free port
	Timeout        Duration `yaml:"timeout"`
	HealthTimeout  Duration `yaml:"health_timeout"`
	HealthRetries  int      `yaml:"health_retries"`
	HealthInterval Duration `yaml:"health_interval"`
	StopGrace      Duration `yaml:"stop_grace"`
	MaxRestarts    *int     `yaml:"max_restarts"` // nil = DefaultMaxRestarts
}

// Restarts returns the restart budget for a single conversion run.
func (r RendererSettings) Restarts() int {
	if r.MaxRestarts == nil {
		return DefaultMaxRestarts
	}
	return *r.MaxRestarts
}

// AssetsSettings point at custom themes and templates.
type AssetsSettings struct {
	BasePath string `yaml:"base_path"` // empty = embedded assets only
}

// Duration is a time.Duration written as a Go duration string ("500ms").
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (d *Duration) UnmarshalYAML(data []byte) error {
	var s string
	if err := yamlutil.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MermaidThemeFor returns the diagram theme for a theme name: the per-theme
// override, then the global rendering theme, then "default".
func (s *Settings) MermaidThemeFor(theme string) string {
	if t, ok := s.Themes[theme]; ok && t.MermaidTheme != "" {
		return t.MermaidTheme
	}
	if s.Rendering.MermaidTheme != "" {
		return s.Rendering.MermaidTheme
	}
	return DefaultMermaidTheme
}

// Validate checks semantic constraints the schema cannot express.
// Called by Parse after defaults are applied.
func (s *Settings) Validate() error {
	if s.Output.DefaultTheme == "" {
		return fmt.Errorf("%w: output.default_theme is required", ErrConfigInvalid)
	}
	switch s.Output.Format {
	case "pdf", "html":
	default:
		return fmt.Errorf("%w: output.format: invalid value %q (must be pdf or html)", ErrConfigInvalid, s.Output.Format)
	}
	if s.Renderer.Port < 0 || s.Renderer.Port > 65535 {
		return fmt.Errorf("%w: renderer.port: must be between 0 and 65535, got %d", ErrConfigInvalid, s.Renderer.Port)
	}
	if s.Renderer.HealthRetries < 1 {
		return fmt.Errorf("%w: renderer.health_retries: must be at least 1, got %d", ErrConfigInvalid, s.Renderer.HealthRetries)
	}
	if s.Renderer.Restarts() < 0 {
		return fmt.Errorf("%w: renderer.max_restarts: must not be negative", ErrConfigInvalid)
	}
	durations := []struct {
		field string
		value Duration
	}{
		{"renderer.timeout", s.Renderer.Timeout},
		{"renderer.health_timeout", s.Renderer.HealthTimeout},
		{"renderer.health_interval", s.Renderer.HealthInterval},
		{"renderer.stop_grace", s.Renderer.StopGrace},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s: must be positive", ErrConfigInvalid, d.field)
		}
	}
	if s.Rendering.WaitForRendering < 0 {
		return fmt.Errorf("%w: rendering.wait_for_rendering: must not be negative", ErrConfigInvalid)
	}
	return nil
}

// applyDefaults fills optional fields left empty by the document.
func (s *Settings) applyDefaults() {
	if s.PDF.PageSize == "" {
		s.PDF.PageSize = DefaultPageSize
	}
	for _, m := range []*string{&s.PDF.Margins.Top, &s.PDF.Margins.Bottom, &s.PDF.Margins.Left, &s.PDF.Margins.Right} {
		if *m == "" {
			*m = DefaultMargin
		}
	}
	if s.Rendering.MathEngine == "" {
		s.Rendering.MathEngine = "katex"
	}
	if s.Rendering.MermaidTheme == "" {
		s.Rendering.MermaidTheme = DefaultMermaidTheme
	}
	if s.Themes == nil {
		s.Themes = map[string]ThemeSettings{}
	}
	r := &s.Renderer
	if r.Command == "" {
		r.Command = DefaultRendererCommand
	}
	if r.Timeout == 0 {
		r.Timeout = Duration(DefaultTimeout)
	}
	if r.HealthTimeout == 0 {
		r.HealthTimeout = Duration(DefaultHealthTimeout)
	}
	if r.HealthRetries == 0 {
		r.HealthRetries = DefaultHealthRetries
	}
	if r.HealthInterval == 0 {
		r.HealthInterval = Duration(DefaultHealthInterval)
	}
	if r.StopGrace == 0 {
		r.StopGrace = Duration(DefaultStopGrace)
	}
}

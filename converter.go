package mdpress

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/alnah/mdpress/internal/assets"
	"github.com/alnah/mdpress/internal/config"
	"github.com/alnah/mdpress/internal/fileutil"
	"github.com/alnah/mdpress/internal/pipeline"
	"github.com/alnah/mdpress/internal/theme"
)

// Converter turns Markdown files into themed HTML documents or PDFs.
// A Converter holds no per-run state; each Convert call owns its renderer.
type Converter struct {
	settings    *config.Settings
	loader      assets.AssetLoader
	themes      *theme.Provider
	markdown    *pipeline.MarkdownRenderer
	assembler   *pipeline.Assembler
	newRenderer func() Renderer
	logger      *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger for run progress and renderer events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithAssetLoader replaces the asset source (themes and document template).
func WithAssetLoader(loader assets.AssetLoader) Option {
	return func(c *Converter) { c.loader = loader }
}

// WithRendererFactory replaces how each PDF run obtains its Renderer.
func WithRendererFactory(fn func() Renderer) Option {
	return func(c *Converter) { c.newRenderer = fn }
}

// NewConverter creates a Converter. Nil settings use the built-in defaults.
// Assets come from settings.Assets.BasePath with embedded fallback unless
// WithAssetLoader is given; PDF runs spawn a ProcessRenderer configured from
// settings.Renderer unless WithRendererFactory is given.
func NewConverter(settings *config.Settings, opts ...Option) (*Converter, error) {
	if settings == nil {
		settings = config.Default()
	}
	c := &Converter{
		settings: settings,
		logger:   slog.Default(),
		markdown: pipeline.NewMarkdownRenderer(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		resolver, err := assets.NewAssetResolver(settings.Assets.BasePath)
		if err != nil {
			return nil, fmt.Errorf("loading assets: %w", err)
		}
		c.loader = resolver
	}

	tmpl, err := c.loader.LoadTemplate(assets.DocumentTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading document template: %w", err)
	}
	if c.assembler, err = pipeline.NewAssembler(tmpl); err != nil {
		return nil, err
	}
	c.themes = theme.NewProvider(c.loader, settings)

	if c.newRenderer == nil {
		ropts := append(RendererOptionsFrom(settings.Renderer), WithRendererLogger(c.logger))
		c.newRenderer = func() Renderer { return NewProcessRenderer(ropts...) }
	}
	return c, nil
}

// Settings returns the settings the Converter was built with.
func (c *Converter) Settings() *config.Settings {
	return c.settings
}

// Themes returns the available theme names, sorted.
func (c *Converter) Themes() ([]string, error) {
	return c.themes.List()
}

// job is the state of one Convert call.
type job struct {
	format     Format
	theme      *theme.Theme
	outputDir  string
	outputName string
	opts       *RenderOptions
	renderer   Renderer // nil for HTML runs
	restarts   int
}

// Convert converts req.Files in order. Preconditions (format, files, theme,
// renderer start) fail the whole run with an error and no Summary. After
// that, every file yields exactly one result; a failed file never stops
// the run.
func (c *Converter) Convert(ctx context.Context, req Request) (*Summary, error) {
	formatName := string(req.Format)
	if formatName == "" {
		formatName = c.settings.Output.Format
	}
	format, err := ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	if len(req.Files) == 0 {
		return nil, ErrNoFiles
	}

	themeName := req.Theme
	if themeName == "" {
		themeName = c.settings.Output.DefaultTheme
	}
	th, err := c.themes.Resolve(themeName)
	if err != nil {
		return nil, err
	}

	j := &job{
		format:     format,
		theme:      th,
		outputDir:  req.OutputDir,
		outputName: req.OutputName,
		opts:       RenderOptionsFrom(c.settings),
	}
	if len(req.Files) > 1 && j.outputName != "" {
		c.logger.Debug("ignoring output name for multi-file run", "name", j.outputName)
		j.outputName = ""
	}

	c.logger.Info("conversion started", "files", len(req.Files), "format", format, "theme", th.Name)

	if format == FormatHTML {
		return c.convertAll(ctx, j, req.Files), nil
	}

	var summary *Summary
	err = WithRenderer(ctx, c.newRenderer(), func(r Renderer) error {
		j.renderer = r
		summary = c.convertAll(ctx, j, req.Files)
		return nil
	})
	if summary == nil {
		return nil, err
	}
	if err != nil {
		c.logger.Warn("renderer did not stop cleanly", "error", err)
	}
	return summary, nil
}

func (c *Converter) convertAll(ctx context.Context, j *job, files []string) *Summary {
	summary := &Summary{Results: make([]ConversionResult, 0, len(files))}
	for _, input := range files {
		res := c.convertFile(ctx, j, input)
		if res.Success {
			c.logger.Info("converted", "input", res.InputPath, "output", res.OutputPath, "duration", res.Duration)
		} else {
			c.logger.Warn("conversion failed", "input", res.InputPath, "error", res.Err)
		}
		summary.add(res)
	}
	return summary
}

// convertFile converts one input, turning errors and panics into a failed
// result.
func (c *Converter) convertFile(ctx context.Context, j *job, input string) (res ConversionResult) {
	start := time.Now()
	res.InputPath = input

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic converting %s: %v", input, p)
			c.logger.Error("conversion panicked", "input", input, "panic", p, "stack", string(debug.Stack()))
		}
		res.Success = res.Err == nil
		if !res.Success {
			res.OutputPath = ""
		}
		res.Duration = time.Since(start)
	}()

	res.OutputPath, res.Err = c.convertOne(ctx, j, input)
	return res
}

func (c *Converter) convertOne(ctx context.Context, j *job, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	source, err := os.ReadFile(input) // #nosec G304 -- input paths are user-provided
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileRead, err)
	}

	frag, err := c.markdown.Render(ctx, source)
	if err != nil {
		return "", err
	}

	output := OutputPath(input, j.format, j.outputDir, j.outputName)
	content, err := c.rewritePaths(frag.HTML, input, output, j.format)
	if err != nil {
		return "", err
	}

	doc, err := c.assembler.Assemble(pipeline.Page{
		Title:        frag.Title,
		CSS:          j.theme.CSS,
		Content:      content,
		DiagramTheme: j.theme.DiagramTheme,
		MathEngine:   c.settings.Rendering.MathEngine,
	})
	if err != nil {
		return "", err
	}

	var data []byte
	switch j.format {
	case FormatPDF:
		if err := c.ensureRenderer(ctx, j); err != nil {
			return "", err
		}
		if data, err = j.renderer.RenderPDF(ctx, doc, j.opts); err != nil {
			return "", err
		}
	default:
		data = []byte(doc)
	}

	if err := writeOutput(output, data); err != nil {
		return "", err
	}
	return output, nil
}

// rewritePaths makes relative links and images absolute when the output
// cannot resolve them from the source directory: always for PDFs (the
// browser loads a temp file) and for HTML written elsewhere.
func (c *Converter) rewritePaths(fragment, input, output string, format Format) (string, error) {
	sourceDir, err := filepath.Abs(filepath.Dir(input))
	if err != nil {
		return fragment, nil
	}
	if format == FormatHTML {
		if outDir, err := filepath.Abs(filepath.Dir(output)); err == nil && outDir == sourceDir {
			return fragment, nil
		}
	}
	return pipeline.RewriteRelativePaths(fragment, sourceDir)
}

// ensureRenderer restarts a renderer that died mid-run, within the
// settings' restart budget.
func (c *Converter) ensureRenderer(ctx context.Context, j *job) error {
	if j.renderer.IsRunning() {
		return nil
	}
	budget := c.settings.Renderer.Restarts()
	if j.restarts >= budget {
		return fmt.Errorf("%w: %w (restart budget of %d spent)", ErrServer, ErrRendererNotRunning, budget)
	}
	j.restarts++
	c.logger.Warn("renderer exited unexpectedly, restarting", "attempt", j.restarts, "budget", budget)

	if err := j.renderer.Stop(); err != nil {
		c.logger.Debug("clearing exited renderer", "error", err)
	}
	return j.renderer.Start(ctx)
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), fileutil.DirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrFileWrite, err)
	}
	if err := os.WriteFile(path, data, fileutil.FilePermissions); err != nil { // #nosec G306 -- documents are meant to be shared
		return fmt.Errorf("%w: %w", ErrFileWrite, err)
	}
	return nil
}

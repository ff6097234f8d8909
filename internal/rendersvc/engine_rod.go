package rendersvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/mdpress/internal/fileutil"
	"github.com/alnah/mdpress/internal/process"
)

// Sentinel errors for browser operations.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// DefaultPageTimeout bounds page load and printing when the request
// context has no deadline.
const DefaultPageTimeout = 60 * time.Second

// RodEngine prints PDFs with a lazily launched headless Chrome.
// Safe for concurrent use; pages share one browser.
type RodEngine struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	logger   *slog.Logger
}

// NewRodEngine creates a RodEngine. The browser starts on first use.
func NewRodEngine(timeout time.Duration, logger *slog.Logger) *RodEngine {
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RodEngine{timeout: timeout, logger: logger}
}

// ensureBrowser launches and connects Chrome once.
// Honors ROD_BROWSER_BIN, and disables the sandbox for CI or ROD_NO_SANDBOX=1.
func (e *RodEngine) ensureBrowser() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return e.browser, nil
	}

	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.logger.Info("browser launched", "pid", l.PID())
	e.browser = browser
	e.launcher = l
	return browser, nil
}

// PrintPDF loads html from a temp file, waits for load plus the requested
// settle time, and prints it.
func (e *RodEngine) PrintPDF(ctx context.Context, html string, opts PDFOptions) ([]byte, error) {
	geo, err := resolveGeometry(opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := e.ensureBrowser()
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: fileURL(tmpPath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, classify(ctx, err))
	}
	defer func() { _ = page.Close() }()

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageLoad, classify(ctx, err))
	}

	// Let client-side scripts (diagrams, math) settle.
	if wait := time.Duration(opts.WaitForRendering) * time.Millisecond; wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	background := opts.PrintBackground == nil || *opts.PrintBackground
	reader, err := page.Timeout(timeout).PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(geo.width),
		PaperHeight:     floatPtr(geo.height),
		MarginTop:       floatPtr(geo.top),
		MarginBottom:    floatPtr(geo.bottom),
		MarginLeft:      floatPtr(geo.left),
		MarginRight:     floatPtr(geo.right),
		PrintBackground: background,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPDFGeneration, classify(ctx, err))
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// Close shuts the browser down and kills its process tree.
func (e *RodEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser == nil {
		return nil
	}

	err := e.browser.Close()
	if e.launcher != nil {
		if pid := e.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		e.launcher.Kill()
		e.launcher.Cleanup()
	}
	e.browser = nil
	e.launcher = nil
	return err
}

// classify maps rod timeouts onto context.DeadlineExceeded so the handler
// can answer 504.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return err
}

func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p := filepath.ToSlash(abs)
	if p[0] != '/' {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

func floatPtr(v float64) *float64 {
	return &v
}

// Compile-time interface check.
var _ Engine = (*RodEngine)(nil)

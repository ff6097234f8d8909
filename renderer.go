package mdpress

import (
	"context"
	"time"

	"github.com/alnah/mdpress/internal/config"
	"github.com/alnah/mdpress/internal/rendersvc"
)

// Renderer supervises an external renderer service and sends it requests.
// Implementations are not safe for concurrent use.
type Renderer interface {
	// Start brings the service up and waits until it reports healthy.
	// A no-op while a service is owned.
	Start(ctx context.Context) error
	// Stop terminates the service. A no-op when nothing is owned.
	Stop() error
	// IsRunning reports whether the owned process has not exited.
	IsRunning() bool
	HealthCheck(ctx context.Context) (*Health, error)
	RenderPDF(ctx context.Context, html string, opts *RenderOptions) ([]byte, error)
	RenderHTML(ctx context.Context, html string) (string, error)
}

// Health is the service's health report.
type Health struct {
	Status  string
	Service string
}

// Healthy reports whether the service is ready for requests.
func (h *Health) Healthy() bool {
	return h != nil && h.Status == rendersvc.StatusHealthy
}

// RendererState is a Renderer lifecycle state.
type RendererState int

// Lifecycle: NotStarted -> Starting -> Healthy -> Stopping -> NotStarted.
// A failed start returns to NotStarted.
const (
	StateNotStarted RendererState = iota
	StateStarting
	StateHealthy
	StateStopping
)

func (s RendererState) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateStarting:
		return "starting"
	case StateHealthy:
		return "healthy"
	case StateStopping:
		return "stopping"
	}
	return "unknown"
}

// Margins are CSS lengths ("1in", "20mm").
type Margins struct {
	Top, Bottom, Left, Right string
}

// RenderOptions control PDF page geometry and timing.
type RenderOptions struct {
	PageSize         string // letter, legal, tabloid, a3, a4, a5
	Margins          Margins
	PrintBackground  bool
	WaitForRendering time.Duration // settle time after load, for diagrams and math
}

// RenderOptionsFrom builds RenderOptions from settings.
func RenderOptionsFrom(s *config.Settings) *RenderOptions {
	return &RenderOptions{
		PageSize:         s.PDF.PageSize,
		Margins:          Margins(s.PDF.Margins),
		PrintBackground:  s.PDF.Background(),
		WaitForRendering: s.Rendering.WaitForRendering.Std(),
	}
}

// wire converts opts to the service request shape. Nil opts use the
// service defaults.
func (o *RenderOptions) wire() rendersvc.PDFOptions {
	if o == nil {
		return rendersvc.PDFOptions{}
	}
	bg := o.PrintBackground
	return rendersvc.PDFOptions{
		Format: o.PageSize,
		Margin: rendersvc.Margins{
			Top:    o.Margins.Top,
			Bottom: o.Margins.Bottom,
			Left:   o.Margins.Left,
			Right:  o.Margins.Right,
		},
		PrintBackground:  &bg,
		WaitForRendering: int(o.WaitForRendering / time.Millisecond),
	}
}

// WithRenderer starts r, runs fn, and stops r on every exit path, including
// a panic in fn. If Start fails, fn is not called. A Stop error is returned
// only when fn succeeded.
func WithRenderer(ctx context.Context, r Renderer, fn func(Renderer) error) (err error) {
	if err := r.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := r.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}()
	return fn(r)
}

// Package rendersvc implements the md2pdf renderer service: a small HTTP
// server that turns assembled HTML documents into PDFs with headless Chrome.
//
// The converter never links this package's engine in-process. It spawns the
// md2pdf-renderer binary with PORT set, waits for /health, and talks to it
// over loopback using the request and response types below.
//
//	GET  /health       -> Health
//	POST /render/pdf   PDFRequest  -> application/pdf
//	POST /render/html  HTMLRequest -> text/html (passthrough)
//
// Failures are answered with an ErrorResponse and a 4xx/5xx status.
package rendersvc

// ServiceName identifies the service in health responses.
const ServiceName = "md2pdf-renderer"

// StatusHealthy is the only status a ready service reports.
const StatusHealthy = "healthy"

// DefaultPort is used when PORT is unset.
const DefaultPort = 3000

// Routes.
const (
	PathHealth     = "/health"
	PathRenderPDF  = "/render/pdf"
	PathRenderHTML = "/render/html"
)

// RequestIDHeader correlates client and service log lines.
const RequestIDHeader = "X-Request-ID"

// Health is the /health response body.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// PDFRequest is the /render/pdf request body.
type PDFRequest struct {
	HTML    string     `json:"html"`
	Options PDFOptions `json:"options"`
}

// PDFOptions control page geometry and timing. PageSize and Margins are
// accepted as aliases of Format and Margin.
type PDFOptions struct {
	Format           string   `json:"format,omitempty"` // page size name, default letter
	PageSize         string   `json:"pageSize,omitempty"`
	Margin           Margins  `json:"margin"`
	Margins          *Margins `json:"margins,omitempty"`
	PrintBackground  *bool    `json:"printBackground,omitempty"`  // nil = true
	WaitForRendering int      `json:"waitForRendering,omitempty"` // milliseconds after load
}

// Normalized folds the alias fields into Format and Margin.
func (o PDFOptions) Normalized() PDFOptions {
	if o.Format == "" {
		o.Format = o.PageSize
	}
	if o.Margins != nil && o.Margin == (Margins{}) {
		o.Margin = *o.Margins
	}
	o.PageSize, o.Margins = "", nil
	return o
}

// Margins are CSS lengths ("1in", "20mm").
type Margins struct {
	Top    string `json:"top,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
	Right  string `json:"right,omitempty"`
}

// HTMLRequest is the /render/html request body.
type HTMLRequest struct {
	HTML string `json:"html"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

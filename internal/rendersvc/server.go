package rendersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Engine prints an HTML document to PDF.
type Engine interface {
	PrintPDF(ctx context.Context, html string, opts PDFOptions) ([]byte, error)
	Close() error
}

// DefaultMaxBodyBytes bounds request bodies (documents with inlined images
// can be large).
const DefaultMaxBodyBytes = 64 << 20

// Server routes renderer requests to an Engine.
type Server struct {
	engine  Engine
	logger  *slog.Logger
	maxBody int64
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxBodyBytes bounds request bodies. Panics if n <= 0.
func WithMaxBodyBytes(n int64) Option {
	if n <= 0 {
		panic("rendersvc: max body bytes must be positive")
	}
	return func(s *Server) { s.maxBody = n }
}

// NewServer creates a Server around engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		logger:  slog.Default(),
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(recoverer(s.logger))
	r.Use(requestLogger(s.logger))
	r.Get(PathHealth, s.handleHealth)
	r.Post(PathRenderPDF, s.handleRenderPDF)
	r.Post(PathRenderHTML, s.handleRenderHTML)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed on "+r.URL.Path)
	})
	s.router = r

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{Status: StatusHealthy, Service: ServiceName})
}

func (s *Server) handleRenderPDF(w http.ResponseWriter, r *http.Request) {
	var req PDFRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.HTML == "" {
		writeError(w, http.StatusBadRequest, "html is required")
		return
	}

	pdf, err := s.engine.PrintPDF(r.Context(), req.HTML, req.Options)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrInvalidOptions):
			status = http.StatusBadRequest
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		}
		s.logger.Error("pdf rendering failed", "error", err, "request_id", r.Header.Get(RequestIDHeader))
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleRenderHTML(w http.ResponseWriter, r *http.Request) {
	var req HTMLRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.HTML == "" {
		writeError(w, http.StatusBadRequest, "html is required")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(req.HTML))
}

// decode reads a bounded JSON body into v, answering 400/413 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// ShutdownTimeout bounds how long Serve waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Serve runs the server on ln until ctx is cancelled, then drains
// connections and closes the engine.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("renderer listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		s.logger.Info("renderer shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("shutdown: %w", err)
		}
	}

	if err := s.engine.Close(); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("closing engine: %w", err)
	}
	return serveErr
}

// ListenAddr returns the loopback address for a port.
func ListenAddr(port int) string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}

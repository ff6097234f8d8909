package mdpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/alnah/mdpress/internal/config"
	"github.com/alnah/mdpress/internal/fileutil"
	"github.com/alnah/mdpress/internal/process"
	"github.com/alnah/mdpress/internal/rendersvc"
)

// pdfMagic starts every PDF file.
var pdfMagic = []byte("%PDF-")

// maxErrorBody bounds how much of an error response ends up in messages.
const maxErrorBody = 512

// ProcessRenderer runs the renderer service as a child process on a
// loopback port and talks to it over HTTP.
type ProcessRenderer struct {
	command        string
	args           []string
	env            []string
	port           int
	timeout        time.Duration
	healthTimeout  time.Duration
	healthRetries  int
	healthInterval time.Duration
	stopGrace      time.Duration
	logger         *slog.Logger
	client         *http.Client

	state   RendererState
	baseURL string
	child   *child // nil when not started
}

// child is one spawned service process.
type child struct {
	cmd  *exec.Cmd
	done chan struct{} // closed when cmd.Wait returns
	err  error         // valid once done is closed
}

func (c *child) exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *child) reason() string {
	if c.err == nil {
		return "exit status 0"
	}
	return c.err.Error()
}

// RendererOption configures a ProcessRenderer.
type RendererOption func(*ProcessRenderer)

// NewProcessRenderer creates a ProcessRenderer. Nothing is spawned until Start.
func NewProcessRenderer(opts ...RendererOption) *ProcessRenderer {
	r := &ProcessRenderer{
		command:        config.DefaultRendererCommand,
		port:           rendersvc.DefaultPort,
		timeout:        config.DefaultTimeout,
		healthTimeout:  config.DefaultHealthTimeout,
		healthRetries:  config.DefaultHealthRetries,
		healthInterval: config.DefaultHealthInterval,
		stopGrace:      config.DefaultStopGrace,
		logger:         slog.Default(),
		client:         &http.Client{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithCommand sets the service executable and its arguments. A bare name is
// looked up next to the running executable, then on PATH.
func WithCommand(name string, args ...string) RendererOption {
	if name == "" {
		panic("mdpress: WithCommand name must not be empty")
	}
	return func(r *ProcessRenderer) {
		r.command = name
		r.args = args
	}
}

// WithEnv adds KEY=VALUE entries to the child's inherited environment.
func WithEnv(kv ...string) RendererOption {
	return func(r *ProcessRenderer) { r.env = append(r.env, kv...) }
}

// WithPort sets the listening port. 0 picks a free port at Start.
func WithPort(port int) RendererOption {
	if port < 0 || port > 65535 {
		panic("mdpress: WithPort port must be between 0 and 65535")
	}
	return func(r *ProcessRenderer) { r.port = port }
}

// WithTimeout bounds each render request.
func WithTimeout(d time.Duration) RendererOption {
	if d <= 0 {
		panic("mdpress: WithTimeout duration must be positive")
	}
	return func(r *ProcessRenderer) { r.timeout = d }
}

// WithHealthTimeout bounds each health probe.
func WithHealthTimeout(d time.Duration) RendererOption {
	if d <= 0 {
		panic("mdpress: WithHealthTimeout duration must be positive")
	}
	return func(r *ProcessRenderer) { r.healthTimeout = d }
}

// WithHealthRetries sets how many health probes Start makes.
func WithHealthRetries(n int) RendererOption {
	if n < 1 {
		panic("mdpress: WithHealthRetries must be at least 1")
	}
	return func(r *ProcessRenderer) { r.healthRetries = n }
}

// WithHealthInterval sets the fixed delay between health probes.
func WithHealthInterval(d time.Duration) RendererOption {
	if d <= 0 {
		panic("mdpress: WithHealthInterval duration must be positive")
	}
	return func(r *ProcessRenderer) { r.healthInterval = d }
}

// WithStopGrace sets how long Stop waits after SIGTERM before killing.
func WithStopGrace(d time.Duration) RendererOption {
	if d <= 0 {
		panic("mdpress: WithStopGrace duration must be positive")
	}
	return func(r *ProcessRenderer) { r.stopGrace = d }
}

// WithRendererLogger sets the logger for lifecycle events and child output.
func WithRendererLogger(l *slog.Logger) RendererOption {
	return func(r *ProcessRenderer) { r.logger = l }
}

// WithHTTPClient replaces the client used for service requests.
func WithHTTPClient(c *http.Client) RendererOption {
	return func(r *ProcessRenderer) { r.client = c }
}

// RendererOptionsFrom maps renderer settings to options.
func RendererOptionsFrom(s config.RendererSettings) []RendererOption {
	opts := []RendererOption{WithPort(s.Port)}
	if s.Command != "" {
		opts = append(opts, WithCommand(s.Command, s.Args...))
	}
	if s.Timeout > 0 {
		opts = append(opts, WithTimeout(s.Timeout.Std()))
	}
	if s.HealthTimeout > 0 {
		opts = append(opts, WithHealthTimeout(s.HealthTimeout.Std()))
	}
	if s.HealthRetries > 0 {
		opts = append(opts, WithHealthRetries(s.HealthRetries))
	}
	if s.HealthInterval > 0 {
		opts = append(opts, WithHealthInterval(s.HealthInterval.Std()))
	}
	if s.StopGrace > 0 {
		opts = append(opts, WithStopGrace(s.StopGrace.Std()))
	}
	return opts
}

// State returns the lifecycle state.
func (r *ProcessRenderer) State() RendererState {
	if r.state == StateHealthy && !r.IsRunning() {
		r.state = StateNotStarted
	}
	return r.state
}

// BaseURL returns the service address, or "" when not started.
func (r *ProcessRenderer) BaseURL() string {
	return r.baseURL
}

// Start spawns the service with PORT set and polls /health at a fixed
// interval until it reports healthy. A live child makes Start a no-op; an
// exited one is cleared and replaced. On failure the child is stopped and
// the error wraps ErrServerStart.
func (r *ProcessRenderer) Start(ctx context.Context) error {
	if r.IsRunning() {
		return nil
	}
	if r.child != nil {
		r.logger.Warn("renderer exited, starting a new one", "reason", r.child.reason())
		if err := r.Stop(); err != nil {
			r.logger.Debug("clearing exited renderer", "error", err)
		}
	}
	r.state = StateStarting

	if err := r.spawn(); err != nil {
		r.state = StateNotStarted
		return fmt.Errorf("%w: %v", ErrServerStart, err)
	}

	if err := r.waitHealthy(ctx); err != nil {
		if stopErr := r.Stop(); stopErr != nil {
			r.logger.Warn("stopping renderer after failed start", "error", stopErr)
		}
		return fmt.Errorf("%w: %v", ErrServerStart, err)
	}

	r.state = StateHealthy
	r.logger.Info("renderer ready", "url", r.baseURL, "pid", r.child.cmd.Process.Pid)
	return nil
}

func (r *ProcessRenderer) spawn() error {
	port, err := r.resolvePort()
	if err != nil {
		return err
	}
	command, err := resolveCommand(r.command)
	if err != nil {
		return err
	}

	cmd := exec.Command(command, r.args...) // #nosec G204 -- command comes from settings
	cmd.Env = append(append(os.Environ(), r.env...), "PORT="+strconv.Itoa(port))
	stdout := &logWriter{logger: r.logger, stream: "stdout", level: slog.LevelDebug}
	stderr := &logWriter{logger: r.logger, stream: "stderr", level: slog.LevelInfo}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Grandchildren (the browser) may hold the output pipes after the
	// service exits.
	cmd.WaitDelay = r.stopGrace
	process.Configure(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawning %s: %v", command, err)
	}

	c := &child{cmd: cmd, done: make(chan struct{})}
	go func() {
		c.err = cmd.Wait()
		// Wait has joined the copying goroutines, so no Write is in flight.
		stdout.Flush()
		stderr.Flush()
		close(c.done)
	}()

	r.child = c
	r.baseURL = "http://" + rendersvc.ListenAddr(port)
	r.logger.Debug("renderer spawned", "command", command, "pid", cmd.Process.Pid, "port", port)
	return nil
}

// resolvePort returns the configured port if it is free, or any free port
// when none is configured.
func (r *ProcessRenderer) resolvePort() (int, error) {
	ln, err := net.Listen("tcp", rendersvc.ListenAddr(r.port))
	if err != nil {
		return 0, fmt.Errorf("port %d unavailable: %v", r.port, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := ln.Close(); err != nil {
		return 0, fmt.Errorf("releasing port %d: %v", port, err)
	}
	return port, nil
}

// waitHealthy makes up to healthRetries probes, healthInterval apart.
// A child that exits ends the wait immediately.
func (r *ProcessRenderer) waitHealthy(ctx context.Context) error {
	backoff := retry.WithMaxRetries(uint64(r.healthRetries-1), retry.NewConstant(r.healthInterval))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if r.child.exited() {
			return fmt.Errorf("renderer exited during startup: %s", r.child.reason())
		}

		h, err := r.healthCheck(ctx)
		if err != nil {
			r.logger.Debug("renderer not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(fmt.Errorf("not healthy after %d attempts: %v", attempt, err))
		}
		if !h.Healthy() {
			return retry.RetryableError(fmt.Errorf("not healthy after %d attempts: status %q", attempt, h.Status))
		}
		return nil
	})
}

// IsRunning reports whether the owned child process has not exited.
func (r *ProcessRenderer) IsRunning() bool {
	return r.child != nil && !r.child.exited()
}

// HealthCheck queries /health, bounded by the health timeout.
func (r *ProcessRenderer) HealthCheck(ctx context.Context) (*Health, error) {
	if r.baseURL == "" {
		return nil, fmt.Errorf("%w: %w", ErrServer, ErrRendererNotRunning)
	}
	return r.healthCheck(ctx)
}

func (r *ProcessRenderer) healthCheck(ctx context.Context) (*Health, error) {
	data, err := r.do(ctx, http.MethodGet, rendersvc.PathHealth, nil, r.healthTimeout)
	if err != nil {
		return nil, err
	}
	var h rendersvc.Health
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: decoding health response: %v", ErrServer, err)
	}
	return &Health{Status: h.Status, Service: h.Service}, nil
}

// RenderPDF sends html to /render/pdf and returns the PDF bytes.
// Fails fast unless the service is healthy and its process alive.
func (r *ProcessRenderer) RenderPDF(ctx context.Context, html string, opts *RenderOptions) ([]byte, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	body := rendersvc.PDFRequest{HTML: html, Options: opts.wire()}
	data, err := r.do(ctx, http.MethodPost, rendersvc.PathRenderPDF, body, r.timeout)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%w: response is not a PDF (%d bytes)", ErrServer, len(data))
	}
	return data, nil
}

// RenderHTML sends html to /render/html and returns the service's output.
func (r *ProcessRenderer) RenderHTML(ctx context.Context, html string) (string, error) {
	if err := r.ready(); err != nil {
		return "", err
	}
	data, err := r.do(ctx, http.MethodPost, rendersvc.PathRenderHTML, rendersvc.HTMLRequest{HTML: html}, r.timeout)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *ProcessRenderer) ready() error {
	if r.state != StateHealthy || !r.IsRunning() {
		return fmt.Errorf("%w: %w", ErrServer, ErrRendererNotRunning)
	}
	return nil
}

// do sends one request bounded by timeout. Deadlines map to ErrTimeout,
// everything else to ErrServer.
func (r *ProcessRenderer) do(ctx context.Context, method, path string, payload any, timeout time.Duration) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding request: %v", ErrServer, err)
		}
		body = bytes.NewReader(buf)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(rendersvc.RequestIDHeader, requestID)

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, classifyRequestError(path, timeout, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyRequestError(path, timeout, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", ErrServer, method, path, resp.StatusCode, errorMessage(data))
	}

	r.logger.Debug("renderer request",
		"method", method,
		"path", path,
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return data, nil
}

func classifyRequestError(path string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrTimeout, path, timeout)
	}
	return fmt.Errorf("%w: %s: %w", ErrServer, path, err)
}

// errorMessage extracts the message from an error body.
func errorMessage(data []byte) string {
	var e rendersvc.ErrorResponse
	if err := json.Unmarshal(data, &e); err == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	if msg == "" {
		msg = "empty response"
	}
	return msg
}

// Stop sends SIGTERM to the child's process group, waits up to the stop
// grace period, then kills the group. The handle is always cleared.
func (r *ProcessRenderer) Stop() error {
	if r.child == nil {
		return nil
	}
	r.state = StateStopping

	c := r.child
	pid := c.cmd.Process.Pid
	defer func() {
		r.child = nil
		r.baseURL = ""
		r.state = StateNotStarted
	}()

	if c.exited() {
		r.logger.Debug("renderer already exited", "pid", pid, "reason", c.reason())
		return nil
	}

	if err := process.Terminate(c.cmd.Process); err != nil {
		r.logger.Debug("terminate failed", "pid", pid, "error", err)
	}
	select {
	case <-c.done:
		r.logger.Debug("renderer stopped", "pid", pid)
		return nil
	case <-time.After(r.stopGrace):
	}

	r.logger.Warn("renderer ignored SIGTERM, killing", "pid", pid, "grace", r.stopGrace)
	process.KillProcessGroup(pid)
	_ = c.cmd.Process.Kill()

	select {
	case <-c.done:
		return nil
	case <-time.After(r.stopGrace):
		return fmt.Errorf("%w: pid %d did not exit after kill", ErrServer, pid)
	}
}

// resolveCommand finds the service binary. Names with a path separator are
// used as given.
func resolveCommand(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return name, nil
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), name)
		if runtime.GOOS == "windows" && filepath.Ext(candidate) == "" {
			candidate += ".exe"
		}
		if fileutil.FileExists(candidate) {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("renderer command %q not found: %v", name, err)
	}
	return path, nil
}

// logWriter forwards child output to the logger line by line. A line split
// across writes is held until its newline arrives or Flush is called.
// It is not safe for concurrent use; exec.Cmd writes each stream from a
// single goroutine.
type logWriter struct {
	logger *slog.Logger
	stream string
	level  slog.Level
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) == 0 {
		w.buf = nil
	}
	return len(p), nil
}

// Flush logs any trailing output that never got a newline.
func (w *logWriter) Flush() {
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *logWriter) emit(line []byte) {
	if text := strings.TrimSpace(string(line)); text != "" {
		w.logger.Log(context.Background(), w.level, "renderer output", "stream", w.stream, "line", text)
	}
}

// Compile-time interface check.
var _ Renderer = (*ProcessRenderer)(nil)

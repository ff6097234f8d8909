package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alnah/mdpress"
	"github.com/alnah/mdpress/internal/config"
	"github.com/alnah/mdpress/internal/rendersvc"
)

// fakeConverter records requests and fabricates summaries. Inputs whose
// base name is in fail produce a failed result with that error.
type fakeConverter struct {
	themes     []string
	themesErr  error
	convertErr error
	fail       map[string]error

	requests []mdpress.Request
}

func (f *fakeConverter) Convert(_ context.Context, req mdpress.Request) (*mdpress.Summary, error) {
	f.requests = append(f.requests, req)
	if f.convertErr != nil {
		return nil, f.convertErr
	}

	format := req.Format
	if format == "" {
		format = mdpress.FormatPDF
	}
	s := &mdpress.Summary{}
	for _, in := range req.Files {
		r := mdpress.ConversionResult{InputPath: in}
		if err := f.fail[filepath.Base(in)]; err != nil {
			r.Err = err
			s.Failed++
		} else {
			r.Success = true
			r.OutputPath = mdpress.OutputPath(in, format, req.OutputDir, req.OutputName)
			s.Succeeded++
		}
		s.Total++
		s.Results = append(s.Results, r)
	}
	return s, nil
}

func (f *fakeConverter) Themes() ([]string, error) {
	if f.themesErr != nil {
		return nil, f.themesErr
	}
	return f.themes, nil
}

// fakeEngine is a rendersvc.Engine that records Close.
type fakeEngine struct {
	closed chan struct{}
}

func (e *fakeEngine) PrintPDF(context.Context, string, rendersvc.PDFOptions) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

func (e *fakeEngine) Close() error {
	close(e.closed)
	return nil
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testEnv is an Environment on buffers with a fake converter.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *syncBuffer
	conv   *fakeConverter
	engine *fakeEngine
	vars   map[string]string
}

func newTestEnv(t *testing.T, stdin string) *testEnv {
	t.Helper()
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &syncBuffer{},
		conv:   &fakeConverter{themes: []string{"academic", "minimal", "modern", "presentation"}},
		engine: &fakeEngine{closed: make(chan struct{})},
		vars:   map[string]string{},
	}
	te.Environment = &Environment{
		Stdin:  strings.NewReader(stdin),
		Stdout: te.stdout,
		Stderr: te.stderr,
		LoadConfig: func(string) (*config.Settings, string, error) {
			return config.Default(), config.SourceEmbedded, nil
		},
		NewConverter: func(*config.Settings, *slog.Logger) (Converter, error) {
			return te.conv, nil
		},
		Getenv: func(key string) string { return te.vars[key] },
		NewEngine: func(time.Duration, *slog.Logger) rendersvc.Engine {
			return te.engine
		},
	}
	return te
}

// writeMarkdown creates Markdown files under dir and returns their paths.
func writeMarkdown(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte("# "+name+"\n"), 0o600))
		paths = append(paths, p)
	}
	return paths
}

package cli

// Notes:
// - Answers are fed through Environment.Stdin, one per line. Exhausted
//   input accepts the remaining defaults.

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/mdpress"
	"github.com/alnah/mdpress/internal/config"
)

// ---------------------------------------------------------------------------
// TestRunInteractive_SingleFile - Full prompt sequence for one file
// ---------------------------------------------------------------------------

func TestRunInteractive_SingleFile(t *testing.T) {
	t.Parallel()

	files := writeMarkdown(t, t.TempDir(), "notes.md")
	stdin := strings.Join([]string{files[0], "2", "3", "report.pdf"}, "\n") + "\n"
	te := newTestEnv(t, stdin)

	code := RunInteractive(context.Background(), nil, te.Environment)

	require.Equal(t, ExitSuccess, code, "stderr: %s", te.stderr)
	require.Len(t, te.conv.requests, 1)
	req := te.conv.requests[0]
	assert.Equal(t, files, req.Files)
	assert.Equal(t, mdpress.FormatHTML, req.Format)
	assert.Equal(t, "modern", req.Theme)
	assert.Equal(t, "report.html", req.OutputName, "extension follows the format")

	out := te.stdout.String()
	assert.True(t, strings.HasPrefix(out, Banner))
	assert.Contains(t, out, "1) pdf (default)")
	assert.Contains(t, out, "1) academic (default)")
	assert.Contains(t, out, "Output filename [notes.html]: ")
	assert.Contains(t, out, "Using report.html")
	assert.Contains(t, out, "Converted 1/1 files")
}

// ---------------------------------------------------------------------------
// TestRunInteractive_Defaults - Empty answers accept the marked defaults
// ---------------------------------------------------------------------------

func TestRunInteractive_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tail string
	}{
		{"empty answers", "\n\n\n"},
		{"input ends after the file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			files := writeMarkdown(t, t.TempDir(), "notes.md")
			te := newTestEnv(t, files[0]+"\n"+tt.tail)

			code := RunInteractive(context.Background(), nil, te.Environment)

			require.Equal(t, ExitSuccess, code, "stderr: %s", te.stderr)
			req := te.conv.requests[0]
			assert.Equal(t, mdpress.FormatPDF, req.Format)
			assert.Equal(t, "academic", req.Theme)
			assert.Empty(t, req.OutputName)
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunInteractive_DefaultsFromSettings - Marked defaults follow the config
// ---------------------------------------------------------------------------

func TestRunInteractive_DefaultsFromSettings(t *testing.T) {
	t.Parallel()

	files := writeMarkdown(t, t.TempDir(), "notes.md")
	te := newTestEnv(t, files[0]+"\n")
	te.LoadConfig = func(string) (*config.Settings, string, error) {
		s := config.Default()
		s.Output.Format = "html"
		s.Output.DefaultTheme = "minimal"
		return s, "test", nil
	}

	code := RunInteractive(context.Background(), nil, te.Environment)

	require.Equal(t, ExitSuccess, code, "stderr: %s", te.stderr)
	assert.Contains(t, te.stdout.String(), "2) html (default)")
	assert.Contains(t, te.stdout.String(), "2) minimal (default)")
	req := te.conv.requests[0]
	assert.Equal(t, mdpress.FormatHTML, req.Format)
	assert.Equal(t, "minimal", req.Theme)
}

// ---------------------------------------------------------------------------
// TestRunInteractive_Glob - Several files skip the filename prompt
// ---------------------------------------------------------------------------

func TestRunInteractive_Glob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeMarkdown(t, dir, "a.md", "b.md", "sub/c.md")
	te := newTestEnv(t, filepath.Join(dir, "**", "*.md")+"\nhtml\npresentation\n")

	code := RunInteractive(context.Background(), nil, te.Environment)

	require.Equal(t, ExitSuccess, code, "stderr: %s", te.stderr)
	req := te.conv.requests[0]
	assert.Len(t, req.Files, 3)
	assert.Equal(t, mdpress.FormatHTML, req.Format, "option names are accepted")
	assert.Equal(t, "presentation", req.Theme)
	assert.Contains(t, te.stdout.String(), "Found 3 file(s).")
	assert.NotContains(t, te.stdout.String(), "Output filename")
}

// ---------------------------------------------------------------------------
// TestRunInteractive_InvalidChoice - Out-of-range answers are asked again
// ---------------------------------------------------------------------------

func TestRunInteractive_InvalidChoice(t *testing.T) {
	t.Parallel()

	files := writeMarkdown(t, t.TempDir(), "notes.md")
	te := newTestEnv(t, files[0]+"\n9\nword\n2\n\n\n")

	code := RunInteractive(context.Background(), nil, te.Environment)

	require.Equal(t, ExitSuccess, code, "stderr: %s", te.stderr)
	assert.Equal(t, 2, strings.Count(te.stdout.String(), "Please enter a number between 1 and 2."))
	assert.Equal(t, mdpress.FormatHTML, te.conv.requests[0].Format)
}

// ---------------------------------------------------------------------------
// TestRunInteractive_Quit - Empty file answer exits without converting
// ---------------------------------------------------------------------------

func TestRunInteractive_Quit(t *testing.T) {
	t.Parallel()

	for _, stdin := range []string{"\n", ""} {
		te := newTestEnv(t, stdin)

		code := RunInteractive(context.Background(), nil, te.Environment)

		assert.Equal(t, ExitSuccess, code)
		assert.Contains(t, te.stdout.String(), "Nothing to convert.")
		assert.Empty(t, te.conv.requests)
	}
}

// ---------------------------------------------------------------------------
// TestRunInteractive_Failures - Non-zero exits
// ---------------------------------------------------------------------------

func TestRunInteractive_Failures(t *testing.T) {
	t.Parallel()

	t.Run("no match", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t, filepath.Join(t.TempDir(), "*.md")+"\n")

		code := RunInteractive(context.Background(), nil, te.Environment)

		assert.Equal(t, ExitFailure, code)
		assert.Contains(t, te.stderr.String(), "no files found matching")
		assert.Empty(t, te.conv.requests)
	})

	t.Run("file failed", func(t *testing.T) {
		t.Parallel()

		files := writeMarkdown(t, t.TempDir(), "notes.md")
		te := newTestEnv(t, files[0]+"\n")
		te.conv.fail = map[string]error{"notes.md": fmt.Errorf("%w: nope", mdpress.ErrFileRead)}

		code := RunInteractive(context.Background(), nil, te.Environment)

		assert.Equal(t, ExitFailure, code)
		assert.Contains(t, te.stdout.String(), "Converted 0/1 files")
	})

	t.Run("renderer start failure", func(t *testing.T) {
		t.Parallel()

		files := writeMarkdown(t, t.TempDir(), "notes.md")
		te := newTestEnv(t, files[0]+"\n")
		te.conv.convertErr = fmt.Errorf("%w: exited", mdpress.ErrServerStart)

		code := RunInteractive(context.Background(), nil, te.Environment)

		assert.Equal(t, ExitFailure, code)
		assert.Contains(t, te.stderr.String(), "hint:")
	})

	t.Run("positional args", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t, "")

		code := RunInteractive(context.Background(), []string{"notes.md"}, te.Environment)

		assert.Equal(t, ExitUsage, code)
		assert.Contains(t, te.stderr.String(), "unexpected arguments")
	})

	t.Run("no themes", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t, "")
		te.conv.themes = nil

		code := RunInteractive(context.Background(), nil, te.Environment)

		assert.Equal(t, ExitFailure, code)
		assert.Contains(t, te.stderr.String(), "no themes available")
	})
}

// ---------------------------------------------------------------------------
// TestPrompter_Choose - Choice parsing
// ---------------------------------------------------------------------------

func TestPrompter_Choose(t *testing.T) {
	t.Parallel()

	options := []string{"pdf", "html"}
	tests := []struct {
		name  string
		input string
		def   int
		want  int
	}{
		{"number", "2\n", 0, 1},
		{"name", "PDF\n", 1, 0},
		{"empty picks default", "\n", 1, 1},
		{"end of input picks default", "", 1, 1},
		{"retry after zero", "0\n1\n", 1, 0},
		{"surrounding spaces", "  2  \n", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out strings.Builder
			p := newPrompter(strings.NewReader(tt.input), &out)

			assert.Equal(t, tt.want, p.choose("Format:", options, tt.def))
		})
	}
}

func TestIndexOf(t *testing.T) {
	t.Parallel()

	list := []string{"academic", "modern"}
	assert.Equal(t, 1, indexOf(list, "modern"))
	assert.Equal(t, 0, indexOf(list, "missing"))
}

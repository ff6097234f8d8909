package pipeline

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/alnah/mdpress/internal/assets"
)

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	src, err := assets.NewEmbeddedLoader().LoadTemplate(assets.DocumentTemplate)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	a, err := NewAssembler(src)
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}
	return a
}

// titles returns the text of every <title> element in a parsed document.
func titles(t *testing.T, doc string) []string {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			var b strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				b.WriteString(c.Data)
			}
			out = append(out, b.String())
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// ---------------------------------------------------------------------------
// TestAssembler_Assemble - Complete documents from the embedded template
// ---------------------------------------------------------------------------

func TestAssembler_Assemble(t *testing.T) {
	t.Parallel()

	a := newTestAssembler(t)

	tests := []struct {
		name         string
		page         Page
		wantTitle    string
		wantContains []string
		wantExcludes []string
	}{
		{
			name: "full page",
			page: Page{
				Title:        "Title",
				CSS:          ".markdown-body { font-family: serif; }",
				Content:      "<h1>Title</h1>\n<p>Body text</p>",
				DiagramTheme: "dark",
				MathEngine:   "katex",
			},
			wantTitle: "Title",
			wantContains: []string{
				"<!DOCTYPE html>",
				"<style>",
				".markdown-body { font-family: serif; }",
				`<article class="markdown-body">`,
				"<h1>Title</h1>",
				"Body text",
				"theme: 'dark'",
				"katex",
				".chroma",
			},
			wantExcludes: []string{"mathjax"},
		},
		{
			name:      "empty title falls back",
			page:      Page{Content: "<p>x</p>", MathEngine: "none", DiagramTheme: "default"},
			wantTitle: UntitledDocument,
			wantExcludes: []string{"katex", "MathJax"},
		},
		{
			name:         "mathjax",
			page:         Page{Title: "M", MathEngine: "mathjax"},
			wantTitle:    "M",
			wantContains: []string{"MathJax-script"},
		},
		{
			name:         "title is escaped",
			page:         Page{Title: "A <b> & C"},
			wantTitle:    "A <b> & C",
			wantContains: []string{"A &lt;b&gt; &amp; C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := a.Assemble(tt.page)
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if !strings.HasPrefix(got, "<!DOCTYPE html>") {
				t.Errorf("document should start with <!DOCTYPE html>, got %q", got[:min(len(got), 40)])
			}
			ts := titles(t, got)
			if len(ts) != 1 {
				t.Fatalf("found %d <title> elements, want 1", len(ts))
			}
			if ts[0] != tt.wantTitle {
				t.Errorf("<title> = %q, want %q", ts[0], tt.wantTitle)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("document missing %q", want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("document should not contain %q", exclude)
				}
			}
		})
	}
}

func TestNewAssembler_BadTemplate(t *testing.T) {
	t.Parallel()

	if _, err := NewAssembler("{{ .Title "); !errors.Is(err, ErrAssemble) {
		t.Errorf("error = %v, want ErrAssemble", err)
	}
}

func TestAssembler_ExecuteError(t *testing.T) {
	t.Parallel()

	a, err := NewAssembler(`<!DOCTYPE html><title>{{ .Missing }}</title>`)
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}
	if _, err := a.Assemble(Page{Title: "x"}); !errors.Is(err, ErrAssemble) {
		t.Errorf("error = %v, want ErrAssemble", err)
	}
}

func TestHighlightCSS(t *testing.T) {
	t.Parallel()

	css, err := HighlightCSS(HighlightStyle)
	if err != nil {
		t.Fatalf("HighlightCSS() error = %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("highlight CSS missing .chroma selector")
	}
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrMarkdown indicates Markdown conversion failed.
var ErrMarkdown = errors.New("markdown conversion failed")

// UntitledDocument is the title used when a document has no level-1 heading.
const UntitledDocument = "Untitled Document"

// DiagramLanguage is the fenced code block language rendered as a diagram.
const DiagramLanguage = "mermaid"

// HighlightStyle is the chroma style used for code block colors.
const HighlightStyle = "github"

// Fragment is the HTML rendering of one Markdown document.
type Fragment struct {
	HTML  string
	Title string
}

// MarkdownRenderer converts Markdown into HTML fragments.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer creates a MarkdownRenderer with GFM tables, footnotes,
// raw HTML passthrough, chroma highlighting and diagram blocks.
func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(), // documents are trusted local files
			renderer.WithNodeRenderers(
				util.Prioritized(newCodeBlockRenderer(), 100),
			),
		),
	)
	return &MarkdownRenderer{md: md}
}

// Render converts source to an HTML fragment and extracts its title.
// Goldmark does not take a context, so cancellation is checked up front only.
func (r *MarkdownRenderer) Render(ctx context.Context, source []byte) (*Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := r.md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarkdown, err)
	}

	return &Fragment{HTML: buf.String(), Title: extractTitle(doc, source)}, nil
}

// extractTitle returns the text of the first level-1 heading.
func extractTitle(doc ast.Node, source []byte) string {
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = plainText(h, source)
			if title != "" {
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	if title == "" {
		return UntitledDocument
	}
	return title
}

// plainText concatenates the text leaves under n, dropping inline markup.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// codeBlockRenderer writes diagram blocks as <pre class="mermaid"> for the
// in-page diagram script and hands every other fenced block to chroma.
type codeBlockRenderer struct {
	highlight renderer.NodeRendererFunc
}

func newCodeBlockRenderer() *codeBlockRenderer {
	hl := highlighting.NewHTMLRenderer(
		highlighting.WithStyle(HighlightStyle),
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(true),
		),
	)
	capture := &funcCapture{kind: ast.KindFencedCodeBlock}
	hl.RegisterFuncs(capture)
	return &codeBlockRenderer{highlight: capture.fn}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	block := node.(*ast.FencedCodeBlock)
	if string(block.Language(source)) != DiagramLanguage {
		return r.highlight(w, source, node, entering)
	}

	if entering {
		_, _ = w.WriteString(`<pre class="mermaid">`)
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			html.DefaultWriter.RawWrite(w, seg.Value(source))
		}
	} else {
		_, _ = w.WriteString("</pre>\n")
	}
	return ast.WalkSkipChildren, nil
}

// funcCapture records the render function another NodeRenderer registers
// for one node kind.
type funcCapture struct {
	kind ast.NodeKind
	fn   renderer.NodeRendererFunc
}

func (c *funcCapture) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	if kind == c.kind {
		c.fn = fn
	}
}

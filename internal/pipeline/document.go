package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/Masterminds/sprig/v3"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrAssemble indicates the document template could not be parsed or executed.
var ErrAssemble = errors.New("document assembly failed")

// Page is everything the document template needs for one output file.
type Page struct {
	Title        string
	CSS          string // theme stylesheet
	Content      string // HTML fragment, trusted
	DiagramTheme string
	MathEngine   string // katex, mathjax, none
}

// templateData is the template's view of a Page. Content and CSS are marked
// safe so html/template inlines them verbatim.
type templateData struct {
	Title        string
	CSS          template.CSS
	Content      template.HTML
	DiagramTheme string
	MathEngine   string
}

// Assembler renders pages through the document template.
type Assembler struct {
	tmpl         *template.Template
	highlightCSS string
}

// NewAssembler parses the document template. Sprig functions are available
// to templates.
func NewAssembler(source string) (*Assembler, error) {
	tmpl, err := template.New("document").Funcs(sprig.FuncMap()).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssemble, err)
	}
	css, err := HighlightCSS(HighlightStyle)
	if err != nil {
		return nil, err
	}
	return &Assembler{tmpl: tmpl, highlightCSS: css}, nil
}

// Assemble renders one complete HTML document.
func (a *Assembler) Assemble(p Page) (string, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = UntitledDocument
	}
	data := templateData{
		Title:        title,
		CSS:          template.CSS(p.CSS + "\n" + a.highlightCSS), // #nosec G203 -- theme CSS comes from trusted assets
		Content:      template.HTML(p.Content),                     // #nosec G203 -- rendered from local Markdown
		DiagramTheme: p.DiagramTheme,
		MathEngine:   p.MathEngine,
	}

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssemble, err)
	}
	return buf.String(), nil
}

// HighlightCSS returns the chroma class stylesheet for a style name.
// Unknown names fall back to chroma's default style.
func HighlightCSS(style string) (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(style)); err != nil {
		return "", fmt.Errorf("%w: highlight css: %v", ErrAssemble, err)
	}
	return buf.String(), nil
}

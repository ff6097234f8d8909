// Package mdpress converts Markdown files to themed HTML documents or PDFs.
//
// # Quick Start
//
// Create a converter with the built-in settings and convert a batch:
//
//	conv, err := mdpress.NewConverter(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	summary, err := conv.Convert(ctx, mdpress.Request{
//	    Files:  []string{"notes.md", "report.md"},
//	    Format: mdpress.FormatPDF,
//	    Theme:  "academic",
//	})
//	if err != nil {
//	    log.Fatal(err) // unknown theme, renderer failed to start, ...
//	}
//	fmt.Printf("converted %d/%d\n", summary.Succeeded, summary.Total)
//
// # Conversion Pipeline
//
// Each file goes through these stages, independently of the others:
//
//  1. Markdown to HTML via Goldmark (GFM, footnotes, chroma highlighting,
//     mermaid blocks left for the in-page diagram script)
//  2. Title extraction from the first level-1 heading
//  3. Relative image and link paths rewritten to file:// URLs
//  4. Assembly into a full document with the theme CSS and the document
//     template
//  5. HTML: written as is. PDF: sent to the renderer service
//
// A failure in any stage fails that file only. Summary.Results always holds
// one entry per input.
//
// # Renderer Service
//
// PDFs are printed by md2pdf-renderer, a separate process that drives
// headless Chrome. ProcessRenderer spawns it with PORT set, polls GET
// /health at a fixed interval, sends POST /render/pdf requests, and stops it
// with SIGTERM then SIGKILL after a grace period. Convert holds one renderer
// for the whole run through WithRenderer, which stops it on every exit path.
//
// Tests and embedders can supply any Renderer with WithRendererFactory.
//
// # Error Handling
//
// Preconditions fail Convert with an error and no Summary:
//
//	summary, err := conv.Convert(ctx, req)
//	switch {
//	case errors.Is(err, mdpress.ErrThemeNotFound):
//	    // unknown theme
//	case errors.Is(err, mdpress.ErrServerStart):
//	    // renderer never became healthy
//	case errors.Is(err, mdpress.ErrNoFiles):
//	    // nothing to convert
//	}
//
// Per-file failures are reported in ConversionResult.Err and wrap
// ErrFileRead, ErrFileWrite, ErrServer or ErrTimeout.
package mdpress

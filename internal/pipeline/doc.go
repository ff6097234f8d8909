// Package pipeline turns Markdown into a complete, styled HTML document.
//
// Stages:
//   - Markdown to an HTML fragment via goldmark (GFM, footnotes, raw HTML),
//     with the document title taken from the first level-1 heading
//   - relative image and link paths rewritten to file:// URLs, so a document
//     rendered away from its source directory still finds its assets
//   - assembly of fragment, theme CSS, math and diagram scripts into a page
//     from an html/template
//
// PDF rasterization is not done here: the assembled page is handed to the
// renderer service by the root mdpress package.
package pipeline

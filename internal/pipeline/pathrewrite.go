package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteRelativePaths converts relative img[src] and a[href] values in an
// HTML fragment to absolute file:// URLs rooted at sourceDir.
// If sourceDir is empty, returns the fragment unchanged.
//
// URLs, anchors, absolute paths and paths escaping sourceDir are left as-is.
// Media and script elements are never rewritten.
func RewriteRelativePaths(fragment, sourceDir string) (string, error) {
	if sourceDir == "" {
		return fragment, nil
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for _, n := range nodes {
		rewriteNode(n, absSourceDir)
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, sourceDir string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", sourceDir)
		case atom.A:
			rewriteAttr(n, "href", sourceDir)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, sourceDir)
	}
}

func rewriteAttr(n *html.Node, key, sourceDir string) {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativePath(attr.Val) {
			continue
		}

		// Keep the fragment suffix (#section) and any query intact.
		path, suffix := splitSuffix(attr.Val)
		absPath := filepath.Join(sourceDir, filepath.FromSlash(path))
		if !isPathUnderDir(absPath, sourceDir) {
			continue
		}
		n.Attr[i].Val = pathToFileURL(absPath) + suffix
	}
}

// isRelativePath reports whether a path should be rewritten.
func isRelativePath(path string) bool {
	switch {
	case path == "",
		strings.HasPrefix(path, "#"),
		strings.HasPrefix(path, "//"),
		filepath.IsAbs(path),
		strings.HasPrefix(path, "/"):
		return false
	}
	if u, err := url.Parse(path); err != nil || u.Scheme != "" {
		return false
	}
	return true
}

func splitSuffix(path string) (string, string) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i], path[i:]
	}
	return path, ""
}

// isPathUnderDir checks that absPath does not escape dir.
func isPathUnderDir(absPath, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(absPath))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive paths
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}

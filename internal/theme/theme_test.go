package theme

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/mdpress/internal/assets"
	"github.com/alnah/mdpress/internal/config"
)

// mockLoader is a minimal AssetLoader.
type mockLoader struct {
	styles  map[string]string
	listErr error
	loadErr error
}

func (m *mockLoader) LoadStyle(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	css, ok := m.styles[name]
	if !ok {
		return "", assets.ErrStyleNotFound
	}
	return css, nil
}

func (m *mockLoader) LoadTemplate(string) (string, error) { return "", assets.ErrTemplateNotFound }

func (m *mockLoader) ListStyles() ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []string{"academic", "modern"}, nil
}

func TestProvider_Resolve(t *testing.T) {
	t.Parallel()

	settings := config.Default()

	tests := []struct {
		name         string
		wantDiagram  string
		wantErr      error
		wantInErrMsg string
	}{
		{name: "academic", wantDiagram: "default"},
		{name: "modern", wantDiagram: "forest"},
		{name: "minimal", wantDiagram: "neutral"},
		{name: "presentation", wantDiagram: "dark"},
		{name: "nonexistent", wantErr: ErrThemeNotFound, wantInErrMsg: "academic, minimal, modern, presentation"},
		{name: "../etc", wantErr: ErrThemeNotFound},
	}

	p := NewProvider(assets.NewEmbeddedLoader(), settings)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			th, err := p.Resolve(tt.name)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.name, err, tt.wantErr)
				}
				if tt.wantInErrMsg != "" && !strings.Contains(err.Error(), tt.wantInErrMsg) {
					t.Errorf("error %q should list %q", err, tt.wantInErrMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.name, err)
			}
			if th.Name != tt.name {
				t.Errorf("Name = %q, want %q", th.Name, tt.name)
			}
			if !strings.Contains(th.CSS, ".markdown-body") {
				t.Errorf("CSS missing .markdown-body")
			}
			if th.DiagramTheme != tt.wantDiagram {
				t.Errorf("DiagramTheme = %q, want %q", th.DiagramTheme, tt.wantDiagram)
			}
		})
	}
}

func TestProvider_ResolveCustomTheme(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "styles", "brand.css"), []byte(".markdown-body{font-family:x}"), 0o644); err != nil {
		t.Fatal(err)
	}
	resolver, err := assets.NewAssetResolver(base)
	if err != nil {
		t.Fatal(err)
	}

	settings := config.Default()
	settings.Rendering.MermaidTheme = "base"
	p := NewProvider(resolver, settings)

	th, err := p.Resolve("brand")
	if err != nil {
		t.Fatalf("Resolve(brand) error = %v", err)
	}
	if th.DiagramTheme != "base" {
		t.Errorf("DiagramTheme = %q, want global fallback %q", th.DiagramTheme, "base")
	}

	names, err := p.List()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(strings.Join(names, ","), "brand") {
		t.Errorf("List() = %v, want brand included", names)
	}
}

func TestProvider_LoaderFailure(t *testing.T) {
	t.Parallel()

	ioErr := errors.New("disk on fire")
	p := NewProvider(&mockLoader{loadErr: ioErr}, config.Default())

	_, err := p.Resolve("academic")
	if !errors.Is(err, ioErr) {
		t.Errorf("error = %v, want loader error passed through", err)
	}
	if errors.Is(err, ErrThemeNotFound) {
		t.Error("I/O failure should not be reported as ErrThemeNotFound")
	}
}

func TestProvider_UnknownThemeWithMock(t *testing.T) {
	t.Parallel()

	p := NewProvider(&mockLoader{styles: map[string]string{"academic": "x"}}, config.Default())
	_, err := p.Resolve("gothic")
	if !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("error = %v, want ErrThemeNotFound", err)
	}
	if !strings.Contains(err.Error(), `"gothic"`) {
		t.Errorf("error %q should name the theme", err)
	}
}

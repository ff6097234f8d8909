// Package theme resolves theme names to stylesheets and diagram themes.
package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/mdpress/internal/assets"
	"github.com/alnah/mdpress/internal/config"
)

// ErrThemeNotFound indicates the requested theme has no stylesheet.
var ErrThemeNotFound = errors.New("theme not found")

// Theme is a resolved theme, ready to inline into a document.
type Theme struct {
	Name         string
	CSS          string
	DiagramTheme string
}

// Provider resolves themes from an asset loader and the settings.
type Provider struct {
	loader   assets.AssetLoader
	settings *config.Settings
}

// NewProvider creates a Provider.
func NewProvider(loader assets.AssetLoader, settings *config.Settings) *Provider {
	return &Provider{loader: loader, settings: settings}
}

// Resolve loads the stylesheet for name and picks its diagram theme.
// An unknown name returns ErrThemeNotFound listing the available themes.
func (p *Provider) Resolve(name string) (*Theme, error) {
	css, err := p.loader.LoadStyle(name)
	if err != nil {
		if errors.Is(err, assets.ErrStyleNotFound) || errors.Is(err, assets.ErrInvalidAssetName) {
			available, _ := p.List()
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrThemeNotFound, name, strings.Join(available, ", "))
		}
		return nil, err
	}

	return &Theme{
		Name:         name,
		CSS:          css,
		DiagramTheme: p.settings.MermaidThemeFor(name),
	}, nil
}

// List returns the available theme names, sorted.
func (p *Provider) List() ([]string, error) {
	return p.loader.ListStyles()
}

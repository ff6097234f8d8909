package assets

// AssetLoader defines the contract for loading theme styles and templates.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)

	// ListStyles returns the available style names, sorted.
	ListStyles() ([]string, error)
}

// DocumentTemplate is the name of the page template used for every document.
const DocumentTemplate = "document"

// Package assets provides theme stylesheets and the HTML document template.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed themes (academic, modern, minimal, presentation)
//	    ├── FilesystemLoader  - custom directory on disk
//	    └── AssetResolver     - custom first, embedded fallback
//
// Listing merges both sources, so a custom directory can add new themes
// as well as override built-in ones.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css        # one file per theme
//	└── templates/
//	    └── {name}.html       # document templates (html/template syntax)
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets

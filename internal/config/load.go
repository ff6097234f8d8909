package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/adrg/xdg"
	"github.com/xeipuuv/gojsonschema"

	"github.com/alnah/mdpress/internal/fileutil"
	"github.com/alnah/mdpress/internal/yamlutil"
)

//go:embed default.yaml
var defaultYAML []byte

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Search locations, relative to the working directory and the XDG config dirs.
const (
	LocalFileName = "md2pdf.config.yaml"
	XDGRelPath    = "md2pdf/config.yaml"
)

// SourceEmbedded is reported by Resolve when no file was found.
const SourceEmbedded = "embedded"

// Default returns the built-in settings.
func Default() *Settings {
	s, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("config: embedded default is invalid: %v", err))
	}
	return s
}

// Load reads settings from a file path.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse validates a YAML document against the settings schema, decodes it
// strictly, applies defaults and checks semantic constraints.
func Parse(data []byte) (*Settings, error) {
	doc, err := yamlutil.ToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(msgs, "; "))
	}

	var s Settings
	if err := yamlutil.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Resolve loads settings from the first available source:
// the explicit path, ./md2pdf.config.yaml, the XDG config dirs, then the
// embedded default. An explicit path that does not exist is an error.
// The second return value names the source used.
func Resolve(explicit string) (*Settings, string, error) {
	if explicit != "" {
		s, err := Load(explicit)
		if err != nil {
			return nil, "", err
		}
		return s, explicit, nil
	}

	if fileutil.FileExists(LocalFileName) {
		s, err := Load(LocalFileName)
		if err != nil {
			return nil, "", err
		}
		return s, LocalFileName, nil
	}

	if path, err := xdg.SearchConfigFile(XDGRelPath); err == nil {
		s, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		return s, path, nil
	}

	return Default(), SourceEmbedded, nil
}

package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName rejects names that could address a file other than
// {dir}/{name}.{ext}: empty names, path separators and dots.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case strings.ContainsAny(name, "/\\."):
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

package mdpress

import (
	"path/filepath"
	"strings"
)

// Extensions replaced by CorrectExtension rather than appended to.
var knownExtensions = map[string]bool{
	".pdf":      true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
}

// DefaultOutputName derives an output file name from an input path:
// notes.md with FormatPDF gives notes.pdf.
func DefaultOutputName(input string, f Format) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + f.Extension()
}

// CorrectExtension makes name end with the extension of f. A known document
// extension is replaced (out.html becomes out.pdf); anything else is kept and
// the extension appended (report.v2 becomes report.v2.pdf).
func CorrectExtension(name string, f Format) string {
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, f.Extension()) {
		return name
	}
	if knownExtensions[strings.ToLower(ext)] {
		name = strings.TrimSuffix(name, ext)
	}
	return name + f.Extension()
}

// OutputPath returns where the output for input is written. outputDir
// replaces the input's directory when set; outputName replaces the derived
// name when set, with its extension corrected. An absolute outputName is
// used as is.
func OutputPath(input string, f Format, outputDir, outputName string) string {
	if outputName != "" {
		outputName = CorrectExtension(outputName, f)
		if filepath.IsAbs(outputName) {
			return filepath.Clean(outputName)
		}
	}

	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	name := outputName
	if name == "" {
		name = DefaultOutputName(input, f)
	}
	return filepath.Join(dir, name)
}

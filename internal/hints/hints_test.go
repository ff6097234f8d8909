package hints

// Notes:
// - ForServerStart tests cannot use t.Parallel(): they use t.Setenv and
//   replace the package-level IsInContainer.

import (
	"strings"
	"testing"
)

func TestForServerStart_InCI(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForServerStart("md2pdf-renderer")

	for _, want := range []string{"hint:", "md2pdf-renderer", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN"} {
		if !strings.Contains(hint, want) {
			t.Errorf("hint %q missing %q", hint, want)
		}
	}
}

func TestForServerStart_Configured(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chromium")

	hint := ForServerStart("r")
	if strings.Contains(hint, "ROD_NO_SANDBOX") || strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Errorf("hint %q should not suggest variables already set", hint)
	}
}

func TestSimpleHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"timeout", ForTimeout(), "renderer.timeout"},
		{"config", ForConfigNotFound(), "--config"},
		{"themes", ForThemeNotFound([]string{"academic", "modern"}), "academic, modern"},
		{"no files", ForNoFiles(), "quote glob"},
	}
	for _, tt := range tests {
		if !strings.HasPrefix(tt.got, "\n  hint: ") {
			t.Errorf("%s: %q missing hint prefix", tt.name, tt.got)
		}
		if !strings.Contains(tt.got, tt.want) {
			t.Errorf("%s: %q missing %q", tt.name, tt.got, tt.want)
		}
	}

	if got := ForThemeNotFound(nil); got != "" {
		t.Errorf("ForThemeNotFound(nil) = %q, want empty", got)
	}
}

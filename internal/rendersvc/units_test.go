package rendersvc

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestParseLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"1in", 1, false},
		{"2.54cm", 1, false},
		{"25.4mm", 1, false},
		{"72pt", 1, false},
		{"96px", 1, false},
		{"96", 1, false},
		{" 1IN ", 1, false},
		{"0.5in", 0.5, false},
		{"abc", 0, true},
		{"1furlong", 0, true},
		{"-1in", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLength(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("ParseLength(%q) error = %v, want ErrInvalidOptions", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLength(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if !approx(got, tt.want) {
			t.Errorf("ParseLength(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPageSize(t *testing.T) {
	t.Parallel()

	w, h, err := PageSize("")
	if err != nil || w != 8.5 || h != 11 {
		t.Errorf("PageSize(\"\") = %v, %v, %v; want letter", w, h, err)
	}
	w, h, err = PageSize("A4")
	if err != nil || !approx(w, 8.27) || !approx(h, 11.69) {
		t.Errorf("PageSize(A4) = %v, %v, %v", w, h, err)
	}
	if _, _, err := PageSize("b9"); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("PageSize(b9) error = %v, want ErrInvalidOptions", err)
	}
}

func TestResolveGeometry(t *testing.T) {
	t.Parallel()

	g, err := resolveGeometry(PDFOptions{Format: "letter", Margin: Margins{Top: "1in", Bottom: "1in", Left: "1in", Right: "1in"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.width != 8.5 || g.top != 1 || g.right != 1 {
		t.Errorf("geometry = %+v", g)
	}

	_, err = resolveGeometry(PDFOptions{Margin: Margins{Left: "5in", Right: "4in"}})
	if !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("oversized margins error = %v, want ErrInvalidOptions", err)
	}

	_, err = resolveGeometry(PDFOptions{Margin: Margins{Top: "lots"}})
	if !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("bad margin error = %v, want ErrInvalidOptions", err)
	}
}

func TestPDFOptions_Normalized(t *testing.T) {
	t.Parallel()

	alias := &Margins{Top: "2cm", Bottom: "2cm", Left: "2cm", Right: "2cm"}
	got := PDFOptions{PageSize: "A4", Margins: alias}.Normalized()
	if got.Format != "A4" || got.Margin != *alias {
		t.Errorf("Normalized() = %+v", got)
	}
	if got.PageSize != "" || got.Margins != nil {
		t.Errorf("aliases not cleared: %+v", got)
	}

	explicit := PDFOptions{Format: "legal", PageSize: "a4", Margin: Margins{Top: "1in"}, Margins: alias}.Normalized()
	if explicit.Format != "legal" || explicit.Margin.Top != "1in" {
		t.Errorf("explicit fields overridden: %+v", explicit)
	}
}

func TestFileURL(t *testing.T) {
	t.Parallel()

	got := fileURL("/tmp/md2pdf-1.html")
	if got != "file:///tmp/md2pdf-1.html" {
		t.Errorf("fileURL() = %q", got)
	}
}

package rendersvc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidOptions indicates a request carried unusable page options.
var ErrInvalidOptions = errors.New("invalid render options")

// Inches per CSS unit.
var unitInches = map[string]float64{
	"in": 1,
	"cm": 1 / 2.54,
	"mm": 1 / 25.4,
	"pt": 1.0 / 72,
	"px": 1.0 / 96,
}

// Paper sizes in inches (width, height).
var pageSizes = map[string][2]float64{
	"letter":  {8.5, 11},
	"legal":   {8.5, 14},
	"tabloid": {11, 17},
	"a3":      {11.69, 16.54},
	"a4":      {8.27, 11.69},
	"a5":      {5.83, 8.27},
}

// DefaultPageSize applies when a request names none.
const DefaultPageSize = "letter"

// ParseLength converts a CSS length to inches. A bare number is pixels.
// An empty string is zero.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, nil
	}

	num, unit := s, "px"
	for u := range unitInches {
		if v, ok := strings.CutSuffix(s, u); ok {
			num, unit = v, u
			break
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: length %q", ErrInvalidOptions, s)
	}
	return v * unitInches[unit], nil
}

// PageSize returns the paper dimensions in inches for a size name.
func PageSize(name string) (width, height float64, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultPageSize
	}
	size, ok := pageSizes[name]
	if !ok {
		return 0, 0, fmt.Errorf("%w: page size %q", ErrInvalidOptions, name)
	}
	return size[0], size[1], nil
}

// pageGeometry is a PDFOptions resolved to inches.
type pageGeometry struct {
	width, height            float64
	top, bottom, left, right float64
}

func resolveGeometry(opts PDFOptions) (pageGeometry, error) {
	opts = opts.Normalized()
	var g pageGeometry
	var err error
	if g.width, g.height, err = PageSize(opts.Format); err != nil {
		return g, err
	}
	margins := []struct {
		dst *float64
		src string
	}{
		{&g.top, opts.Margin.Top},
		{&g.bottom, opts.Margin.Bottom},
		{&g.left, opts.Margin.Left},
		{&g.right, opts.Margin.Right},
	}
	for _, m := range margins {
		if *m.dst, err = ParseLength(m.src); err != nil {
			return g, err
		}
	}
	if g.left+g.right >= g.width || g.top+g.bottom >= g.height {
		return g, fmt.Errorf("%w: margins leave no printable area", ErrInvalidOptions)
	}
	return g, nil
}

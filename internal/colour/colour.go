// Package colour parses the hex colour notation used in scene descriptions.
package colour

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ivlev/scenerender/internal/errs"
)

// Parse converts hex colour text into straight (non-premultiplied) RGBA.
// Supported forms, each with an optional leading '#': RGB, RGBA, RRGGBB
// and RRGGBBAA. Shorthand digits are duplicated, so "f" becomes 0xff.
func Parse(text string) (color.NRGBA, error) {
	s := strings.TrimPrefix(text, "#")

	for i := 0; i < len(s); i++ {
		if _, ok := hexit(s[i]); !ok {
			return color.NRGBA{}, &errs.ColourError{Text: text, Reason: fmt.Sprintf("invalid character %q", s[i])}
		}
	}

	switch len(s) {
	case 3:
		return color.NRGBA{R: short(s[0]), G: short(s[1]), B: short(s[2]), A: 0xff}, nil
	case 4:
		return color.NRGBA{R: short(s[0]), G: short(s[1]), B: short(s[2]), A: short(s[3])}, nil
	case 6:
		return color.NRGBA{R: pair(s[0:2]), G: pair(s[2:4]), B: pair(s[4:6]), A: 0xff}, nil
	case 8:
		return color.NRGBA{R: pair(s[0:2]), G: pair(s[2:4]), B: pair(s[4:6]), A: pair(s[6:8])}, nil
	default:
		return color.NRGBA{}, &errs.ColourError{Text: text, Reason: fmt.Sprintf("expected 3, 4, 6 or 8 hex digits, got %d", len(s))}
	}
}

// Format renders c as #rrggbbaa.
func Format(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func hexit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// short expands a single hex digit, callers have already validated it.
func short(c byte) uint8 {
	v, _ := hexit(c)
	return v * 0x11
}

func pair(s string) uint8 {
	hi, _ := hexit(s[0])
	lo, _ := hexit(s[1])
	return hi<<4 | lo
}

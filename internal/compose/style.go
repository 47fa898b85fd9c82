package compose

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Classic meme caption constants.
const (
	DefaultFont        = "gobold"
	DefaultSize        = 40.0
	DefaultStrokeWidth = -3.0

	// minFontSize is the floor used when shrinking a caption to fit the frame.
	minFontSize = 12.0
)

// Align is the horizontal placement of a caption inside the frame.
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	}
	return "center"
}

// ParseAlign maps "center", "left" or "right" to an Align. Empty means center.
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "center", "centre":
		return AlignCenter, nil
	case "left":
		return AlignLeft, nil
	case "right":
		return AlignRight, nil
	}
	return AlignCenter, fmt.Errorf("compose: unknown alignment %q", s)
}

// Style is the caption styling applied to both captions of a meme.
//
// StrokeWidth is a percentage of the font size. A negative value fills the
// glyphs and then strokes them, a positive value strokes only and zero fills
// only.
type Style struct {
	Font        string
	Size        float64
	Fill        color.Color
	Stroke      color.Color
	StrokeWidth float64
	Align       Align
}

// DefaultStyle returns white condensed-bold captions with a black outline.
func DefaultStyle() Style {
	return Style{
		Font:        DefaultFont,
		Size:        DefaultSize,
		Fill:        color.White,
		Stroke:      color.Black,
		StrokeWidth: DefaultStrokeWidth,
		Align:       AlignCenter,
	}
}

// strokeRadius converts the percentage stroke width into a pixel radius.
func strokeRadius(width, size float64) int {
	if width == 0 {
		return 0
	}
	if width < 0 {
		width = -width
	}
	r := width * size / 100
	n := int(r)
	if float64(n) < r {
		n++
	}
	return n
}

// ParseColor parses #RGB, #RRGGBB or #RRGGBBAA hex notation.
func ParseColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("compose: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("compose: invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// FormatColor renders c as #RRGGBB, or #RRGGBBAA when not opaque.
func FormatColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", n.R, n.G, n.B, n.A)
}

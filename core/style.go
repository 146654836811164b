package core

// Attr represents text attributes (bitmask)
type Attr uint8

const (
	AttrNone          Attr = 0
	AttrBold          Attr = 1 << 0
	AttrDim           Attr = 1 << 1
	AttrItalic        Attr = 1 << 2
	AttrUnderline     Attr = 1 << 3
	AttrBlink         Attr = 1 << 4
	AttrReverse       Attr = 1 << 5
	AttrStrikethrough Attr = 1 << 6
)

// Style bundles foreground, background, underline color, and attributes
// Zero-value channels mean "inherit" when used as a patch
type Style struct {
	Fg    RGB
	Bg    RGB
	Ul    RGB // Underline color, zero = same as Fg
	Attrs Attr
}

// DefaultStyle returns a style with only the foreground set
func DefaultStyle(fg RGB) Style {
	return Style{Fg: fg}
}

// IsZero returns true if style has no colors or attributes set
func (s Style) IsZero() bool {
	return s.Fg == (RGB{}) && s.Bg == (RGB{}) && s.Ul == (RGB{}) && s.Attrs == AttrNone
}

// Patch overlays non-zero fields of over onto s and returns the result
// Attributes are unioned; colors replace only when set in over
func (s Style) Patch(over Style) Style {
	out := s
	if over.Fg != (RGB{}) {
		out.Fg = over.Fg
	}
	if over.Bg != (RGB{}) {
		out.Bg = over.Bg
	}
	if over.Ul != (RGB{}) {
		out.Ul = over.Ul
	}
	out.Attrs |= over.Attrs
	return out
}

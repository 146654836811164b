package render

import (
	"github.com/rivo/uniseg"
)

// TextWidth returns the terminal column width of a string
func TextWidth(s string) int {
	return uniseg.StringWidth(s)
}

// Truncate truncates string with … suffix if it exceeds maxWidth columns
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return "…"
	}

	var out string
	width := 0
	rest := s
	state := -1
	for len(rest) > 0 {
		var g string
		var w int
		g, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if width+w > maxWidth-1 {
			break
		}
		out += g
		width += w
	}
	return out + "…"
}

// TruncateLeft truncates with … prefix, keeping the end of the string
func TruncateLeft(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	total := uniseg.StringWidth(s)
	if total <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return "…"
	}

	// Drop leading clusters until the remainder fits behind the ellipsis
	drop := total - (maxWidth - 1)
	dropped := 0
	rest := s
	state := -1
	for len(rest) > 0 && dropped < drop {
		var w int
		_, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		dropped += w
	}
	return "…" + rest
}

// PadRight pads string with spaces to width columns
func PadRight(s string, width int) string {
	for w := uniseg.StringWidth(s); w < width; w++ {
		s += " "
	}
	return s
}

// PadLeft left-pads string with spaces to width columns
func PadLeft(s string, width int) string {
	w := uniseg.StringWidth(s)
	for ; w < width; w++ {
		s = " " + s
	}
	return s
}

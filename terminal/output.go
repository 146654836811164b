package terminal

import (
	"bufio"
	"os"
	"strings"

	"github.com/lixenwraith/cellterm/core"
)

// ColorMode represents terminal color capability
type ColorMode uint8

const (
	ColorMode256 ColorMode = iota
	ColorModeTrueColor
)

// DetectColorMode determines terminal color capability from environment
func DetectColorMode() ColorMode {
	colorterm := os.Getenv("COLORTERM")
	if colorterm == "truecolor" || colorterm == "24bit" {
		return ColorModeTrueColor
	}

	if os.Getenv("KITTY_WINDOW_ID") != "" ||
		os.Getenv("KONSOLE_VERSION") != "" ||
		os.Getenv("ITERM_SESSION_ID") != "" ||
		os.Getenv("ALACRITTY_WINDOW_ID") != "" ||
		os.Getenv("WEZTERM_PANE") != "" {
		return ColorModeTrueColor
	}

	term := os.Getenv("TERM")
	if strings.Contains(term, "truecolor") ||
		strings.Contains(term, "24bit") ||
		strings.Contains(term, "direct") {
		return ColorModeTrueColor
	}

	return ColorMode256
}

// rgbTo256 maps an RGB color onto the xterm 256 palette
// Grayscale ramp for near-gray colors, 6x6x6 cube otherwise
func rgbTo256(c core.RGB) int {
	r, g, b := int(c.R), int(c.G), int(c.B)
	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 248 {
			return 231
		}
		return 232 + (r-8)*24/240
	}
	return 16 + 36*(r*6/256) + 6*(g*6/256) + b*6/256
}

// styleWriter emits SGR sequences, coalescing runs of identical style
type styleWriter struct {
	w         *bufio.Writer
	colorMode ColorMode
	last      core.Style
	lastValid bool
}

// reset invalidates the cached style, forcing the next write to emit
func (sw *styleWriter) reset() {
	sw.lastValid = false
}

// write emits a single combined SGR sequence when the style changes
func (sw *styleWriter) write(style core.Style) {
	if sw.lastValid && style == sw.last {
		return
	}

	w := sw.w
	w.Write(csi)
	w.WriteByte('0') // Reset-led keeps dropped attributes from leaking

	a := style.Attrs
	if a&core.AttrBold != 0 {
		w.Write([]byte(";1"))
	}
	if a&core.AttrDim != 0 {
		w.Write([]byte(";2"))
	}
	if a&core.AttrItalic != 0 {
		w.Write([]byte(";3"))
	}
	if a&core.AttrUnderline != 0 {
		w.Write([]byte(";4"))
	}
	if a&core.AttrBlink != 0 {
		w.Write([]byte(";5"))
	}
	if a&core.AttrReverse != 0 {
		w.Write([]byte(";7"))
	}
	if a&core.AttrStrikethrough != 0 {
		w.Write([]byte(";9"))
	}

	w.WriteByte(';')
	sw.writeColor(csiFgRGB, style.Fg, csiDefaultFg, 38)
	w.WriteByte(';')
	sw.writeColor(csiBgRGB, style.Bg, csiDefaultBg, 48)
	if style.Ul != (core.RGB{}) && a&core.AttrUnderline != 0 {
		w.WriteByte(';')
		sw.writeColor(csiUlRGB, style.Ul, nil, 58)
	}
	w.WriteByte('m')

	sw.last = style
	sw.lastValid = true
}

// writeColor writes one color parameter group without CSI framing
func (sw *styleWriter) writeColor(rgbPrefix []byte, c core.RGB, def []byte, base int) {
	w := sw.w
	if c == (core.RGB{}) {
		if def != nil {
			w.Write(def)
		}
		return
	}
	if sw.colorMode == ColorModeTrueColor {
		w.Write(rgbPrefix)
		writeInt(w, int(c.R))
		w.WriteByte(';')
		writeInt(w, int(c.G))
		w.WriteByte(';')
		writeInt(w, int(c.B))
		return
	}
	writeInt(w, base)
	w.Write([]byte(";5;"))
	writeInt(w, rgbTo256(c))
}

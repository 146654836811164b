package terminal

import (
	"bufio"
)

// Pre-allocated ANSI sequence fragments (avoid allocations during render)
var (
	csi     = []byte("\x1b[")
	csiSGR0 = []byte("\x1b[0m")
	csiRIS  = []byte("\x1bc") // Reset to Initial State (emergency)

	// Clear variants
	csiClearAll       = []byte("\x1b[2J")
	csiClearAbove     = []byte("\x1b[1J")
	csiClearBelow     = []byte("\x1b[J")
	csiClearLine      = []byte("\x1b[2K")
	csiClearLineRight = []byte("\x1b[K")

	// Cursor control
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")
	csiCursorPos  = []byte("\x1b[") // followed by row;colH
	csiCursorDSR  = []byte("\x1b[6n")

	// Screen modes
	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")
	// DECAWM: ?7l disables wrapping (cursor sticks at right edge),
	// preventing scroll when writing to the bottom-right corner
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")

	// Reporting modes
	csiPasteOn       = []byte("\x1b[?2004h")
	csiPasteOff      = []byte("\x1b[?2004l")
	csiFocusOn       = []byte("\x1b[?1004h")
	csiFocusOff      = []byte("\x1b[?1004l")
	csiMouseClickOn  = []byte("\x1b[?1000h")
	csiMouseClickOff = []byte("\x1b[?1000l")
	csiMouseDragOn   = []byte("\x1b[?1002h")
	csiMouseDragOff  = []byte("\x1b[?1002l")
	csiMouseMoveOn   = []byte("\x1b[?1003h")
	csiMouseMoveOff  = []byte("\x1b[?1003l")
	csiMouseSGROn    = []byte("\x1b[?1006h")
	csiMouseSGROff   = []byte("\x1b[?1006l")

	// Color prefixes
	csiFgRGB     = []byte("38;2;")
	csiBgRGB     = []byte("48;2;")
	csiUlRGB     = []byte("58;2;")
	csiDefaultFg = []byte("39")
	csiDefaultBg = []byte("49")
)

// writeInt writes an integer without allocation
// Optimized for terminal values (0-255 common, 0-999 typical max)
func writeInt(w *bufio.Writer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		w.WriteByte(byte(n/10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	if n < 1000 {
		w.WriteByte(byte(n/100) + '0')
		w.WriteByte(byte(n/10%10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	// Fallback for >999 (rare)
	var buf [5]byte
	i := 4
	for n > 0 {
		buf[i] = byte(n%10) + '0'
		n /= 10
		i--
	}
	w.Write(buf[i+1:])
}

// writeCursorPos writes cursor positioning sequence (0-indexed input)
func writeCursorPos(w *bufio.Writer, x, y int) {
	w.Write(csiCursorPos)
	writeInt(w, y+1)
	w.WriteByte(';')
	writeInt(w, x+1)
	w.WriteByte('H')
}

// writeScrollUp scrolls screen content up n lines (blank lines appear at bottom)
func writeScrollUp(w *bufio.Writer, n int) {
	if n <= 0 {
		return
	}
	w.Write(csi)
	writeInt(w, n)
	w.WriteByte('S')
}

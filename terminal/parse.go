//go:build unix

package terminal

import (
	"bytes"

	"github.com/lixenwraith/cellterm/core"
)

var pasteEnd = []byte("\x1b[201~")

// parseInput parses raw bytes into events and returns bytes consumed
// (stops on incomplete sequence)
func (b *ansiBackend) parseInput(data []byte) int {
	i := 0
	n := len(data)

	for i < n {
		select {
		case <-b.stopCh:
			return i
		default:
		}

		if b.inPaste {
			// Accumulate until the paste terminator
			end := bytes.Index(data[i:], pasteEnd)
			if end < 0 {
				b.pasteBuf = append(b.pasteBuf, data[i:]...)
				return n
			}
			b.pasteBuf = append(b.pasteBuf, data[i:i+end]...)
			b.sendEvent(Event{Type: EventPaste, Paste: string(b.pasteBuf)})
			b.pasteBuf = b.pasteBuf[:0]
			b.inPaste = false
			i += end + len(pasteEnd)
			continue
		}

		c := data[i]

		// Fast path: printable ASCII
		if c >= 0x20 && c < 0x7f {
			b.sendEvent(Event{Type: EventKey, Key: KeyRune, Rune: rune(c)})
			i++
			continue
		}

		// Escape sequence
		if c == 0x1b {
			if i+1 >= n {
				return i // Wait for more data
			}
			consumed, ev := b.parseEscape(data[i:])
			if consumed == 0 {
				return i // Incomplete, wait for more data
			}
			// Swallow unknown sequences silently
			if ev.Key != KeyNone || ev.Type != EventKey {
				b.sendEvent(ev)
			}
			i += consumed
			continue
		}

		// Control characters
		if c < 0x20 {
			b.sendEvent(parseControl(c))
			i++
			continue
		}

		// DEL
		if c == 0x7f {
			b.sendEvent(Event{Type: EventKey, Key: KeyBackspace})
			i++
			continue
		}

		// UTF-8 multibyte
		if c >= 0x80 {
			seqLen := utf8SeqLen(c)
			if seqLen == 0 {
				i++ // Invalid start byte, skip
				continue
			}
			if i+seqLen > n {
				return i // Incomplete UTF-8, wait for more data
			}
			rn, size := decodeRune(data[i:])
			b.sendEvent(Event{Type: EventKey, Key: KeyRune, Rune: rn})
			i += size
			continue
		}

		i++
	}
	return i
}

// parseEscape attempts to parse an escape sequence, returns 0 on incomplete
func (b *ansiBackend) parseEscape(data []byte) (int, Event) {
	if len(data) < 2 {
		return 0, Event{}
	}

	// ESC ESC -> Alt+Escape
	if data[1] == 0x1b {
		return 2, Event{Type: EventKey, Key: KeyEscape, Modifiers: ModAlt}
	}

	if data[1] == '[' {
		return b.parseCSI(data)
	}
	if data[1] == 'O' {
		return parseSS3(data)
	}

	// Alt+control character
	if data[1] < 0x20 {
		ev := parseControl(data[1])
		ev.Modifiers |= ModAlt
		return 2, ev
	}

	// Alt+printable
	if data[1] >= 0x20 && data[1] < 0x7f {
		return 2, Event{Type: EventKey, Key: KeyRune, Rune: rune(data[1]), Modifiers: ModAlt}
	}

	return 0, Event{}
}

// parseCSI parses a CSI sequence without allocation
func (b *ansiBackend) parseCSI(data []byte) (int, Event) {
	if len(data) < 3 {
		return 0, Event{}
	}

	// SGR mouse: ESC [ < Btn ; X ; Y M/m
	if data[2] == '<' {
		return parseSGRMouse(data)
	}

	end := 2
	maxScan := min(len(data), 16)
	for end < maxScan {
		c := data[end]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '~' {
			end++
			break
		}
		if c < 0x20 || c > 0x7e {
			return 0, Event{}
		}
		end++
	}

	if end <= 2 || end > maxScan {
		return 0, Event{} // Incomplete
	}
	last := data[end-1]
	if !((last >= 'A' && last <= 'Z') || (last >= 'a' && last <= 'z') || last == '~') {
		return 0, Event{} // No terminator found yet
	}

	body := data[2:end]

	// Focus reporting
	if len(body) == 1 {
		if body[0] == 'I' {
			return end, Event{Type: EventFocus, Focused: true}
		}
		if body[0] == 'O' {
			return end, Event{Type: EventFocus, Focused: false}
		}
	}

	// Bracketed paste start
	if bytes.Equal(body, []byte("200~")) {
		b.inPaste = true
		return end, Event{Type: EventKey, Key: KeyNone}
	}

	// DSR cursor report: row ; col R
	if last == 'R' {
		if row, col, ok := parseCursorReport(body[:len(body)-1]); ok {
			select {
			case b.cursorCh <- core.Point{X: col - 1, Y: row - 1}:
			default:
			}
			return end, Event{Type: EventKey, Key: KeyNone}
		}
	}

	if key, mod, ok := lookupCSI(body); ok {
		return end, Event{Type: EventKey, Key: key, Modifiers: mod}
	}

	// Unknown but valid CSI syntax: consume and swallow
	return end, Event{Type: EventKey, Key: KeyNone}
}

// parseSS3 parses an SS3 sequence, consuming even unknown sequences
func parseSS3(data []byte) (int, Event) {
	if len(data) < 3 {
		return 0, Event{}
	}
	if key, mod, ok := lookupSS3(data[2:3]); ok {
		return 3, Event{Type: EventKey, Key: key, Modifiers: mod}
	}
	return 3, Event{Type: EventKey, Key: KeyNone}
}

// parseControl maps control bytes to keys
func parseControl(c byte) Event {
	switch c {
	case 0x00:
		return Event{Type: EventKey, Key: KeyCtrlSpace}
	case 0x08:
		return Event{Type: EventKey, Key: KeyBackspace}
	case 0x09:
		return Event{Type: EventKey, Key: KeyTab}
	case 0x0a, 0x0d:
		return Event{Type: EventKey, Key: KeyEnter}
	case 0x1b:
		return Event{Type: EventKey, Key: KeyEscape}
	case 0x1c:
		return Event{Type: EventKey, Key: KeyCtrlBackslash}
	case 0x1d:
		return Event{Type: EventKey, Key: KeyCtrlBracketRight}
	case 0x1e:
		return Event{Type: EventKey, Key: KeyCtrlCaret}
	case 0x1f:
		return Event{Type: EventKey, Key: KeyCtrlUnderscore}
	}
	if c >= 0x01 && c <= 0x1a {
		return Event{Type: EventKey, Key: KeyCtrlA + Key(c-0x01)}
	}
	return Event{Type: EventKey, Key: KeyNone}
}

// parseCursorReport extracts row, col from "row;col"
func parseCursorReport(body []byte) (row, col int, ok bool) {
	sep := bytes.IndexByte(body, ';')
	if sep <= 0 || sep == len(body)-1 {
		return 0, 0, false
	}
	row, ok = parseDigits(body[:sep])
	if !ok {
		return 0, 0, false
	}
	col, ok = parseDigits(body[sep+1:])
	if !ok {
		return 0, 0, false
	}
	return row, col, true
}

func parseDigits(data []byte) (int, bool) {
	val := 0
	for _, c := range data {
		if c < '0' || c > '9' {
			return 0, false
		}
		val = val*10 + int(c-'0')
		if val > 9999 { // Sanity limit
			return 0, false
		}
	}
	return val, len(data) > 0
}

// parseSGRMouse parses mouse SGR sequences
func parseSGRMouse(data []byte) (int, Event) {
	// Format: ESC [ < Btn ; X ; Y M/m
	// Minimum: ESC [ < 0 ; 1 ; 1 M = 9 bytes
	if len(data) < 9 {
		return 0, Event{}
	}

	end := 3
	for end < len(data) && end < 32 {
		if data[end] == 'M' || data[end] == 'm' {
			break
		}
		end++
	}
	if end >= len(data) || (data[end] != 'M' && data[end] != 'm') {
		return 0, Event{}
	}

	btn, x, y, ok := parseSGRParams(data[3:end])
	if !ok {
		return 0, Event{}
	}

	ev := Event{Type: EventMouse, MouseX: x - 1, MouseY: y - 1} // 0-indexed

	// Bits 0-1: button (0=left, 1=middle, 2=right, 3=release)
	// Bit 5 (32): motion, bit 6 (64): scroll
	buttonID := btn & 0x03
	isMotion := btn&32 != 0
	isScroll := btn&64 != 0

	if isScroll {
		if buttonID == 0 {
			ev.MouseBtn = MouseBtnWheelUp
		} else {
			ev.MouseBtn = MouseBtnWheelDown
		}
		ev.MouseAction = MouseActionPress // Scroll is instantaneous
	} else {
		switch buttonID {
		case 0:
			ev.MouseBtn = MouseBtnLeft
		case 1:
			ev.MouseBtn = MouseBtnMiddle
		case 2:
			ev.MouseBtn = MouseBtnRight
		case 3:
			ev.MouseBtn = MouseBtnNone
		}

		if data[end] == 'M' {
			if isMotion {
				if ev.MouseBtn != MouseBtnNone {
					ev.MouseAction = MouseActionDrag
				} else {
					ev.MouseAction = MouseActionMove
				}
			} else {
				ev.MouseAction = MouseActionPress
			}
		} else {
			ev.MouseAction = MouseActionRelease
		}
	}

	if btn&4 != 0 {
		ev.Modifiers |= ModShift
	}
	if btn&8 != 0 {
		ev.Modifiers |= ModAlt
	}
	if btn&16 != 0 {
		ev.Modifiers |= ModCtrl
	}

	return end + 1, ev
}

// parseSGRParams extracts btn, x, y from "Btn;X;Y"
func parseSGRParams(data []byte) (btn, x, y int, ok bool) {
	state := 0 // 0=btn, 1=x, 2=y
	val := 0

	for _, c := range data {
		if c == ';' {
			switch state {
			case 0:
				btn = val
			case 1:
				x = val
			}
			state++
			val = 0
			if state > 2 {
				return 0, 0, 0, false
			}
		} else if c >= '0' && c <= '9' {
			val = val*10 + int(c-'0')
			if val > 9999 {
				return 0, 0, 0, false
			}
		} else {
			return 0, 0, 0, false
		}
	}

	if state != 2 {
		return 0, 0, 0, false
	}
	y = val
	return btn, x, y, true
}

// utf8SeqLen returns expected UTF-8 sequence length from start byte, 0 if invalid
func utf8SeqLen(c byte) int {
	if c < 0x80 {
		return 1
	}
	if c&0xe0 == 0xc0 {
		return 2
	}
	if c&0xf0 == 0xe0 {
		return 3
	}
	if c&0xf8 == 0xf0 {
		return 4
	}
	return 0
}

// decodeRune decodes the first UTF-8 rune from data
func decodeRune(data []byte) (rune, int) {
	if len(data) == 0 {
		return 0, 0
	}

	c := data[0]
	if c < 0x80 {
		return rune(c), 1
	}

	var size int
	var minRune rune
	var r rune

	switch {
	case c&0xe0 == 0xc0:
		size = 2
		minRune = 0x80
		r = rune(c & 0x1f)
	case c&0xf0 == 0xe0:
		size = 3
		minRune = 0x800
		r = rune(c & 0x0f)
	case c&0xf8 == 0xf0:
		size = 4
		minRune = 0x10000
		r = rune(c & 0x07)
	default:
		return 0xFFFD, 1
	}

	if len(data) < size {
		return 0xFFFD, 1
	}

	for i := 1; i < size; i++ {
		if data[i]&0xc0 != 0x80 {
			return 0xFFFD, 1
		}
		r = r<<6 | rune(data[i]&0x3f)
	}

	if r < minRune {
		return 0xFFFD, 1 // Overlong encoding
	}

	return r, size
}

//go:build unix

package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/lixenwraith/cellterm/core"
)

// cursorReplyTimeout bounds the wait for a DSR cursor position report
const cursorReplyTimeout = 200 * time.Millisecond

// ansiBackend implements Backend with direct ANSI emission on Unix,
// bypassing terminfo/termcap entirely
type ansiBackend struct {
	in    *os.File
	out   *os.File
	inFd  int
	outFd int

	oldTerm *term.State
	writer  *bufio.Writer
	style   styleWriter

	eventCh  chan Event
	cursorCh chan core.Point
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu          sync.Mutex // Guards writer and lifecycle state
	initialized bool
	finalized   bool
	mouseMode   MouseMode
	altScreen   bool

	resizeStop chan struct{}
	resizeDone chan struct{}

	// Input stream assembly; not fixed size to avoid corrupting
	// partial UTF-8 at read boundaries
	buf      []byte
	inPaste  bool
	pasteBuf []byte
}

// NewBackend creates the ANSI backend for the process terminal
func NewBackend() Backend {
	b := &ansiBackend{
		in:       os.Stdin,
		out:      os.Stdout,
		inFd:     int(os.Stdin.Fd()),
		outFd:    int(os.Stdout.Fd()),
		eventCh:  make(chan Event, 256),
		cursorCh: make(chan core.Point, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		buf:      make([]byte, 0, 256),
	}
	b.writer = bufio.NewWriterSize(b.out, 131072)
	b.style = styleWriter{w: b.writer, colorMode: DetectColorMode()}
	return b
}

// Init enters raw mode and starts the input and resize sources
func (b *ansiBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}
	if !term.IsTerminal(b.inFd) {
		return fmt.Errorf("terminal init: stdin is not a terminal")
	}

	old, err := term.MakeRaw(b.inFd)
	if err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	b.oldTerm = old

	// Prevent terminal scroll/wrap on bottom-right corner write
	b.writer.Write(csiAutoWrapOff)
	b.writer.Flush()

	b.startResizeWatch()
	go b.readLoop()

	b.initialized = true
	return nil
}

// Fini restores terminal modes. Safe to call multiple times
func (b *ansiBackend) Fini() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized || b.finalized {
		return
	}

	if b.mouseMode != MouseModeNone {
		b.writer.Write(csiMouseMoveOff)
		b.writer.Write(csiMouseDragOff)
		b.writer.Write(csiMouseClickOff)
		b.writer.Write(csiMouseSGROff)
	}
	b.writer.Write(csiPasteOff)
	b.writer.Write(csiFocusOff)
	b.writer.Write(csiCursorShow)
	if b.altScreen {
		b.writer.Write(csiAltScreenExit)
	}
	b.writer.Write(csiAutoWrapOn)
	b.writer.Write(csiSGR0)
	b.writer.Flush()

	close(b.stopCh)
	if b.resizeStop != nil {
		close(b.resizeStop)
		<-b.resizeDone
	}
	// Bounded wait; the reader may be stuck in a blocking read
	select {
	case <-b.doneCh:
	case <-time.After(100 * time.Millisecond):
	}

	if b.oldTerm != nil {
		term.Restore(b.inFd, b.oldTerm)
	}
	b.finalized = true
}

// Size returns current terminal dimensions
func (b *ansiBackend) Size() (int, int) {
	ws, err := unix.IoctlGetWinsize(b.outFd, unix.TIOCGWINSZ)
	if err != nil {
		return 80, 24 // Fallback
	}
	return int(ws.Col), int(ws.Row)
}

// Draw writes cell updates, positioning once per dirty run and emitting
// style only when it changes
func (b *ansiBackend) Draw(updates []core.CellUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return
	}

	w := b.writer
	curX, curY := -1, -1

	for _, u := range updates {
		if u.Cell.Skip {
			continue
		}
		if u.X != curX || u.Y != curY {
			writeCursorPos(w, u.X, u.Y)
			curX, curY = u.X, u.Y
		}
		b.style.write(u.Cell.Style)

		content := u.Cell.Content
		if content == "" {
			content = " "
		}
		w.WriteString(content)
		curX += runewidth.StringWidth(content)
	}

	w.Write(csiSGR0)
	b.style.reset()
	w.Flush()
}

// Clear erases the selected region
func (b *ansiBackend) Clear(mode ClearMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return
	}

	switch mode {
	case ClearAll:
		b.writer.Write(csiClearAll)
	case ClearAbove:
		b.writer.Write(csiClearAbove)
	case ClearBelow:
		b.writer.Write(csiClearBelow)
	case ClearLine:
		b.writer.Write(csiClearLine)
	case ClearLineRight:
		b.writer.Write(csiClearLineRight)
	}
	b.writer.Flush()
}

// SetAltScreen toggles the alternate screen buffer
func (b *ansiBackend) SetAltScreen(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.altScreen == on {
		return
	}
	b.altScreen = on
	if on {
		b.writer.Write(csiAltScreenEnter)
	} else {
		b.writer.Write(csiAltScreenExit)
	}
	b.writer.Flush()
}

// SetCursorVisible shows/hides the cursor
func (b *ansiBackend) SetCursorVisible(visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if visible {
		b.writer.Write(csiCursorShow)
	} else {
		b.writer.Write(csiCursorHide)
	}
	b.writer.Flush()
}

// SetCursor positions the cursor, clamped to the screen
func (b *ansiBackend) SetCursor(x, y int) {
	w, h := b.Size()
	x = min(max(x, 0), w-1)
	y = min(max(y, 0), h-1)

	b.mu.Lock()
	defer b.mu.Unlock()
	writeCursorPos(b.writer, x, y)
	b.writer.Flush()
}

// CursorPos queries the cursor position via DSR
// ok is false when the terminal does not answer in time
func (b *ansiBackend) CursorPos() (int, int, bool) {
	b.mu.Lock()
	if !b.initialized || b.finalized {
		b.mu.Unlock()
		return 0, 0, false
	}
	// Drain a stale report from an earlier timed-out query
	select {
	case <-b.cursorCh:
	default:
	}
	b.writer.Write(csiCursorDSR)
	b.writer.Flush()
	b.mu.Unlock()

	select {
	case p := <-b.cursorCh:
		return p.X, p.Y, true
	case <-time.After(cursorReplyTimeout):
		return 0, 0, false
	case <-b.stopCh:
		return 0, 0, false
	}
}

// InsertLines makes n blank lines at the bottom by scrolling content up
func (b *ansiBackend) InsertLines(n int) {
	if n <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	writeScrollUp(b.writer, n)
	b.writer.Flush()
}

// SetMouseMode enables or disables mouse reporting
func (b *ansiBackend) SetMouseMode(mode MouseMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return nil
	}

	old := b.mouseMode
	b.mouseMode = mode
	w := b.writer

	if old&MouseModeMotion != 0 && mode&MouseModeMotion == 0 {
		w.Write(csiMouseMoveOff)
	}
	if old&MouseModeDrag != 0 && mode&MouseModeDrag == 0 {
		w.Write(csiMouseDragOff)
	}
	if old&MouseModeClick != 0 && mode&MouseModeClick == 0 {
		w.Write(csiMouseClickOff)
	}
	if mode == MouseModeNone && old != MouseModeNone {
		w.Write(csiMouseSGROff)
	}

	if mode != MouseModeNone && old == MouseModeNone {
		w.Write(csiMouseSGROn)
	}
	if mode&MouseModeClick != 0 && old&MouseModeClick == 0 {
		w.Write(csiMouseClickOn)
	}
	if mode&MouseModeDrag != 0 && old&MouseModeDrag == 0 {
		w.Write(csiMouseDragOn)
	}
	if mode&MouseModeMotion != 0 && old&MouseModeMotion == 0 {
		w.Write(csiMouseMoveOn)
	}

	w.Flush()
	return nil
}

// SetBracketedPaste toggles bracketed paste reporting
func (b *ansiBackend) SetBracketedPaste(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if on {
		b.writer.Write(csiPasteOn)
	} else {
		b.writer.Write(csiPasteOff)
	}
	b.writer.Flush()
}

// SetFocusReporting toggles focus in/out reporting
func (b *ansiBackend) SetFocusReporting(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if on {
		b.writer.Write(csiFocusOn)
	} else {
		b.writer.Write(csiFocusOff)
	}
	b.writer.Flush()
}

// Events returns the input event channel
func (b *ansiBackend) Events() <-chan Event {
	return b.eventCh
}

// Flush forces buffered output to the terminal
func (b *ansiBackend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writer.Flush()
}

// startResizeWatch forwards SIGWINCH as resize events
func (b *ansiBackend) startResizeWatch() {
	b.resizeStop = make(chan struct{})
	b.resizeDone = make(chan struct{})

	go func() {
		defer close(b.resizeDone)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGWINCH)
		defer signal.Stop(sigCh)

		for {
			select {
			case <-b.resizeStop:
				return
			case <-sigCh:
				w, h := b.Size()
				if w > 0 && h > 0 {
					b.sendEvent(Event{Type: EventResize, Width: w, Height: h})
				}
			}
		}
	}()
}

// EmergencyReset attempts to restore the terminal to a sane state.
// Call from panic recovery if Fini cannot run normally
func EmergencyReset(w io.Writer) {
	w.Write(csiMouseMoveOff)
	w.Write(csiMouseDragOff)
	w.Write(csiMouseClickOff)
	w.Write(csiMouseSGROff)
	w.Write(csiPasteOff)
	w.Write(csiFocusOff)
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiSGR0)
	w.Write(csiAutoWrapOn)
	w.Write(csiRIS)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	resetTerminalMode()
}

// resetTerminalMode attempts to restore cooked mode via /dev/tty
// Best-effort for crash recovery; errors ignored
func resetTerminalMode() {
	if tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		defer tty.Close()
		fd := int(tty.Fd())
		if termios, err := unix.IoctlGetTermios(fd, unix.TCGETS); err == nil {
			termios.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
			termios.Iflag |= unix.ICRNL
			unix.IoctlSetTermios(fd, unix.TCSETS, termios)
		}
	}
}

// read blocks until input, stop, or error; empty result means poll timeout
func (b *ansiBackend) read() ([]byte, error) {
	buf := make([]byte, 256)

	for {
		select {
		case <-b.stopCh:
			return nil, nil
		default:
		}

		fds := []unix.PollFd{{Fd: int32(b.inFd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, err
		}
		if n == 0 {
			return buf[:0], nil // Timeout, lets the caller flush pending ESC
		}

		rn, err := unix.Read(b.inFd, buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return nil, err
		}
		if rn == 0 {
			return nil, io.EOF
		}
		return buf[:rn], nil
	}
}

// readLoop is the main input reading goroutine
func (b *ansiBackend) readLoop() {
	defer close(b.doneCh)

	defer func() {
		if r := recover(); r != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mINPUT READER CRASHED: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		data, err := b.read()
		if err != nil {
			b.sendEvent(Event{Type: EventError, Err: err})
			return
		}

		if len(data) == 0 {
			if data == nil {
				b.sendEvent(Event{Type: EventClosed})
				return
			}
			// Poll timeout: emit pending standalone ESC
			if len(b.buf) == 1 && b.buf[0] == 0x1b && !b.inPaste {
				b.sendEvent(Event{Type: EventKey, Key: KeyEscape})
				b.buf = b.buf[:0]
			}
			continue
		}

		b.buf = append(b.buf, data...)
		consumed := b.parseInput(b.buf)
		if consumed > 0 {
			if consumed >= len(b.buf) {
				b.buf = b.buf[:0]
			} else {
				copy(b.buf, b.buf[consumed:])
				b.buf = b.buf[:len(b.buf)-consumed]
			}
		}
	}
}

// sendEvent sends an event to the channel, non-blocking
func (b *ansiBackend) sendEvent(ev Event) {
	select {
	case b.eventCh <- ev:
	default:
		// Channel full, drop
	}
}

package terminal

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/cellterm/core"
)

// tcellBackend implements Backend on top of tcell for portability.
// Full-screen use only: region clears degrade to whole-screen clears,
// line insertion is unavailable, and the cursor position cannot be
// queried (callers fall back to the origin)
type tcellBackend struct {
	screen tcell.Screen

	eventCh chan Event
	stopCh  chan struct{}

	mu          sync.Mutex
	initialized bool
	finalized   bool

	cursorX, cursorY int
	cursorVisible    bool

	lastButtons tcell.ButtonMask
	pasting     bool
	pasteBuf    []rune
}

// NewTcellBackend creates a tcell-based backend
func NewTcellBackend() Backend {
	return &tcellBackend{
		eventCh: make(chan Event, 256),
		stopCh:  make(chan struct{}),
	}
}

func (b *tcellBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("tcell backend: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("tcell backend: %w", err)
	}
	b.screen = s
	b.initialized = true

	go b.pollLoop()
	return nil
}

func (b *tcellBackend) Fini() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return
	}
	b.finalized = true
	close(b.stopCh)
	b.screen.Fini()
}

func (b *tcellBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.screen == nil {
		return 80, 24
	}
	return b.screen.Size()
}

func (b *tcellBackend) Draw(updates []core.CellUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return
	}

	for _, u := range updates {
		if u.Cell.Skip {
			continue
		}
		main, comb := splitGrapheme(u.Cell.Content)
		b.screen.SetContent(u.X, u.Y, main, comb, toTcellStyle(u.Cell.Style))
	}
	b.screen.Show()
}

func (b *tcellBackend) Clear(mode ClearMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return
	}
	// Region granularity is an ANSI capability; here every clear is whole
	b.screen.Clear()
	b.screen.Show()
}

// SetAltScreen is managed by tcell itself
func (b *tcellBackend) SetAltScreen(on bool) {}

func (b *tcellBackend) SetCursorVisible(visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return
	}
	b.cursorVisible = visible
	if visible {
		b.screen.ShowCursor(b.cursorX, b.cursorY)
	} else {
		b.screen.HideCursor()
	}
	b.screen.Show()
}

func (b *tcellBackend) SetCursor(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return
	}
	b.cursorX, b.cursorY = x, y
	if b.cursorVisible {
		b.screen.ShowCursor(x, y)
		b.screen.Show()
	}
}

// CursorPos is unavailable through tcell
func (b *tcellBackend) CursorPos() (int, int, bool) {
	return 0, 0, false
}

// InsertLines is unavailable through tcell; inline viewports require
// the ANSI backend
func (b *tcellBackend) InsertLines(n int) {}

func (b *tcellBackend) SetMouseMode(mode MouseMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return nil
	}
	if mode == MouseModeNone {
		b.screen.DisableMouse()
		return nil
	}
	var flags tcell.MouseFlags
	if mode&MouseModeClick != 0 {
		flags |= tcell.MouseButtonEvents
	}
	if mode&MouseModeDrag != 0 {
		flags |= tcell.MouseDragEvents
	}
	if mode&MouseModeMotion != 0 {
		flags |= tcell.MouseMotionEvents
	}
	b.screen.EnableMouse(flags)
	return nil
}

func (b *tcellBackend) SetBracketedPaste(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return
	}
	if on {
		b.screen.EnablePaste()
	} else {
		b.screen.DisablePaste()
	}
}

func (b *tcellBackend) SetFocusReporting(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized || b.finalized {
		return
	}
	if on {
		b.screen.EnableFocus()
	} else {
		b.screen.DisableFocus()
	}
}

func (b *tcellBackend) Events() <-chan Event {
	return b.eventCh
}

func (b *tcellBackend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized && !b.finalized {
		b.screen.Show()
	}
	return nil
}

// pollLoop translates tcell events into backend events
func (b *tcellBackend) pollLoop() {
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			b.sendEvent(Event{Type: EventClosed})
			return
		}
		select {
		case <-b.stopCh:
			return
		default:
		}

		switch tev := ev.(type) {
		case *tcell.EventKey:
			if b.pasting {
				if tev.Key() == tcell.KeyRune {
					b.pasteBuf = append(b.pasteBuf, tev.Rune())
				} else if tev.Key() == tcell.KeyEnter {
					b.pasteBuf = append(b.pasteBuf, '\n')
				}
				continue
			}
			b.sendEvent(translateKey(tev))
		case *tcell.EventResize:
			w, h := tev.Size()
			b.sendEvent(Event{Type: EventResize, Width: w, Height: h})
		case *tcell.EventMouse:
			b.sendEvent(b.translateMouse(tev))
		case *tcell.EventPaste:
			if tev.Start() {
				b.pasting = true
				b.pasteBuf = b.pasteBuf[:0]
			} else {
				b.pasting = false
				b.sendEvent(Event{Type: EventPaste, Paste: string(b.pasteBuf)})
			}
		case *tcell.EventFocus:
			b.sendEvent(Event{Type: EventFocus, Focused: tev.Focused})
		case *tcell.EventError:
			b.sendEvent(Event{Type: EventError, Err: tev})
		}
	}
}

func (b *tcellBackend) sendEvent(ev Event) {
	select {
	case b.eventCh <- ev:
	default:
		// Channel full, drop
	}
}

// tcellKeys maps tcell special keys onto backend keys
var tcellKeys = map[tcell.Key]Key{
	tcell.KeyUp:        KeyUp,
	tcell.KeyDown:      KeyDown,
	tcell.KeyLeft:      KeyLeft,
	tcell.KeyRight:     KeyRight,
	tcell.KeyHome:      KeyHome,
	tcell.KeyEnd:       KeyEnd,
	tcell.KeyPgUp:      KeyPageUp,
	tcell.KeyPgDn:      KeyPageDown,
	tcell.KeyInsert:    KeyInsert,
	tcell.KeyDelete:    KeyDelete,
	tcell.KeyEnter:     KeyEnter,
	tcell.KeyEscape:    KeyEscape,
	tcell.KeyTab:       KeyTab,
	tcell.KeyBacktab:   KeyBacktab,
	tcell.KeyBackspace: KeyBackspace,
	tcell.KeyF1:        KeyF1,
	tcell.KeyF2:        KeyF2,
	tcell.KeyF3:        KeyF3,
	tcell.KeyF4:        KeyF4,
	tcell.KeyF5:        KeyF5,
	tcell.KeyF6:        KeyF6,
	tcell.KeyF7:        KeyF7,
	tcell.KeyF8:        KeyF8,
	tcell.KeyF9:        KeyF9,
	tcell.KeyF10:       KeyF10,
	tcell.KeyF11:       KeyF11,
	tcell.KeyF12:       KeyF12,
}

func translateKey(tev *tcell.EventKey) Event {
	ev := Event{Type: EventKey}

	m := tev.Modifiers()
	if m&tcell.ModShift != 0 {
		ev.Modifiers |= ModShift
	}
	if m&tcell.ModAlt != 0 {
		ev.Modifiers |= ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		ev.Modifiers |= ModCtrl
	}

	k := tev.Key()
	if k == tcell.KeyRune {
		ev.Key = KeyRune
		ev.Rune = tev.Rune()
		return ev
	}
	if mapped, ok := tcellKeys[k]; ok {
		ev.Key = mapped
		return ev
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		ev.Key = KeyCtrlA + Key(k-tcell.KeyCtrlA)
		return ev
	}
	ev.Key = KeyNone
	return ev
}

func (b *tcellBackend) translateMouse(tev *tcell.EventMouse) Event {
	x, y := tev.Position()
	ev := Event{Type: EventMouse, MouseX: x, MouseY: y}

	m := tev.Modifiers()
	if m&tcell.ModShift != 0 {
		ev.Modifiers |= ModShift
	}
	if m&tcell.ModAlt != 0 {
		ev.Modifiers |= ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		ev.Modifiers |= ModCtrl
	}

	buttons := tev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		ev.MouseBtn = MouseBtnWheelUp
		ev.MouseAction = MouseActionPress
	case buttons&tcell.WheelDown != 0:
		ev.MouseBtn = MouseBtnWheelDown
		ev.MouseAction = MouseActionPress
	case buttons&tcell.Button1 != 0:
		ev.MouseBtn = MouseBtnLeft
	case buttons&tcell.Button3 != 0:
		ev.MouseBtn = MouseBtnMiddle
	case buttons&tcell.Button2 != 0:
		ev.MouseBtn = MouseBtnRight
	}

	if ev.MouseAction == MouseActionNone {
		pressed := buttons &^ b.lastButtons
		released := b.lastButtons &^ buttons
		switch {
		case pressed != 0:
			ev.MouseAction = MouseActionPress
		case released != 0:
			ev.MouseAction = MouseActionRelease
		case buttons != tcell.ButtonNone:
			ev.MouseAction = MouseActionDrag
		default:
			ev.MouseAction = MouseActionMove
		}
	}
	b.lastButtons = buttons

	return ev
}

// toTcellStyle converts a cell style into tcell's style model
func toTcellStyle(s core.Style) tcell.Style {
	st := tcell.StyleDefault
	if s.Fg != (core.RGB{}) {
		st = st.Foreground(tcell.NewRGBColor(int32(s.Fg.R), int32(s.Fg.G), int32(s.Fg.B)))
	}
	if s.Bg != (core.RGB{}) {
		st = st.Background(tcell.NewRGBColor(int32(s.Bg.R), int32(s.Bg.G), int32(s.Bg.B)))
	}
	if s.Attrs&core.AttrBold != 0 {
		st = st.Bold(true)
	}
	if s.Attrs&core.AttrDim != 0 {
		st = st.Dim(true)
	}
	if s.Attrs&core.AttrItalic != 0 {
		st = st.Italic(true)
	}
	if s.Attrs&core.AttrUnderline != 0 {
		st = st.Underline(true)
	}
	if s.Attrs&core.AttrBlink != 0 {
		st = st.Blink(true)
	}
	if s.Attrs&core.AttrReverse != 0 {
		st = st.Reverse(true)
	}
	if s.Attrs&core.AttrStrikethrough != 0 {
		st = st.StrikeThrough(true)
	}
	return st
}

// splitGrapheme breaks a cluster into tcell's main rune plus combiners
func splitGrapheme(content string) (rune, []rune) {
	if content == "" {
		return ' ', nil
	}
	runes := []rune(content)
	if len(runes) == 1 {
		return runes[0], nil
	}
	return runes[0], runes[1:]
}

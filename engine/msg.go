package engine

import (
	"os"
	"time"

	"github.com/lixenwraith/cellterm/terminal"
)

// Msg is a unit of work on the scheduler queue. All inputs — keys,
// mouse, resize, timers, task results — arrive as messages and are
// delivered to the update function one at a time
type Msg any

// KeyMsg is a keyboard input
type KeyMsg struct {
	Key       terminal.Key
	Rune      rune
	Modifiers terminal.Modifier
}

// MouseMsg is a mouse input at terminal coordinates
type MouseMsg struct {
	X, Y      int
	Button    terminal.MouseButton
	Action    terminal.MouseAction
	Modifiers terminal.Modifier
}

// ResizeMsg reports a new terminal size
type ResizeMsg struct {
	Width  int
	Height int
}

// PasteMsg carries a bracketed paste as one message
type PasteMsg struct {
	Text string
}

// FocusMsg reports terminal focus gained or lost
type FocusMsg struct {
	Focused bool
}

// TickMsg is delivered by the user timer started with Tick; Elapsed is
// cumulative since the timer started
type TickMsg struct {
	Elapsed time.Duration
}

// FrameMsg gates rendering: the scheduler performs a render pass only
// after consuming one. Delta is the time since the previous frame tick
type FrameMsg struct {
	Delta time.Duration
	Frame uint64
	At    time.Time
}

// InitMsg is delivered exactly once, before any other message
type InitMsg struct{}

// NoneMsg is the synthetic message returned when the queue wait times
// out; update functions normally ignore it
type NoneMsg struct{}

// ErrMsg reports a backend read failure
type ErrMsg struct {
	Err error
}

// signalMsg routes an OS termination signal through the queue so it is
// handled on the scheduler goroutine
type signalMsg struct {
	sig os.Signal
}

// fromEvent translates a backend event into a queue message.
// Returns nil for events with no message equivalent
func fromEvent(ev terminal.Event) Msg {
	switch ev.Type {
	case terminal.EventKey:
		return KeyMsg{Key: ev.Key, Rune: ev.Rune, Modifiers: ev.Modifiers}
	case terminal.EventMouse:
		return MouseMsg{
			X:         ev.MouseX,
			Y:         ev.MouseY,
			Button:    ev.MouseBtn,
			Action:    ev.MouseAction,
			Modifiers: ev.Modifiers,
		}
	case terminal.EventResize:
		return ResizeMsg{Width: ev.Width, Height: ev.Height}
	case terminal.EventPaste:
		return PasteMsg{Text: ev.Paste}
	case terminal.EventFocus:
		return FocusMsg{Focused: ev.Focused}
	case terminal.EventError:
		return ErrMsg{Err: ev.Err}
	}
	return nil
}

// coalesceKey returns the coalescing key for messages where only the
// most recent instance matters. A queue scan keeps one message per key
func coalesceKey(m Msg) (string, bool) {
	switch m := m.(type) {
	case FrameMsg:
		return "frame", true
	case ResizeMsg:
		return "resize", true
	case MouseMsg:
		if m.Action == terminal.MouseActionMove || m.Action == terminal.MouseActionDrag {
			return "mouse-motion", true
		}
	}
	return "", false
}

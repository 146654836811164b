package terminal

import "github.com/lixenwraith/cellterm/core"

// ClearMode selects the region affected by Backend.Clear
type ClearMode uint8

const (
	ClearAll       ClearMode = iota // Whole screen
	ClearAbove                      // From cursor to top
	ClearBelow                      // From cursor to bottom
	ClearLine                       // Entire cursor line
	ClearLineRight                  // Cursor to end of line
)

// Backend abstracts the concrete terminal: raw mode, escape emission,
// and input parsing live behind this interface. The core treats terminal
// state as best-effort; implementations must tolerate being driven after
// a failed call
type Backend interface {
	// Init enters raw mode and starts the input source
	Init() error

	// Fini restores terminal modes. Safe to call multiple times
	Fini()

	// Size returns current terminal dimensions
	Size() (width, height int)

	// Draw writes a sequence of cell updates at absolute coordinates
	Draw(updates []core.CellUpdate)

	// Clear erases the selected region relative to the cursor
	Clear(mode ClearMode)

	// SetAltScreen toggles the alternate screen buffer
	SetAltScreen(on bool)

	// SetCursorVisible shows/hides the cursor
	SetCursorVisible(visible bool)

	// SetCursor positions the cursor (0-indexed)
	SetCursor(x, y int)

	// CursorPos queries the current cursor position.
	// ok is false when the terminal does not answer; callers substitute
	// the origin
	CursorPos() (x, y int, ok bool)

	// InsertLines makes n blank lines at the bottom of the screen by
	// scrolling existing content up
	InsertLines(n int)

	// SetMouseMode enables/disables mouse event reporting.
	// Modes can be combined: MouseModeClick | MouseModeDrag
	SetMouseMode(mode MouseMode) error

	// SetBracketedPaste toggles bracketed paste reporting
	SetBracketedPaste(on bool)

	// SetFocusReporting toggles focus in/out reporting
	SetFocusReporting(on bool)

	// Events returns the async input event source
	Events() <-chan Event

	// Flush forces any buffered output to the terminal
	Flush() error
}

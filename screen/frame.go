package screen

import (
	"github.com/lixenwraith/cellterm/core"
	"github.com/lixenwraith/cellterm/render"
)

// Frame is the paint surface handed to a render callback for one pass.
// All coordinates are viewport-local; the Screen translates to terminal
// coordinates at flush time. The cursor is hidden unless the callback
// requests it
type Frame struct {
	buf    *render.Buffer
	number uint32

	cursor    core.Point
	cursorSet bool
}

// Buffer returns the cell grid to draw into
func (f *Frame) Buffer() *render.Buffer {
	return f.buf
}

// Area returns the drawable region in local coordinates
func (f *Frame) Area() core.Area {
	return f.buf.Area()
}

// Size returns the frame dimensions
func (f *Frame) Size() (width, height int) {
	return f.buf.Width(), f.buf.Height()
}

// Number returns the wrapping frame counter value for this pass
func (f *Frame) Number() uint32 {
	return f.number
}

// SetCursor requests a visible cursor at a local coordinate after this
// frame is flushed
func (f *Frame) SetCursor(x, y int) {
	f.cursor = core.Point{X: x, Y: y}
	f.cursorSet = true
}

// HideCursor withdraws a previous SetCursor request
func (f *Frame) HideCursor() {
	f.cursorSet = false
}

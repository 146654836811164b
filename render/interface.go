package render

import "github.com/lixenwraith/cellterm/core"

// Renderable is implemented by anything that can paint itself into a
// region of a buffer. Widget libraries and application views plug into
// the draw cycle through this contract
type Renderable interface {
	Render(area core.Area, buf *Buffer)
}

// RenderFunc adapts a plain function to Renderable
type RenderFunc func(area core.Area, buf *Buffer)

func (f RenderFunc) Render(area core.Area, buf *Buffer) {
	f(area, buf)
}

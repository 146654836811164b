package render

import (
	"fmt"

	"github.com/lixenwraith/cellterm/core"
)

// Buffer is a rectangular grid of styled cells backed by a row-major slice
// Dimensions always match the owning viewport area; writers must pre-clip.
// Out-of-bounds access and mismatched diff dimensions are programmer errors
// and panic immediately
type Buffer struct {
	cells []core.Cell
	area  core.Area
}

// NewBuffer creates a blank buffer covering the given area
func NewBuffer(area core.Area) *Buffer {
	b := &Buffer{area: area}
	b.alloc()
	return b
}

func (b *Buffer) alloc() {
	size := b.area.Width * b.area.Height
	if cap(b.cells) < size {
		b.cells = make([]core.Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.Reset()
}

// Area returns the screen region this buffer represents
func (b *Buffer) Area() core.Area {
	return b.area
}

// Width returns the buffer width
func (b *Buffer) Width() int {
	return b.area.Width
}

// Height returns the buffer height
func (b *Buffer) Height() int {
	return b.area.Height
}

func (b *Buffer) index(x, y int) int {
	if x < 0 || x >= b.area.Width || y < 0 || y >= b.area.Height {
		panic(fmt.Sprintf("render: cell access out of bounds: (%d,%d) in %dx%d", x, y, b.area.Width, b.area.Height))
	}
	return y*b.area.Width + x
}

// Set replaces the cell at a local coordinate
func (b *Buffer) Set(x, y int, c core.Cell) {
	b.cells[b.index(x, y)] = c
}

// Get returns the cell at a local coordinate
func (b *Buffer) Get(x, y int) core.Cell {
	return b.cells[b.index(x, y)]
}

// Restyle applies a style patch to every cell inside rect (local
// coordinates, clipped to the buffer) without altering content
func (b *Buffer) Restyle(rect core.Area, patch core.Style) {
	local := core.Area{Width: b.area.Width, Height: b.area.Height}
	rect = rect.Intersect(local)
	for y := rect.Y; y < rect.Bottom(); y++ {
		row := y * b.area.Width
		for x := rect.X; x < rect.Right(); x++ {
			c := &b.cells[row+x]
			c.Style = c.Style.Patch(patch)
		}
	}
}

// Fill sets every cell inside rect to the given content and style
func (b *Buffer) Fill(rect core.Area, content string, style core.Style) {
	local := core.Area{Width: b.area.Width, Height: b.area.Height}
	rect = rect.Intersect(local)
	cell := core.Cell{Content: content, Style: style}
	for y := rect.Y; y < rect.Bottom(); y++ {
		row := y * b.area.Width
		for x := rect.X; x < rect.Right(); x++ {
			b.cells[row+x] = cell
		}
	}
}

// Resize reallocates the buffer for a new area, preserving cell content in
// the overlap of old and new dimensions; all other cells are blank.
// Resizing never fails
func (b *Buffer) Resize(area core.Area) {
	if area == b.area {
		return
	}
	old := b.cells
	oldW, oldH := b.area.Width, b.area.Height

	size := area.Width * area.Height
	cells := make([]core.Cell, size)
	for i := range cells {
		cells[i] = core.BlankCell
	}

	copyW := min(oldW, area.Width)
	copyH := min(oldH, area.Height)
	for y := 0; y < copyH; y++ {
		copy(cells[y*area.Width:y*area.Width+copyW], old[y*oldW:y*oldW+copyW])
	}

	b.cells = cells
	b.area = area
}

// Reset sets every cell to blank using exponential copy
func (b *Buffer) Reset() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = core.BlankCell
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
}

// Diff reports, in row-major order, every coordinate whose cell differs
// between prev and b. Skip cells are never reported on their own: a
// wide-glyph pair is treated atomically, so the leading cell is reported
// whenever either half differs from the previous frame. Dimensions of prev
// and b must match
func (b *Buffer) Diff(prev *Buffer) []core.CellUpdate {
	if prev.area.Width != b.area.Width || prev.area.Height != b.area.Height {
		panic(fmt.Sprintf("render: diff dimension mismatch: %dx%d vs %dx%d",
			b.area.Width, b.area.Height, prev.area.Width, prev.area.Height))
	}

	var updates []core.CellUpdate
	w := b.area.Width
	for y := 0; y < b.area.Height; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			cur := b.cells[row+x]
			if cur.Skip {
				continue
			}
			changed := cur != prev.cells[row+x]
			// Wide pair: the covered column changing forces a redraw
			// of the whole glyph
			if !changed && x+1 < w && b.cells[row+x+1].Skip {
				changed = b.cells[row+x+1] != prev.cells[row+x+1]
			}
			if changed {
				updates = append(updates, core.CellUpdate{X: x, Y: y, Cell: cur})
			}
		}
	}
	return updates
}

package screen

import (
	"sync/atomic"

	"github.com/lixenwraith/cellterm/core"
	"github.com/lixenwraith/cellterm/render"
	"github.com/lixenwraith/cellterm/status"
	"github.com/lixenwraith/cellterm/terminal"
)

// Screen owns the double-buffered grid for one viewport and drives the
// draw / diff / flush / swap cycle against a backend. Every frame is
// painted from scratch into the current buffer; flushing emits only the
// cells that differ from the previously flushed frame.
//
// Screen methods are not safe for concurrent use; callers serialize all
// drawing on one goroutine
type Screen struct {
	backend  terminal.Backend
	viewport Viewport

	area  core.Area // viewport rectangle in terminal coordinates
	bufs  [2]*render.Buffer
	cur   int
	frame uint32

	lastW, lastH int        // last observed terminal size
	lastCursor   core.Point // last known hardware cursor position

	framesDrawn  *atomic.Int64
	cellsFlushed *atomic.Int64
	resizes      *atomic.Int64
}

// NewScreen sets up a screen for the given viewport. Full-screen
// viewports switch to the alternate screen; inline viewports anchor at
// the reported cursor position, falling back to the origin when the
// terminal does not answer the position query
func NewScreen(backend terminal.Backend, vp Viewport, stats *status.Registry) *Screen {
	if stats == nil {
		stats = status.NewRegistry()
	}
	w, h := backend.Size()
	s := &Screen{
		backend:      backend,
		viewport:     vp,
		lastW:        w,
		lastH:        h,
		framesDrawn:  stats.Ints.Get("screen.frames"),
		cellsFlushed: stats.Ints.Get("screen.cells_flushed"),
		resizes:      stats.Ints.Get("screen.resizes"),
	}

	switch vp.Kind {
	case KindFullScreen:
		backend.SetAltScreen(true)
		backend.Clear(terminal.ClearAll)
		s.area = core.Area{Width: w, Height: h}
	case KindInline:
		cx, cy, ok := backend.CursorPos()
		if !ok {
			cx, cy = 0, 0
		}
		p := placeInline(vp.Height, w, h, core.Point{X: cx, Y: cy}, 0)
		if p.insert > 0 {
			backend.InsertLines(p.insert)
		}
		s.area = p.area
		s.lastCursor = p.cursor
	case KindFixed:
		s.area = vp.Rect
	}

	local := core.Area{Width: s.area.Width, Height: s.area.Height}
	s.bufs[0] = render.NewBuffer(local)
	s.bufs[1] = render.NewBuffer(local)

	backend.SetCursorVisible(false)
	return s
}

// Area returns the current viewport rectangle in terminal coordinates
func (s *Screen) Area() core.Area {
	return s.area
}

// FrameCount returns the wrapping frame counter
func (s *Screen) FrameCount() uint32 {
	return s.frame
}

// autoResize re-queries the terminal size and re-anchors the viewport
// when it changed. Fixed viewports never move
func (s *Screen) autoResize() {
	if s.viewport.Kind == KindFixed {
		return
	}
	w, h := s.backend.Size()
	if w == s.lastW && h == s.lastH {
		return
	}
	s.lastW, s.lastH = w, h
	s.resize(w, h)
}

// resize recomputes the viewport rectangle for a new terminal size.
// Diff history is invalidated: cell coordinates may land elsewhere on
// screen after a resize, so the next frame repaints everything
func (s *Screen) resize(w, h int) {
	switch s.viewport.Kind {
	case KindFullScreen:
		s.area = core.Area{Width: w, Height: h}
	case KindInline:
		// Cursor drift since the last placement carries over as the
		// offset within the re-anchored viewport
		offset := s.lastCursor.Y - s.area.Y
		if offset < 0 {
			offset = 0
		}
		if offset > s.viewport.Height-1 {
			offset = s.viewport.Height - 1
		}
		p := placeInline(s.viewport.Height, w, h, s.lastCursor, offset)
		if p.insert > 0 {
			s.backend.InsertLines(p.insert)
		}
		s.area = p.area
		s.lastCursor = p.cursor
	case KindFixed:
		return
	}

	local := core.Area{Width: s.area.Width, Height: s.area.Height}
	s.bufs[0].Resize(local)
	s.bufs[1].Resize(local)
	s.resizes.Add(1)
	s.Clear()
}

// Draw runs one frame: the callback paints into the current grid, the
// screen flushes the diff against the previous frame, positions the
// cursor if the callback requested one, and swaps buffers
func (s *Screen) Draw(fn func(*Frame)) {
	s.autoResize()

	f := &Frame{buf: s.bufs[s.cur], number: s.frame}
	fn(f)

	cur, prev := s.bufs[s.cur], s.bufs[1-s.cur]
	updates := cur.Diff(prev)
	if len(updates) > 0 {
		for i := range updates {
			updates[i].X += s.area.X
			updates[i].Y += s.area.Y
		}
		s.backend.Draw(updates)
		last := updates[len(updates)-1]
		s.lastCursor = core.Point{X: last.X, Y: last.Y}
		s.cellsFlushed.Add(int64(len(updates)))
	}

	if f.cursorSet {
		x := s.area.X + f.cursor.X
		y := s.area.Y + f.cursor.Y
		s.backend.SetCursor(x, y)
		s.backend.SetCursorVisible(true)
		s.lastCursor = core.Point{X: x, Y: y}
	} else {
		s.backend.SetCursorVisible(false)
	}
	s.backend.Flush()

	// The drawn grid becomes the diff base; the other starts blank so
	// the next frame is painted from scratch
	s.cur = 1 - s.cur
	s.bufs[s.cur].Reset()
	s.frame++
	s.framesDrawn.Add(1)
}

// InsertBefore emits height lines of content above an inline viewport,
// pushing them into scrollback, then shifts the viewport anchor down by
// the space consumed. Content taller than the space above the viewport
// is scrolled through in screen-bounded chunks so every line lands in
// scrollback. Only valid for inline viewports
func (s *Screen) InsertBefore(height int, fn func(*Frame)) {
	if s.viewport.Kind != KindInline {
		panic("screen: InsertBefore requires an inline viewport")
	}
	if height < 1 {
		return
	}

	scratch := render.NewBuffer(core.Area{Width: s.area.Width, Height: height})
	fn(&Frame{buf: scratch, number: s.frame})

	termH := s.lastH
	vh := s.area.Height
	a := s.area.Y
	// Final anchor: the viewport slides down as far as the bottom row
	aNew := a + height
	if aNew > termH-vh {
		aNew = termH - vh
	}
	slide := aNew - a

	// Slide phase: rows that fit between the old and new anchor need no
	// scrolling
	row := 0
	if slide > 0 {
		n := height
		if n > slide {
			n = slide
		}
		s.flushScratch(scratch, 0, n, a)
		row = n
	}

	// Scroll phase: remaining rows scroll through the band above the
	// viewport, bounded per pass by the rows that band can show. With
	// no band at all the rows pass through the viewport's own top
	// instead, written first and then scrolled out; the forced redraw
	// below repaints whatever they covered
	for row < height {
		chunk := height - row
		if aNew == 0 {
			if chunk > termH {
				chunk = termH
			}
			s.flushScratch(scratch, row, chunk, 0)
			s.backend.InsertLines(chunk)
		} else {
			if chunk > aNew {
				chunk = aNew
			}
			s.backend.InsertLines(chunk)
			s.flushScratch(scratch, row, chunk, aNew-chunk)
		}
		row += chunk
	}

	s.area.Y = aNew
	s.Clear()
	s.backend.Flush()
}

// flushScratch writes n scratch rows starting at srcRow to the terminal
// rows beginning at dstY
func (s *Screen) flushScratch(scratch *render.Buffer, srcRow, n, dstY int) {
	w := scratch.Width()
	updates := make([]core.CellUpdate, 0, n*w)
	for i := 0; i < n; i++ {
		for x := 0; x < w; x++ {
			updates = append(updates, core.CellUpdate{
				X:    s.area.X + x,
				Y:    dstY + i,
				Cell: scratch.Get(x, srcRow+i),
			})
		}
	}
	s.backend.Draw(updates)
	s.cellsFlushed.Add(int64(len(updates)))
}

// Clear erases the viewport region and invalidates diff history so the
// next frame repaints every cell
func (s *Screen) Clear() {
	switch s.viewport.Kind {
	case KindFullScreen:
		s.backend.Clear(terminal.ClearAll)
	case KindInline:
		s.backend.SetCursor(0, s.area.Y)
		s.backend.Clear(terminal.ClearBelow)
	case KindFixed:
		// No region primitive reaches an arbitrary rectangle; blank it
		// cell by cell
		blank := core.BlankCell
		updates := make([]core.CellUpdate, 0, s.area.Width*s.area.Height)
		for y := s.area.Y; y < s.area.Bottom(); y++ {
			for x := s.area.X; x < s.area.Right(); x++ {
				updates = append(updates, core.CellUpdate{X: x, Y: y, Cell: blank})
			}
		}
		s.backend.Draw(updates)
	}
	s.bufs[1-s.cur].Reset()
}

package screen

import (
	"testing"

	"github.com/lixenwraith/cellterm/core"
	"github.com/lixenwraith/cellterm/render"
	"github.com/lixenwraith/cellterm/terminal"
)

// fakeBackend records calls for assertions; Size and CursorPos are
// configurable per test
type fakeBackend struct {
	width, height int
	cursorX       int
	cursorY       int
	cursorOK      bool

	draws     [][]core.CellUpdate
	inserted  int
	clears    []terminal.ClearMode
	altScreen bool
	cursorVis bool
	setCursor core.Point
	events    chan terminal.Event
}

func newFakeBackend(w, h int) *fakeBackend {
	return &fakeBackend{width: w, height: h, events: make(chan terminal.Event, 8)}
}

func (f *fakeBackend) Init() error                     { return nil }
func (f *fakeBackend) Fini()                           {}
func (f *fakeBackend) Size() (int, int)                { return f.width, f.height }
func (f *fakeBackend) Clear(m terminal.ClearMode)      { f.clears = append(f.clears, m) }
func (f *fakeBackend) SetAltScreen(on bool)            { f.altScreen = on }
func (f *fakeBackend) SetCursorVisible(v bool)         { f.cursorVis = v }
func (f *fakeBackend) SetCursor(x, y int)              { f.setCursor = core.Point{X: x, Y: y} }
func (f *fakeBackend) InsertLines(n int)               { f.inserted += n }
func (f *fakeBackend) SetMouseMode(terminal.MouseMode) error { return nil }
func (f *fakeBackend) SetBracketedPaste(bool)          {}
func (f *fakeBackend) SetFocusReporting(bool)          {}
func (f *fakeBackend) Events() <-chan terminal.Event   { return f.events }
func (f *fakeBackend) Flush() error                    { return nil }

func (f *fakeBackend) Draw(updates []core.CellUpdate) {
	cp := make([]core.CellUpdate, len(updates))
	copy(cp, updates)
	f.draws = append(f.draws, cp)
}

func (f *fakeBackend) CursorPos() (int, int, bool) {
	return f.cursorX, f.cursorY, f.cursorOK
}

func (f *fakeBackend) allDraws() []core.CellUpdate {
	var out []core.CellUpdate
	for _, d := range f.draws {
		out = append(out, d...)
	}
	return out
}

func TestFullScreenUsesAltScreen(t *testing.T) {
	fb := newFakeBackend(80, 24)
	s := NewScreen(fb, FullScreen(), nil)
	if !fb.altScreen {
		t.Error("full-screen viewport did not enter the alternate screen")
	}
	if got := s.Area(); got != (core.Area{Width: 80, Height: 24}) {
		t.Errorf("area = %+v, want full terminal", got)
	}
}

func TestDrawFlushesOnlyChanges(t *testing.T) {
	fb := newFakeBackend(20, 5)
	s := NewScreen(fb, FullScreen(), nil)

	paint := func(f *Frame) {
		render.DrawText(f.Buffer(), 0, 0, "hi", core.Style{})
	}

	s.Draw(paint)
	first := fb.allDraws()
	if len(first) != 2 {
		t.Fatalf("first frame flushed %d cells, want 2", len(first))
	}

	fb.draws = nil
	s.Draw(paint)
	if again := fb.allDraws(); len(again) != 0 {
		t.Errorf("unchanged frame flushed %d cells, want 0", len(again))
	}

	fb.draws = nil
	s.Draw(func(f *Frame) {
		render.DrawText(f.Buffer(), 0, 0, "ho", core.Style{})
	})
	changed := fb.allDraws()
	if len(changed) != 1 {
		t.Fatalf("changed frame flushed %d cells, want 1", len(changed))
	}
	if changed[0].X != 1 || changed[0].Cell.Content != "o" {
		t.Errorf("update = %+v, want 'o' at x=1", changed[0])
	}
}

func TestDrawIncrementsFrameCounter(t *testing.T) {
	fb := newFakeBackend(10, 4)
	s := NewScreen(fb, FullScreen(), nil)
	var numbers []uint32
	for i := 0; i < 3; i++ {
		s.Draw(func(f *Frame) {
			numbers = append(numbers, f.Number())
		})
	}
	for i, n := range numbers {
		if n != uint32(i) {
			t.Errorf("frame %d numbered %d", i, n)
		}
	}
	if s.FrameCount() != 3 {
		t.Errorf("FrameCount = %d, want 3", s.FrameCount())
	}
}

func TestDrawCursorRequest(t *testing.T) {
	fb := newFakeBackend(10, 4)
	s := NewScreen(fb, FullScreen(), nil)

	s.Draw(func(f *Frame) {
		f.SetCursor(3, 2)
	})
	if !fb.cursorVis {
		t.Error("cursor not shown after SetCursor request")
	}
	if fb.setCursor != (core.Point{X: 3, Y: 2}) {
		t.Errorf("cursor positioned at %+v, want (3,2)", fb.setCursor)
	}

	s.Draw(func(f *Frame) {})
	if fb.cursorVis {
		t.Error("cursor still visible without a request")
	}
}

func TestInlineOffsetsUpdatesByAnchor(t *testing.T) {
	fb := newFakeBackend(80, 24)
	fb.cursorY = 20
	fb.cursorOK = true

	s := NewScreen(fb, Inline(6), nil)
	if s.Area().Y != 17 {
		t.Fatalf("anchor = %d, want 17", s.Area().Y)
	}
	if fb.inserted != 5 {
		t.Errorf("inserted %d lines at setup, want 5", fb.inserted)
	}

	fb.draws = nil
	s.Draw(func(f *Frame) {
		render.DrawText(f.Buffer(), 0, 0, "x", core.Style{})
	})
	updates := fb.allDraws()
	if len(updates) != 1 {
		t.Fatalf("flushed %d cells, want 1", len(updates))
	}
	if updates[0].Y != 17 {
		t.Errorf("cell row = %d, want local row 0 at anchor 17", updates[0].Y)
	}
}

func TestInlineCursorQueryFailureFallsBackToOrigin(t *testing.T) {
	fb := newFakeBackend(80, 24)
	fb.cursorOK = false
	s := NewScreen(fb, Inline(5), nil)
	if s.Area().Y != 0 {
		t.Errorf("anchor = %d, want origin fallback", s.Area().Y)
	}
}

func TestFixedViewportNeverResizes(t *testing.T) {
	fb := newFakeBackend(80, 24)
	rect := core.Area{X: 5, Y: 3, Width: 20, Height: 4}
	s := NewScreen(fb, Fixed(rect), nil)

	fb.width, fb.height = 40, 12
	s.Draw(func(f *Frame) {})
	if s.Area() != rect {
		t.Errorf("fixed area = %+v changed on terminal resize", s.Area())
	}
}

func TestResizeForcesFullRepaint(t *testing.T) {
	fb := newFakeBackend(20, 5)
	s := NewScreen(fb, FullScreen(), nil)

	paint := func(f *Frame) {
		render.DrawText(f.Buffer(), 0, 0, "abc", core.Style{})
	}
	s.Draw(paint)

	fb.width = 30
	fb.draws = nil
	s.Draw(paint)
	if len(fb.allDraws()) != 3 {
		t.Errorf("post-resize frame flushed %d cells, want full repaint of 3", len(fb.allDraws()))
	}
	if s.Area().Width != 30 {
		t.Errorf("area width = %d, want 30", s.Area().Width)
	}
}

func TestInsertBeforeRequiresInline(t *testing.T) {
	fb := newFakeBackend(20, 5)
	s := NewScreen(fb, FullScreen(), nil)
	defer func() {
		if recover() == nil {
			t.Fatal("InsertBefore on full-screen viewport did not panic")
		}
	}()
	s.InsertBefore(1, func(f *Frame) {})
}

func TestInsertBeforeShiftsAnchorDown(t *testing.T) {
	fb := newFakeBackend(80, 24)
	fb.cursorY = 2
	fb.cursorOK = true

	s := NewScreen(fb, Inline(4), nil)
	if s.Area().Y != 2 {
		t.Fatalf("anchor = %d, want 2", s.Area().Y)
	}

	fb.draws = nil
	s.InsertBefore(3, func(f *Frame) {
		render.DrawText(f.Buffer(), 0, 0, "log", core.Style{})
	})
	if s.Area().Y != 5 {
		t.Errorf("anchor = %d after inserting 3 lines, want 5", s.Area().Y)
	}
	updates := fb.allDraws()
	if len(updates) == 0 {
		t.Fatal("insert flushed nothing")
	}
	// Inserted content occupies the rows vacated above the new anchor
	if updates[0].Y != 2 {
		t.Errorf("first inserted row = %d, want old anchor 2", updates[0].Y)
	}
}

func TestInsertBeforeTallContentScrolls(t *testing.T) {
	fb := newFakeBackend(40, 10)
	fb.cursorY = 9
	fb.cursorOK = true

	s := NewScreen(fb, Inline(4), nil)
	before := fb.inserted
	s.InsertBefore(12, func(f *Frame) {})

	// 12 rows cannot fit above a 4-row viewport on a 10-row terminal;
	// the remainder scrolls through in bounded chunks
	if fb.inserted == before {
		t.Error("tall insert did not scroll the terminal")
	}
	if s.Area().Bottom() > 10 {
		t.Errorf("viewport bottom %d extends past terminal", s.Area().Bottom())
	}
}

func TestInsertBeforeFullHeightViewportKeepsContent(t *testing.T) {
	fb := newFakeBackend(20, 5)
	s := NewScreen(fb, Inline(5), nil)
	if s.Area().Y != 0 {
		t.Fatalf("anchor = %d, want 0 for a full-height inline viewport", s.Area().Y)
	}

	fb.draws = nil
	before := fb.inserted
	s.InsertBefore(2, func(f *Frame) {
		render.DrawText(f.Buffer(), 0, 0, "one", core.Style{})
		render.DrawText(f.Buffer(), 0, 1, "two", core.Style{})
	})

	if got := fb.inserted - before; got != 2 {
		t.Errorf("scrolled %d lines, want 2", got)
	}
	// With no band above the viewport the rows pass through its top
	// before scrolling out; they must still reach the backend
	seen := map[string]bool{}
	for _, u := range fb.allDraws() {
		if u.X == 0 && (u.Cell.Content == "o" || u.Cell.Content == "t") {
			seen[u.Cell.Content] = true
		}
	}
	if !seen["o"] || !seen["t"] {
		t.Errorf("inserted rows never drawn, saw %v", seen)
	}
}

func TestClearInvalidatesDiffHistory(t *testing.T) {
	fb := newFakeBackend(20, 5)
	s := NewScreen(fb, FullScreen(), nil)

	paint := func(f *Frame) {
		render.DrawText(f.Buffer(), 0, 0, "zz", core.Style{})
	}
	s.Draw(paint)
	s.Clear()

	fb.draws = nil
	s.Draw(paint)
	if len(fb.allDraws()) != 2 {
		t.Errorf("post-clear frame flushed %d cells, want all 2", len(fb.allDraws()))
	}
}

package render

import (
	"testing"

	"github.com/lixenwraith/cellterm/core"
)

func TestBufferSetGet(t *testing.T) {
	b := NewBuffer(core.Area{Width: 4, Height: 3})
	c := core.Cell{Content: "x", Style: core.Style{Fg: core.RGBWhite}}
	b.Set(2, 1, c)
	if got := b.Get(2, 1); got != c {
		t.Errorf("Get(2,1) = %+v, want %+v", got, c)
	}
	if got := b.Get(0, 0); got != core.BlankCell {
		t.Errorf("untouched cell = %+v, want blank", got)
	}
}

func TestBufferOutOfBoundsPanics(t *testing.T) {
	b := NewBuffer(core.Area{Width: 2, Height: 2})
	defer func() {
		if recover() == nil {
			t.Fatal("out-of-bounds Set did not panic")
		}
	}()
	b.Set(2, 0, core.BlankCell)
}

func TestDiffReportsChangedCells(t *testing.T) {
	area := core.Area{Width: 3, Height: 1}
	prev := NewBuffer(area)
	cur := NewBuffer(area)

	for i, s := range []string{"a", "b", "c"} {
		prev.Set(i, 0, core.Cell{Content: s})
	}
	for i, s := range []string{"a", "x", "c"} {
		cur.Set(i, 0, core.Cell{Content: s})
	}

	updates := cur.Diff(prev)
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1: %+v", len(updates), updates)
	}
	u := updates[0]
	if u.X != 1 || u.Y != 0 || u.Cell.Content != "x" {
		t.Errorf("update = %+v, want (1,0) 'x'", u)
	}
}

func TestDiffIdenticalBuffersEmpty(t *testing.T) {
	area := core.Area{Width: 5, Height: 2}
	prev := NewBuffer(area)
	cur := NewBuffer(area)
	cur.Set(1, 1, core.Cell{Content: "z"})
	prev.Set(1, 1, core.Cell{Content: "z"})

	if updates := cur.Diff(prev); len(updates) != 0 {
		t.Errorf("identical buffers produced updates: %+v", updates)
	}
}

func TestDiffRowMajorOrder(t *testing.T) {
	area := core.Area{Width: 3, Height: 2}
	prev := NewBuffer(area)
	cur := NewBuffer(area)
	cur.Set(2, 0, core.Cell{Content: "a"})
	cur.Set(0, 1, core.Cell{Content: "b"})

	updates := cur.Diff(prev)
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	if updates[0].Y != 0 || updates[1].Y != 1 {
		t.Errorf("updates out of row-major order: %+v", updates)
	}
}

func TestDiffDimensionMismatchPanics(t *testing.T) {
	a := NewBuffer(core.Area{Width: 2, Height: 2})
	b := NewBuffer(core.Area{Width: 3, Height: 2})
	defer func() {
		if recover() == nil {
			t.Fatal("dimension mismatch did not panic")
		}
	}()
	a.Diff(b)
}

func TestDiffWideGlyphSingleUpdate(t *testing.T) {
	area := core.Area{Width: 4, Height: 1}
	prev := NewBuffer(area)
	cur := NewBuffer(area)

	cur.Set(0, 0, core.Cell{Content: "世"})
	cur.Set(1, 0, core.Cell{Skip: true})

	updates := cur.Diff(prev)
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1 (skip cells never reported): %+v", len(updates), updates)
	}
	if updates[0].X != 0 || updates[0].Cell.Content != "世" {
		t.Errorf("update = %+v, want leading wide cell", updates[0])
	}
}

func TestDiffWidePairTrailingChangeReportsLeader(t *testing.T) {
	area := core.Area{Width: 4, Height: 1}
	prev := NewBuffer(area)
	cur := NewBuffer(area)

	// Same leading cell both frames, covered column differs in style
	wide := core.Cell{Content: "世"}
	prev.Set(0, 0, wide)
	prev.Set(1, 0, core.Cell{Skip: true})
	cur.Set(0, 0, wide)
	cur.Set(1, 0, core.Cell{Skip: true, Style: core.Style{Bg: core.RGBWhite}})

	updates := cur.Diff(prev)
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want leading cell re-emitted: %+v", len(updates), updates)
	}
	if updates[0].X != 0 {
		t.Errorf("update at x=%d, want 0", updates[0].X)
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	b := NewBuffer(core.Area{Width: 4, Height: 4})
	b.Set(1, 1, core.Cell{Content: "k"})
	b.Set(3, 3, core.Cell{Content: "g"})

	b.Resize(core.Area{Width: 2, Height: 2})
	if got := b.Get(1, 1); got.Content != "k" {
		t.Errorf("cell (1,1) = %+v, want preserved 'k'", got)
	}

	b.Resize(core.Area{Width: 5, Height: 5})
	if got := b.Get(1, 1); got.Content != "k" {
		t.Errorf("cell (1,1) after grow = %+v, want 'k'", got)
	}
	if got := b.Get(4, 4); got != core.BlankCell {
		t.Errorf("new cell = %+v, want blank", got)
	}
}

func TestResetBlanksEverything(t *testing.T) {
	b := NewBuffer(core.Area{Width: 3, Height: 3})
	b.Fill(core.Area{Width: 3, Height: 3}, "#", core.Style{Fg: core.RGBWhite})
	b.Reset()
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if b.Get(x, y) != core.BlankCell {
				t.Fatalf("cell (%d,%d) not blank after Reset", x, y)
			}
		}
	}
}

func TestRestyleClipsAndPatches(t *testing.T) {
	b := NewBuffer(core.Area{Width: 3, Height: 2})
	b.Set(0, 0, core.Cell{Content: "a", Style: core.Style{Fg: core.RGBWhite}})

	// Rect extends past the buffer; must clip, not panic
	b.Restyle(core.Area{Width: 10, Height: 10}, core.Style{Bg: core.RGB{R: 1, G: 2, B: 3}})

	got := b.Get(0, 0)
	if got.Content != "a" {
		t.Errorf("Restyle altered content: %+v", got)
	}
	if got.Style.Fg != core.RGBWhite || got.Style.Bg != (core.RGB{R: 1, G: 2, B: 3}) {
		t.Errorf("style = %+v, want fg preserved and bg patched", got.Style)
	}
}

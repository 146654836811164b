package render

import (
	"testing"

	"github.com/lixenwraith/cellterm/core"
)

func rowText(b *Buffer, y int) string {
	s := ""
	for x := 0; x < b.Width(); x++ {
		s += b.Get(x, y).Content
	}
	return s
}

func TestDrawLineAlignLeft(t *testing.T) {
	b := NewBuffer(core.Area{Width: 10, Height: 1})
	DrawLine(b, b.Area(), 0, Line{{Text: "hello"}}, core.Style{}, AlignLeft)
	if got := rowText(b, 0); got != "hello     " {
		t.Errorf("row = %q, want %q", got, "hello     ")
	}
}

func TestDrawLineAlignRight(t *testing.T) {
	b := NewBuffer(core.Area{Width: 10, Height: 1})
	DrawLine(b, b.Area(), 0, Line{{Text: "hello"}}, core.Style{}, AlignRight)
	if got := rowText(b, 0); got != "     hello" {
		t.Errorf("row = %q, want %q", got, "     hello")
	}
}

func TestDrawLineAlignCenter(t *testing.T) {
	b := NewBuffer(core.Area{Width: 9, Height: 1})
	DrawLine(b, b.Area(), 0, Line{{Text: "abc"}}, core.Style{}, AlignCenter)
	if got := rowText(b, 0); got != "   abc   " {
		t.Errorf("row = %q, want %q", got, "   abc   ")
	}
}

func TestDrawLineOverflowClipsOppositeAlignment(t *testing.T) {
	b := NewBuffer(core.Area{Width: 3, Height: 1})
	DrawLine(b, b.Area(), 0, Line{{Text: "abcdef"}}, core.Style{}, AlignLeft)
	if got := rowText(b, 0); got != "abc" {
		t.Errorf("left overflow row = %q, want %q", got, "abc")
	}

	b.Reset()
	DrawLine(b, b.Area(), 0, Line{{Text: "abcdef"}}, core.Style{}, AlignRight)
	if got := rowText(b, 0); got != "def" {
		t.Errorf("right overflow row = %q, want %q", got, "def")
	}
}

func TestDrawLineSpanStylePatchesBase(t *testing.T) {
	b := NewBuffer(core.Area{Width: 4, Height: 1})
	base := core.Style{Fg: core.RGBWhite}
	l := Line{
		{Text: "a"},
		{Text: "b", Style: core.Style{Fg: core.RGB{R: 255}}},
	}
	DrawLine(b, b.Area(), 0, l, base, AlignLeft)

	if got := b.Get(0, 0).Style.Fg; got != core.RGBWhite {
		t.Errorf("unstyled span fg = %+v, want base", got)
	}
	if got := b.Get(1, 0).Style.Fg; got != (core.RGB{R: 255}) {
		t.Errorf("styled span fg = %+v, want override", got)
	}
}

func TestDrawWideGlyphPlacesSkipCell(t *testing.T) {
	b := NewBuffer(core.Area{Width: 4, Height: 1})
	DrawText(b, 0, 0, "世a", core.Style{})

	lead := b.Get(0, 0)
	if lead.Content != "世" || lead.Skip {
		t.Errorf("leading cell = %+v, want wide glyph", lead)
	}
	cover := b.Get(1, 0)
	if !cover.Skip || cover.Content != "" {
		t.Errorf("covered cell = %+v, want skip marker", cover)
	}
	if got := b.Get(2, 0); got.Content != "a" {
		t.Errorf("following cell = %+v, want 'a' after wide advance", got)
	}
}

func TestDrawWideGlyphStopsAtEdge(t *testing.T) {
	b := NewBuffer(core.Area{Width: 3, Height: 1})
	DrawText(b, 2, 0, "世", core.Style{})
	// A 2-wide glyph cannot start on the last column
	if got := b.Get(2, 0); got != core.BlankCell {
		t.Errorf("edge cell = %+v, want untouched blank", got)
	}
}

func TestDrawZeroWidthCombinesWithPrevious(t *testing.T) {
	b := NewBuffer(core.Area{Width: 4, Height: 1})
	// e + combining acute arrive as separate clusters only when the
	// segmenter splits them; a precomposed cluster stays one cell
	DrawText(b, 0, 0, "éx", core.Style{})

	first := b.Get(0, 0)
	if first.Content != "é" {
		t.Errorf("first cell = %q, want combined cluster", first.Content)
	}
	if got := b.Get(1, 0); got.Content != "x" {
		t.Errorf("second cell = %q, want 'x' (combining mark is zero-width)", got.Content)
	}
}

func TestDrawOverCoveredHalfBlanksLead(t *testing.T) {
	b := NewBuffer(core.Area{Width: 4, Height: 1})
	DrawText(b, 0, 0, "世", core.Style{})
	DrawText(b, 1, 0, "x", core.Style{})

	lead := b.Get(0, 0)
	if lead.Content != " " || lead.Skip {
		t.Errorf("lead cell = %+v, want blanked after its half was overwritten", lead)
	}
	got := b.Get(1, 0)
	if got.Content != "x" || got.Skip {
		t.Errorf("overwritten cell = %+v, want plain 'x'", got)
	}
}

func TestDrawOverLeadFreesCoveredCell(t *testing.T) {
	b := NewBuffer(core.Area{Width: 4, Height: 1})
	DrawText(b, 0, 0, "世", core.Style{})
	DrawText(b, 0, 0, "y", core.Style{})

	if got := b.Get(0, 0); got.Content != "y" {
		t.Errorf("lead cell = %q, want 'y'", got.Content)
	}
	cover := b.Get(1, 0)
	if cover.Skip || cover.Content != " " {
		t.Errorf("covered cell = %+v, want freed blank", cover)
	}
}

func TestDrawWideOverWideShiftedSplitsBoth(t *testing.T) {
	b := NewBuffer(core.Area{Width: 5, Height: 1})
	DrawText(b, 1, 0, "世", core.Style{}) // pair at 1..2
	DrawText(b, 2, 0, "界", core.Style{}) // pair at 2..3 straddles it

	if got := b.Get(1, 0); got.Content != " " || got.Skip {
		t.Errorf("old lead = %+v, want blanked", got)
	}
	if got := b.Get(2, 0); got.Content != "界" {
		t.Errorf("new lead = %q, want wide glyph", got.Content)
	}
	if got := b.Get(3, 0); !got.Skip {
		t.Errorf("new covered cell = %+v, want skip marker", got)
	}
}

func TestDrawTextClipsAtRight(t *testing.T) {
	b := NewBuffer(core.Area{Width: 3, Height: 1})
	DrawText(b, 1, 0, "xyz", core.Style{})
	if got := rowText(b, 0); got != " xy" {
		t.Errorf("row = %q, want %q", got, " xy")
	}
}

func TestLineWidthCountsColumns(t *testing.T) {
	l := Line{{Text: "ab"}, {Text: "世"}}
	if got := l.Width(); got != 4 {
		t.Errorf("Width = %d, want 4", got)
	}
}

func TestDrawLineOffRowIgnored(t *testing.T) {
	b := NewBuffer(core.Area{Width: 3, Height: 2})
	DrawLine(b, b.Area(), 5, Line{{Text: "abc"}}, core.Style{}, AlignLeft)
	if got := rowText(b, 0) + rowText(b, 1); got != "      " {
		t.Errorf("out-of-rect row wrote cells: %q", got)
	}
}

package render

import (
	"github.com/rivo/uniseg"

	"github.com/lixenwraith/cellterm/core"
)

// Align selects horizontal placement of a line within its rectangle
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Span is a run of text sharing one style patch
type Span struct {
	Text  string
	Style core.Style
}

// Line is an ordered sequence of spans forming one row of output
type Line []Span

// Width returns the terminal column width of the span
func (s Span) Width() int {
	return uniseg.StringWidth(s.Text)
}

// Width returns the total terminal column width of the line
func (l Line) Width() int {
	w := 0
	for _, s := range l {
		w += uniseg.StringWidth(s.Text)
	}
	return w
}

// cluster is one grapheme with its resolved width and effective style
type cluster struct {
	text  string
	width int
	style core.Style
}

// clusters splits the line into grapheme clusters, resolving each span's
// effective style by patching it over the base style
func clusters(l Line, base core.Style) []cluster {
	var out []cluster
	for _, s := range l {
		eff := base.Patch(s.Style)
		rest := s.Text
		state := -1
		for len(rest) > 0 {
			var g string
			var w int
			g, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
			out = append(out, cluster{text: g, width: w, style: eff})
		}
	}
	return out
}

// DrawText writes a single-style run at (x, y), clipped to the buffer edge
func DrawText(buf *Buffer, x, y int, text string, style core.Style) {
	rect := core.Area{Width: buf.Width(), Height: buf.Height()}
	drawClusters(buf, rect, x, y, clusters(Line{{Text: text}}, style))
}

// DrawLine rasterizes a styled line into rect at row y (buffer-local).
// Content never wraps: a line wider than rect is trimmed on the side
// opposite its alignment, a narrower line is offset into position
func DrawLine(buf *Buffer, rect core.Area, y int, l Line, base core.Style, align Align) {
	cs := clusters(l, base)
	lineW := 0
	for _, c := range cs {
		lineW += c.width
	}

	startX := rect.X
	if lineW <= rect.Width {
		switch align {
		case AlignCenter:
			startX += (rect.Width - lineW) / 2
		case AlignRight:
			startX += rect.Width - lineW
		}
	} else {
		overflow := lineW - rect.Width
		var offset int
		switch align {
		case AlignLeft:
			offset = 0
		case AlignCenter:
			offset = overflow / 2
		case AlignRight:
			offset = overflow
		}
		cs = trimLeading(cs, offset)
	}

	drawClusters(buf, rect, startX, y, cs)
}

// trimLeading drops grapheme clusters from the front until offset columns
// are consumed, so the visually trailing part of the run remains
func trimLeading(cs []cluster, offset int) []cluster {
	consumed := 0
	i := 0
	for i < len(cs) && consumed < offset {
		consumed += cs[i].width
		i++
	}
	return cs[i:]
}

// drawClusters writes clusters left-to-right from startX on row y, truncating
// at the right edge of rect. Zero-width clusters combine with the previously
// written cell; double-width clusters mark the following column as skipped
func drawClusters(buf *Buffer, rect core.Area, startX, y int, cs []cluster) {
	if y < rect.Y || y >= rect.Bottom() {
		return
	}

	x := startX
	lastX := -1 // Column of the last written cell
	seeded := false

	for _, c := range cs {
		// Left clip: a cluster straddling the left edge is dropped whole
		if x < rect.X {
			x += c.width
			continue
		}
		if x+c.width > rect.Right() {
			break
		}

		switch {
		case !seeded:
			if x >= rect.Right() {
				continue
			}
			// Seed the starting cell even for a zero-width cluster,
			// so a run opening with combining marks has a home
			splitPair(buf, x, y)
			buf.Set(x, y, core.Cell{Content: c.text, Style: c.style})
			lastX = x
			seeded = true
		case c.width == 0 && lastX >= 0:
			// Combining cluster joins the prior glyph
			prev := buf.Get(lastX, y)
			prev.Content += c.text
			buf.Set(lastX, y, prev)
		default:
			splitPair(buf, x, y)
			buf.Set(x, y, core.Cell{Content: c.text, Style: c.style})
			lastX = x
		}

		if c.width == 2 {
			// Covered column carries no content; clearing it here keeps
			// stale glyphs from surviving under the wide pair
			splitPair(buf, x+1, y)
			buf.Set(x+1, y, core.Cell{Content: "", Style: c.style, Skip: true})
		}

		x += c.width
	}
}

// splitPair repairs the wide pair a write at (x, y) is about to
// straddle: overwriting the covered half blanks the leading glyph,
// overwriting the lead frees its covered cell. Without this a pair hit
// on one side only would render as half a glyph
func splitPair(buf *Buffer, x, y int) {
	old := buf.Get(x, y)
	if old.Skip {
		if x > 0 {
			lead := buf.Get(x-1, y)
			buf.Set(x-1, y, core.Cell{Content: " ", Style: lead.Style})
		}
		return
	}
	if x+1 < buf.Width() {
		if covered := buf.Get(x+1, y); covered.Skip {
			buf.Set(x+1, y, core.Cell{Content: " ", Style: covered.Style})
		}
	}
}

package screen

import (
	"fmt"

	"github.com/lixenwraith/cellterm/core"
)

// Kind selects the viewport placement strategy
type Kind uint8

const (
	// KindFullScreen covers the whole terminal on the alternate screen
	KindFullScreen Kind = iota
	// KindInline anchors a fixed-height band at the shell cursor, leaving
	// scrollback intact
	KindInline
	// KindFixed covers an explicit rectangle and never resizes
	KindFixed
)

// Viewport describes where on the terminal a Screen paints.
// The variant is immutable for the lifetime of a Screen
type Viewport struct {
	Kind   Kind
	Height int       // Inline only
	Rect   core.Area // Fixed only
}

// FullScreen returns a viewport covering the entire terminal
func FullScreen() Viewport {
	return Viewport{Kind: KindFullScreen}
}

// Inline returns a viewport of the given height anchored at the cursor
func Inline(height int) Viewport {
	if height < 1 {
		panic(fmt.Sprintf("screen: inline viewport height must be positive, got %d", height))
	}
	return Viewport{Kind: KindInline, Height: height}
}

// Fixed returns a viewport pinned to an explicit terminal rectangle
func Fixed(rect core.Area) Viewport {
	if rect.Empty() {
		panic("screen: fixed viewport rectangle is empty")
	}
	return Viewport{Kind: KindFixed, Rect: rect}
}

// inlinePlacement is the result of the inline anchoring computation
type inlinePlacement struct {
	insert int        // blank lines the backend must scroll in below the cursor
	area   core.Area  // viewport rectangle in terminal coordinates
	cursor core.Point // adjusted cursor position after placement
}

// placeInline computes where an inline viewport of height h lands given the
// terminal size, the current cursor position (0-indexed), and the cursor's
// prior row offset within the previous viewport (0 when there was none).
// The viewport never extends past the bottom row; top rows are sacrificed
// when the requested height does not fit below the cursor
func placeInline(h, termW, termH int, cursor core.Point, priorOffset int) inlinePlacement {
	if h > termH {
		h = termH
	}

	linesAfter := h - priorOffset - 1
	if linesAfter < 0 {
		linesAfter = 0
	}

	// Rows strictly below the cursor, keeping the bottom row free so the
	// scrolled-in lines never push content off screen
	available := termH - cursor.Y - 2
	if available < 0 {
		available = 0
	}

	anchor := cursor.Y
	if linesAfter > available {
		anchor -= linesAfter - available
	}
	anchor -= priorOffset

	if anchor+h > termH {
		anchor = termH - h
	}
	if anchor < 0 {
		anchor = 0
	}

	return inlinePlacement{
		insert: linesAfter,
		area:   core.Area{X: 0, Y: anchor, Width: termW, Height: h},
		cursor: core.Point{X: cursor.X, Y: anchor + priorOffset},
	}
}

package core

// Cell represents a single terminal grid position
// Content holds one grapheme cluster, possibly multiple codepoints
// A Skip cell carries no content of its own; it is covered by the
// double-width grapheme in the column immediately before it
type Cell struct {
	Content string
	Style   Style
	Skip    bool
}

// BlankCell is the post-clear contents of every grid position
var BlankCell = Cell{Content: " "}

// Blank returns true if the cell equals the cleared state
func (c Cell) Blank() bool {
	return c == BlankCell
}

// CellUpdate is one entry of a grid diff: the cell now wanted at (X, Y)
// Coordinates are relative to the grid that produced the diff
type CellUpdate struct {
	X, Y int
	Cell Cell
}

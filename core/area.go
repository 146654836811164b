package core

// Point represents a 2D coordinate
type Point struct {
	X, Y int
}

// Area represents a rectangular target region
type Area struct {
	X, Y          int // Top-left corner
	Width, Height int // Dimensions (minimum 1x1)
}

// NewArea creates an area anchored at (x, y)
func NewArea(x, y, width, height int) Area {
	return Area{X: x, Y: y, Width: width, Height: height}
}

// Right returns the first column past the right edge
func (a Area) Right() int {
	return a.X + a.Width
}

// Bottom returns the first row past the bottom edge
func (a Area) Bottom() int {
	return a.Y + a.Height
}

// Contains returns true if the point lies inside the area
func (a Area) Contains(x, y int) bool {
	return x >= a.X && x < a.Right() && y >= a.Y && y < a.Bottom()
}

// Empty returns true if the area covers no cells
func (a Area) Empty() bool {
	return a.Width <= 0 || a.Height <= 0
}

// Intersect returns the overlapping region of two areas
// An empty Area is returned when they do not overlap
func (a Area) Intersect(b Area) Area {
	x := max(a.X, b.X)
	y := max(a.Y, b.Y)
	r := min(a.Right(), b.Right())
	bt := min(a.Bottom(), b.Bottom())
	if r <= x || bt <= y {
		return Area{}
	}
	return Area{X: x, Y: y, Width: r - x, Height: bt - y}
}

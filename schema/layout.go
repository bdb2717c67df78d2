package schema

// Point is a position in window coordinates.
type Point struct {
	X int
	Y int
}

// Rect is a rectangle in window coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle has zero visible area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies within the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// LayoutInput is the complete compositor input. Layout is a pure function
// of these four fields plus the private flag; no other state participates.
type LayoutInput struct {
	Width            int
	Height           int
	SidebarCollapsed bool
	FullscreenVideo  bool
	PrivateWindow    bool
}

// Layout assigns a screen region to each surface role.
type Layout struct {
	Toolbar Rect
	Sidebar Rect
	Content Rect
}

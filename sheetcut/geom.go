package sheetcut

import (
	"image"
)

// Rectangle is an axis-aligned box in composite-image pixel coordinates.
type Rectangle struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NewRect creates a new Rectangle
func NewRect(x, y, width, height int) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// NewRectFrom converts the standard library representation
func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      rect.Min.X,
		Y:      rect.Min.Y,
		Width:  rect.Dx(),
		Height: rect.Dy(),
	}
}

// ToImageRect converts to the standard library representation
func (r Rectangle) ToImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the rectangle has zero width or height
func (r Rectangle) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether other lies entirely inside r
func (r Rectangle) Contains(other Rectangle) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// Expand grows the rectangle by n pixels on every side, clamped to bounds.
func (r Rectangle) Expand(n int, bounds image.Rectangle) Rectangle {
	x0 := maxInt(r.X-n, bounds.Min.X)
	y0 := maxInt(r.Y-n, bounds.Min.Y)
	x1 := minInt(r.X+r.Width+n, bounds.Max.X)
	y1 := minInt(r.Y+r.Height+n, bounds.Max.Y)
	return Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// AspectRatio returns the long-side to short-side ratio.
// Degenerate rectangles report an arbitrarily large ratio.
func (r Rectangle) AspectRatio() float64 {
	longSide := maxInt(r.Width, r.Height)
	shortSide := minInt(r.Width, r.Height)
	if shortSide <= 0 {
		return 1e9
	}
	return float64(longSide) / float64(shortSide)
}

// Point is a pixel coordinate
type Point struct {
	X int
	Y int
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

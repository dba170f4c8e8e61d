package compose

import (
	"image"
	"math"
)

// Point represents a 2D point or vector.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Box is an element's bounding box in surface pixels. A negative width or
// height extends the box left or up from X, Y.
type Box struct {
	X, Y, W, H float64
}

// Normalize returns the same box with non-negative width and height.
func (b Box) Normalize() Box {
	if b.W < 0 {
		b.X, b.W = b.X+b.W, -b.W
	}
	if b.H < 0 {
		b.Y, b.H = b.Y+b.H, -b.H
	}
	return b
}

// Empty reports whether the box covers no area.
func (b Box) Empty() bool {
	return b.W == 0 || b.H == 0 || math.IsNaN(b.W) || math.IsNaN(b.H)
}

// Center returns the center of the box.
func (b Box) Center() Point {
	return Pt(b.X+b.W/2, b.Y+b.H/2)
}

// InnerRadius returns half the smaller side: the radius of the largest
// circle centered in the box.
func (b Box) InnerRadius() float64 {
	n := b.Normalize()
	return math.Min(n.W, n.H) / 2
}

// maxPixelCoord bounds the pixel rectangles derived from boxes so that
// far-off or enormous boxes still convert to valid ints.
const maxPixelCoord = 1 << 24

// Rect returns the pixel rectangle covered by the box, with edges rounded
// to the nearest pixel boundary and limited to ±maxPixelCoord.
func (b Box) Rect() image.Rectangle {
	n := b.Normalize()
	return image.Rect(
		pixelCoord(n.X), pixelCoord(n.Y),
		pixelCoord(n.X+n.W), pixelCoord(n.Y+n.H),
	)
}

func pixelCoord(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Min(math.Max(v, -maxPixelCoord), maxPixelCoord)))
}

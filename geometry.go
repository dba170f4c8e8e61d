package compose

import "math"

// ClampRadius limits a corner radius to [0, min(w, h)/2].
func ClampRadius(w, h, radius float64) float64 {
	maxR := math.Min(math.Abs(w), math.Abs(h)) / 2
	switch {
	case radius <= 0 || math.IsNaN(radius):
		return 0
	case radius > maxR:
		return maxR
	default:
		return radius
	}
}

// RoundedRectPath returns the fill region of a rectangle element: four
// edges joined by quarter circles of the clamped radius, or a plain
// rectangle when the clamped radius is zero. An empty box yields an empty
// path.
func RoundedRectPath(x, y, w, h, radius float64) *Path {
	p := NewPath()
	b := Box{X: x, Y: y, W: w, H: h}.Normalize()
	if b.Empty() {
		return p
	}
	r := ClampRadius(b.W, b.H, radius)
	if r == 0 {
		p.Rectangle(b.X, b.Y, b.W, b.H)
		return p
	}
	p.RoundedRectangle(b.X, b.Y, b.W, b.H, r)
	return p
}

// CircularClip returns the clip region of a circle-clipped image: a circle
// centered in the box with radius min(w, h)/2.
func CircularClip(x, y, w, h float64) *Path {
	b := Box{X: x, Y: y, W: w, H: h}
	return disc(b, b.InnerRadius())
}

// RingBorder returns the disc painted in the border color before a
// circle-clipped image. Its radius is min(w, h)/2 + borderWidth/2, so
// once the image covers the inner circle the visible ring is
// borderWidth/2 wide. It returns nil when borderWidth is not positive.
func RingBorder(x, y, w, h, borderWidth float64) *Path {
	if !(borderWidth > 0) {
		return nil
	}
	b := Box{X: x, Y: y, W: w, H: h}
	return disc(b, b.InnerRadius()+borderWidth/2)
}

func disc(b Box, r float64) *Path {
	p := NewPath()
	if !(r > 0) {
		return p
	}
	c := b.Center()
	p.Circle(c.X, c.Y, r)
	return p
}

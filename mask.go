package compose

import (
	"image"
	"math"

	"golang.org/x/image/vector"
)

// coverBand is how far beyond the clip rectangle path coordinates are
// kept. Farther points are pulled in to the band edge, which keeps every
// coordinate finite and exact in float32 for the rasterizer.
const coverBand = 1 << 16

// coverage rasterizes p into an anti-aliased alpha mask. The mask is in
// surface coordinates and covers only the part of the path's bounds that
// lies inside clip.
func coverage(p *Path, clip image.Rectangle) *image.Alpha {
	if p == nil || p.Empty() {
		return image.NewAlpha(image.Rectangle{})
	}
	lo, hi := p.Bounds()
	if math.IsNaN(lo.X) || math.IsNaN(lo.Y) || math.IsNaN(hi.X) || math.IsNaN(hi.Y) {
		return image.NewAlpha(image.Rectangle{})
	}
	minX, maxX := float64(clip.Min.X-coverBand), float64(clip.Max.X+coverBand)
	minY, maxY := float64(clip.Min.Y-coverBand), float64(clip.Max.Y+coverBand)
	fit := func(q Point) Point {
		return Pt(math.Min(math.Max(q.X, minX), maxX), math.Min(math.Max(q.Y, minY), maxY))
	}
	lo, hi = fit(lo), fit(hi)

	region := image.Rect(
		int(math.Floor(lo.X)), int(math.Floor(lo.Y)),
		int(math.Ceil(hi.X)), int(math.Ceil(hi.Y)),
	).Intersect(clip)

	mask := image.NewAlpha(region)
	if region.Empty() {
		return mask
	}

	z := vector.NewRasterizer(region.Dx(), region.Dy())
	origin := Pt(float64(region.Min.X), float64(region.Min.Y))
	at := func(q Point) (float32, float32) {
		q = fit(q)
		return f32(q.X - origin.X), f32(q.Y - origin.Y)
	}
	for _, elem := range p.Elements() {
		switch e := elem.(type) {
		case MoveTo:
			z.MoveTo(at(e.Point))
		case LineTo:
			z.LineTo(at(e.Point))
		case QuadTo:
			cx, cy := at(e.Control)
			x, y := at(e.Point)
			z.QuadTo(cx, cy, x, y)
		case CubicTo:
			c1x, c1y := at(e.Control1)
			c2x, c2y := at(e.Control2)
			x, y := at(e.Point)
			z.CubeTo(c1x, c1y, c2x, c2y, x, y)
		case Close:
			z.ClosePath()
		}
	}
	z.Draw(mask, region, image.Opaque, image.Point{})
	return mask
}

// intersectMasks returns the product of two masks over the intersection
// of their bounds.
func intersectMasks(a, b *image.Alpha) *image.Alpha {
	region := a.Rect.Intersect(b.Rect)
	out := image.NewAlpha(region)
	for y := region.Min.Y; y < region.Max.Y; y++ {
		ai, bi, oi := a.PixOffset(region.Min.X, y), b.PixOffset(region.Min.X, y), out.PixOffset(region.Min.X, y)
		for x := 0; x < region.Dx(); x++ {
			out.Pix[oi+x] = mulAlpha(a.Pix[ai+x], b.Pix[bi+x])
		}
	}
	return out
}

// mulAlpha multiplies two 8-bit coverage values with rounding.
func mulAlpha(a, b uint8) uint8 {
	return uint8((uint32(a)*uint32(b) + 127) / 255)
}

func f32(v float64) float32 { return float32(v) }

package compose

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Canvas is the raster surface of one render. It is not safe for
// concurrent use.
type Canvas struct {
	img  *image.RGBA
	clip *image.Alpha // nil when unclipped
}

// NewCanvas creates a transparent canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Clear replaces every pixel with col, ignoring the clip.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Rect, image.NewUniform(col), image.Point{}, draw.Src)
}

// Clip restricts later painting to the inside of p, intersected with any
// clip already in effect.
func (c *Canvas) Clip(p *Path) {
	m := coverage(p, c.img.Rect)
	if c.clip != nil {
		m = intersectMasks(c.clip, m)
	}
	c.clip = m
}

// ResetClip removes the clip.
func (c *Canvas) ResetClip() {
	c.clip = nil
}

// FillPath paints the inside of p with col, source-over.
func (c *Canvas) FillPath(p *Path, col color.Color) {
	bounds := c.img.Rect
	if c.clip != nil {
		bounds = c.clip.Rect
	}
	m := coverage(p, bounds)
	if c.clip != nil {
		m = intersectMasks(c.clip, m)
	}
	if m.Rect.Empty() {
		return
	}
	draw.DrawMask(c.img, m.Rect, image.NewUniform(col), image.Point{}, m, m.Rect.Min, draw.Over)
}

// DrawImage paints src stretched to fill b, source-over. Aspect ratio is
// not preserved.
func (c *Canvas) DrawImage(src image.Image, b Box) {
	dr := b.Rect()
	vis := dr.Intersect(c.img.Rect)
	if c.clip != nil {
		vis = vis.Intersect(c.clip.Rect)
	}
	if vis.Empty() || src.Bounds().Empty() {
		return
	}

	scaled := image.NewRGBA(vis)
	sr := src.Bounds()
	if sr.Size() == dr.Size() {
		draw.Draw(scaled, vis, src, sr.Min.Add(vis.Min.Sub(dr.Min)), draw.Src)
	} else {
		xdraw.BiLinear.Scale(scaled, dr, src, sr, xdraw.Src, nil)
	}

	if c.clip == nil {
		draw.Draw(c.img, vis, scaled, vis.Min, draw.Over)
		return
	}
	draw.DrawMask(c.img, vis, scaled, vis.Min, c.clip, vis.Min, draw.Over)
}

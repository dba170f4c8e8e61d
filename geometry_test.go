package compose

import (
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClampRadius(t *testing.T) {
	tests := []struct {
		w, h, r, want float64
	}{
		{100, 50, 10, 10},
		{100, 50, 25, 25},
		{100, 50, 80, 25},
		{100, 50, -5, 0},
		{100, 50, math.NaN(), 0},
		{-100, 50, 80, 25},
	}
	for _, tt := range tests {
		if got := ClampRadius(tt.w, tt.h, tt.r); got != tt.want {
			t.Errorf("ClampRadius(%v, %v, %v) = %v, want %v", tt.w, tt.h, tt.r, got, tt.want)
		}
	}
}

func TestRoundedRectPathClamp(t *testing.T) {
	maxed := RoundedRectPath(10, 20, 100, 60, 30)
	over := RoundedRectPath(10, 20, 100, 60, 500)
	if diff := cmp.Diff(maxed.Elements(), over.Elements()); diff != "" {
		t.Errorf("oversized radius should produce the maximal path (-max +over):\n%s", diff)
	}

	lo, hi := over.Bounds()
	if lo != Pt(10, 20) || hi != Pt(110, 80) {
		t.Errorf("path overshoots its box: bounds %v..%v", lo, hi)
	}
}

func TestRoundedRectPathPlain(t *testing.T) {
	for _, r := range []float64{0, -3} {
		p := RoundedRectPath(0, 0, 10, 10, r)
		want := []PathElement{
			MoveTo{Pt(0, 0)}, LineTo{Pt(10, 0)}, LineTo{Pt(10, 10)}, LineTo{Pt(0, 10)}, Close{},
		}
		if diff := cmp.Diff(want, p.Elements()); diff != "" {
			t.Errorf("radius %v: expected plain rectangle (-want +got):\n%s", r, diff)
		}
	}
	if !RoundedRectPath(0, 0, 0, 10, 4).Empty() {
		t.Error("zero-width rectangle should yield an empty path")
	}
}

func TestRoundedRectCorners(t *testing.T) {
	c := NewCanvas(100, 100)
	c.Clear(color.White)
	c.FillPath(RoundedRectPath(0, 0, 100, 100, 40), color.Black)

	if r, _, _, _ := c.Image().At(1, 1).RGBA(); r != 0xffff {
		t.Error("rounded corner pixel should stay unpainted")
	}
	if r, _, _, _ := c.Image().At(50, 50).RGBA(); r != 0 {
		t.Error("center pixel should be painted")
	}
	if r, _, _, _ := c.Image().At(50, 1).RGBA(); r != 0 {
		t.Error("top edge midpoint should be painted")
	}
}

func TestCircularClip(t *testing.T) {
	p := CircularClip(100, 50, 80, 40)
	lo, hi := p.Bounds()
	if lo != Pt(120, 50) || hi != Pt(160, 90) {
		t.Errorf("clip circle bounds = %v..%v, want radius 20 centred at (140,70)", lo, hi)
	}
}

func TestRingBorder(t *testing.T) {
	if RingBorder(0, 0, 100, 100, 0) != nil {
		t.Error("zero border width should yield no ring")
	}
	lo, hi := RingBorder(0, 0, 100, 100, 20).Bounds()
	if lo != Pt(-10, -10) || hi != Pt(110, 110) {
		t.Errorf("ring bounds = %v..%v, want radius 60", lo, hi)
	}
}

// Painting through a circular clip must never touch pixels further than
// the clip radius (plus one pixel of anti-aliasing) from the center.
func TestCircularClipContainsPaint(t *testing.T) {
	const size = 200
	c := NewCanvas(size, size)
	src := NewCanvas(10, 10)
	src.Clear(color.Black)

	x, y, w, h := 30.0, 40.0, 120.0, 90.0
	c.Clip(CircularClip(x, y, w, h))
	c.DrawImage(src.Image(), Box{X: x, Y: y, W: w, H: h})
	c.ResetClip()

	center := Box{X: x, Y: y, W: w, H: h}.Center()
	r := math.Min(w, h) / 2
	img := c.Image()
	for py := 0; py < size; py++ {
		for px := 0; px < size; px++ {
			if img.RGBAAt(px, py).A == 0 {
				continue
			}
			d := math.Hypot(float64(px)+0.5-center.X, float64(py)+0.5-center.Y)
			if d > r+1 {
				t.Fatalf("pixel (%d,%d) at distance %.2f painted outside radius %.0f", px, py, d, r)
			}
		}
	}
	if img.RGBAAt(int(center.X), int(center.Y)).A != 0xff {
		t.Error("center of the clip should be fully painted")
	}
}

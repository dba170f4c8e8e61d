package compose

import (
	"image/color"
	"math"
	"testing"
)

func TestShapeAdvance(t *testing.T) {
	r := NewFontRegistry()
	src, _ := r.Resolve("")
	s := newTextShaper()

	one := s.Shape(src, "Hello", 24)
	two := s.Shape(src, "HelloHello", 24)
	if one.Advance <= 0 {
		t.Fatalf("advance = %v, want positive", one.Advance)
	}
	if math.Abs(two.Advance-2*one.Advance) > 1 {
		t.Errorf("doubling the text should double the advance: %v vs %v", two.Advance, one.Advance)
	}
	if big := s.Shape(src, "Hello", 48); math.Abs(big.Advance-2*one.Advance) > 1 {
		t.Errorf("doubling the size should double the advance: %v vs %v", big.Advance, one.Advance)
	}
	if empty := s.Shape(src, "", 24); len(empty.Glyphs) != 0 || empty.Advance != 0 {
		t.Error("empty text should shape to nothing")
	}
	if nl := s.Shape(src, "a\nb", 24); len(nl.Glyphs) != 3 {
		t.Errorf("newline should render as one glyph on the same line, got %d glyphs", len(nl.Glyphs))
	}
}

func TestTextRunOrigin(t *testing.T) {
	run := &TextRun{Advance: 100}
	tests := []struct {
		align Align
		want  float64
	}{
		{AlignLeft, 500},
		{AlignRight, 400},
		{AlignCenter, 450},
	}
	for _, tt := range tests {
		if got := run.Origin(500, tt.align); got != tt.want {
			t.Errorf("Origin(500, %s) = %v, want %v", tt.align, got, tt.want)
		}
	}
}

// inkBounds returns the horizontal extent and lowest row of painted
// pixels.
func inkBounds(c *Canvas) (minX, maxX, maxY int) {
	minX, maxX, maxY = math.MaxInt, -1, -1
	img := c.Image()
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			if img.RGBAAt(x, y).A > 0x80 {
				minX, maxX, maxY = min(minX, x), max(maxX, x), max(maxY, y)
			}
		}
	}
	return minX, maxX, maxY
}

func TestTextAlignment(t *testing.T) {
	r := NewFontRegistry()
	src, _ := r.Resolve("")
	run := newTextShaper().Shape(src, "HHHH", 40)

	tests := []struct {
		align Align
		check func(minX, maxX int) bool
	}{
		{AlignLeft, func(minX, maxX int) bool { return minX >= 200 && minX < 210 }},
		{AlignRight, func(minX, maxX int) bool { return maxX < 200 && maxX > 190 }},
		{AlignCenter, func(minX, maxX int) bool { return math.Abs(float64(minX+maxX)/2-200) < 4 }},
	}
	for _, tt := range tests {
		c := NewCanvas(400, 100)
		c.FillPath(run.Path(run.Origin(200, tt.align), 60), color.Black)
		minX, maxX, maxY := inkBounds(c)
		if maxX < 0 {
			t.Fatalf("%s: nothing painted", tt.align)
		}
		if !tt.check(minX, maxX) {
			t.Errorf("%s: ink spans x %d..%d around anchor 200", tt.align, minX, maxX)
		}
		// 'H' sits on the baseline.
		if maxY < 57 || maxY > 60 {
			t.Errorf("%s: lowest ink row %d, want baseline at 60", tt.align, maxY)
		}
	}
}

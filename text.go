package compose

import (
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// Glyph is a positioned glyph of a shaped line. X and Y are pen offsets
// from the line origin in pixels, Y pointing down.
type Glyph struct {
	ID      uint32
	X, Y    float64
	Advance float64
}

// TextRun is one shaped line of text.
type TextRun struct {
	Source  *FontSource
	Size    float64
	Glyphs  []Glyph
	Advance float64
}

// Origin returns the left end of the baseline for a run anchored at x
// with the given alignment.
func (t *TextRun) Origin(x float64, align Align) float64 {
	switch align {
	case AlignRight:
		return x - t.Advance
	case AlignCenter:
		return x - t.Advance/2
	default:
		return x
	}
}

// textShaper shapes lines with HarfBuzz. HarfbuzzShaper keeps mutable
// buffers, so instances are pooled rather than shared.
type textShaper struct {
	pool sync.Pool
}

func newTextShaper() *textShaper {
	return &textShaper{
		pool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
	}
}

// lineBreaks are drawn as spaces: text elements are single lines.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// Shape lays out text as a single left-to-right line.
func (s *textShaper) Shape(src *FontSource, text string, size float64) *TextRun {
	run := &TextRun{Source: src, Size: size}
	text = norm.NFC.String(lineBreaks.Replace(text))
	if text == "" || size <= 0 {
		return run
	}
	runes := []rune(text)

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(src.shaping),
		Size:      fixed.Int26_6(size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.pool.Put(hb)

	run.Glyphs = make([]Glyph, len(output.Glyphs))
	var pen float64
	for i, g := range output.Glyphs {
		adv := fixedToFloat(g.Advance)
		run.Glyphs[i] = Glyph{
			ID:      uint32(g.GlyphID),
			X:       pen + fixedToFloat(g.XOffset),
			Y:       -fixedToFloat(g.YOffset),
			Advance: adv,
		}
		pen += adv
	}
	run.Advance = pen
	return run
}

// Path returns the filled outline of the run with its baseline origin at
// (x, y).
func (t *TextRun) Path(x, y float64) *Path {
	p := NewPath()
	if t.Source == nil || len(t.Glyphs) == 0 {
		return p
	}
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(t.Size * 64)
	for _, g := range t.Glyphs {
		segments, err := t.Source.outline.LoadGlyph(&buf, sfnt.GlyphIndex(g.ID), ppem, nil)
		if err != nil {
			// Colored and missing glyphs have no outline to fill.
			Logger().Debug("compose: glyph skipped", "glyph", g.ID, "error", err)
			continue
		}
		ox, oy := x+g.X, y+g.Y
		pt := func(q fixed.Point26_6) (float64, float64) {
			return ox + fixedToFloat(q.X), oy + fixedToFloat(q.Y)
		}
		for _, seg := range segments {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if !p.Empty() {
					p.Close()
				}
				p.MoveTo(pt(seg.Args[0]))
			case sfnt.SegmentOpLineTo:
				p.LineTo(pt(seg.Args[0]))
			case sfnt.SegmentOpQuadTo:
				cx, cy := pt(seg.Args[0])
				ex, ey := pt(seg.Args[1])
				p.QuadraticTo(cx, cy, ex, ey)
			case sfnt.SegmentOpCubeTo:
				c1x, c1y := pt(seg.Args[0])
				c2x, c2y := pt(seg.Args[1])
				ex, ey := pt(seg.Args[2])
				p.CubicTo(c1x, c1y, c2x, c2y, ex, ey)
			}
		}
	}
	if !p.Empty() {
		p.Close()
	}
	return p
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

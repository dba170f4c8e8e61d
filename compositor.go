package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/compose/asset"
)

// Renderer composites templates onto raster surfaces.
//
// A Renderer holds no per-render state and is safe for concurrent use.
type Renderer struct {
	acquirer Acquirer
	fonts    *FontRegistry
	shaper   *textShaper
	fallback string
	width    int
	height   int
	blank    color.Color
	prefetch int
	encoder  png.Encoder
}

// NewRenderer creates a Renderer with the given options.
func NewRenderer(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.acquirer == nil {
		o.acquirer = asset.NewLoader()
	}
	if o.fonts == nil {
		o.fonts = NewFontRegistry()
	}
	return &Renderer{
		acquirer: o.acquirer,
		fonts:    o.fonts,
		shaper:   newTextShaper(),
		fallback: o.fallback,
		width:    o.width,
		height:   o.height,
		blank:    o.blank,
		prefetch: o.prefetch,
		encoder:  png.Encoder{CompressionLevel: o.compression},
	}
}

// Fonts returns the renderer's font registry.
func (r *Renderer) Fonts() *FontRegistry { return r.fonts }

// Render composites def with data and returns the result as PNG bytes.
// On failure it returns a *RenderError and no bytes.
func (r *Renderer) Render(ctx context.Context, def *Definition, data Data) ([]byte, error) {
	img, err := r.RenderImage(ctx, def, data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.Encode(&buf, img); err != nil {
		return nil, &RenderError{Index: -1, Err: err}
	}
	return buf.Bytes(), nil
}

// RenderImage composites def with data and returns the finished surface.
//
// The background is loaded first and never fails the render. Image
// sources are then acquired concurrently; the first failure aborts the
// render. Finally elements are painted strictly in order. The context is
// checked between elements, not during one.
func (r *Renderer) RenderImage(ctx context.Context, def *Definition, data Data) (*image.RGBA, error) {
	if def == nil {
		return nil, &RenderError{Index: -1, Err: ErrTemplateUnavailable}
	}
	for i, el := range def.Elements {
		if e, ok := el.(InvalidElement); ok {
			return nil, elementError(i, el, fmt.Errorf("%w: %w", ErrElementShape, e.Err))
		}
	}

	canvas := r.background(ctx, def.Background, data)
	if err := ctx.Err(); err != nil {
		return nil, &RenderError{Index: -1, Err: err}
	}

	images, err := r.acquire(ctx, def.Elements, data)
	if err != nil {
		return nil, err
	}

	for i, el := range def.Elements {
		if err := ctx.Err(); err != nil {
			return nil, &RenderError{Index: -1, Err: err}
		}
		r.paint(canvas, i, el, images[i], data)
	}
	return canvas.Image(), nil
}

// Encode writes img as PNG using the renderer's compression level.
func (r *Renderer) Encode(w io.Writer, img image.Image) error {
	if err := r.encoder.Encode(w, img); err != nil {
		return fmt.Errorf("compose: encode png: %w", err)
	}
	return nil
}

// background builds the surface for a render. A template without a
// background gets a blank surface. A background that fails to load,
// including one whose placeholders resolve to nothing, is replaced by the
// fallback asset, and that by a blank surface.
func (r *Renderer) background(ctx context.Context, bg *string, data Data) *Canvas {
	if bg == nil || *bg == "" {
		return r.blankCanvas()
	}
	source := Resolve(*bg, data)
	img, err := r.loadBackground(ctx, source)
	if err == nil {
		return backgroundCanvas(img)
	}
	Logger().Warn("compose: background failed, trying fallback",
		"source", source, "error", fmt.Errorf("%w: %w", ErrBackgroundUnresolvable, err))

	if r.fallback != "" {
		img, err = r.loadBackground(ctx, r.fallback)
		if err == nil {
			return backgroundCanvas(img)
		}
		Logger().Warn("compose: fallback background failed, using blank surface",
			"source", r.fallback, "error", fmt.Errorf("%w: %w", ErrBackgroundUnresolvable, err))
	}
	return r.blankCanvas()
}

func (r *Renderer) loadBackground(ctx context.Context, source string) (image.Image, error) {
	if source == "" {
		return nil, errors.New("empty source")
	}
	img, err := r.acquirer.Acquire(ctx, source)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, errors.New("image has no pixels")
	}
	return img, nil
}

func (r *Renderer) blankCanvas() *Canvas {
	c := NewCanvas(r.width, r.height)
	c.Clear(r.blank)
	return c
}

// backgroundCanvas returns a surface sized to img and covered by it.
func backgroundCanvas(img image.Image) *Canvas {
	size := img.Bounds().Size()
	c := NewCanvas(size.X, size.Y)
	c.DrawImage(img, Box{W: float64(size.X), H: float64(size.Y)})
	return c
}

// acquire loads the image of every image element, indexed like elements.
func (r *Renderer) acquire(ctx context.Context, elements []Element, data Data) ([]image.Image, error) {
	images := make([]image.Image, len(elements))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.prefetch)
	for i, el := range elements {
		e, ok := el.(ImageElement)
		if !ok {
			continue
		}
		source := Resolve(e.Source, data)
		g.Go(func() error {
			img, err := r.acquirer.Acquire(gctx, source)
			if err != nil {
				return elementError(i, e, fmt.Errorf("%w: %s: %w", ErrAssetAcquisition, source, err))
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// paint draws one element. img is the acquired image for image elements.
func (r *Renderer) paint(c *Canvas, i int, el Element, img image.Image, data Data) {
	switch e := el.(type) {
	case ImageElement:
		b := Box{X: e.X, Y: e.Y, W: e.Width, H: e.Height}
		if !e.Circle() {
			c.DrawImage(img, b)
			return
		}
		if e.Border != nil && e.Border.Width > 0 {
			if col := Resolve(e.Border.Color, data); col != "" {
				c.FillPath(RingBorder(e.X, e.Y, e.Width, e.Height, e.Border.Width), paintColor(col))
			}
		}
		c.Clip(CircularClip(e.X, e.Y, e.Width, e.Height))
		c.DrawImage(img, b)
		c.ResetClip()

	case RectangleElement:
		c.FillPath(RoundedRectPath(e.X, e.Y, e.Width, e.Height, e.Radius), paintColor(Resolve(e.Color, data)))

	case TextElement:
		size := e.FontSize
		if !(size > 0) {
			size = DefaultFontSize
		}
		src, family := r.fonts.Resolve(Resolve(e.Font, data))
		run := r.shaper.Shape(src, Resolve(e.Text, data), size)
		Logger().Debug("compose: text", "index", i, "font", Typography{Size: size, Family: family}.String(), "advance", run.Advance)
		c.FillPath(run.Path(run.Origin(e.X, e.Alignment()), e.Y), paintColor(Resolve(e.Color, data)))

	case UnknownElement:
		Logger().Debug("compose: skipping element of unknown type", "index", i, "type", e.Type)
	}
}

package compose

import (
	"context"
	"image"
	"image/color"
	"image/png"
)

// Default renderer settings.
const (
	DefaultWidth              = 1080
	DefaultHeight             = 1080
	DefaultFallbackBackground = "assets/background.png"
	DefaultPrefetchLimit      = 8
)

// Acquirer turns a resolved source descriptor (a local path or an
// http(s) URL) into decoded pixels.
type Acquirer interface {
	Acquire(ctx context.Context, source string) (image.Image, error)
}

// AcquirerFunc adapts a function to the Acquirer interface.
type AcquirerFunc func(ctx context.Context, source string) (image.Image, error)

// Acquire calls f(ctx, source).
func (f AcquirerFunc) Acquire(ctx context.Context, source string) (image.Image, error) {
	return f(ctx, source)
}

// Option configures a Renderer during creation.
//
// Example:
//
//	r := compose.NewRenderer(
//		compose.WithFonts(fonts),
//		compose.WithFallbackBackground("assets/bg.png"),
//	)
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	acquirer      Acquirer
	fonts         *FontRegistry
	fallback      string
	width, height int
	blank         color.Color
	prefetch      int
	compression   png.CompressionLevel
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		fallback:    DefaultFallbackBackground,
		width:       DefaultWidth,
		height:      DefaultHeight,
		blank:       color.White,
		prefetch:    DefaultPrefetchLimit,
		compression: png.DefaultCompression,
	}
}

// WithAcquirer sets the collaborator that loads backgrounds and image
// sources. The default reads local files relative to the working
// directory and fetches http(s) URLs.
func WithAcquirer(a Acquirer) Option {
	return func(o *options) {
		o.acquirer = a
	}
}

// WithFonts sets the font registry used for text elements.
func WithFonts(r *FontRegistry) Option {
	return func(o *options) {
		o.fonts = r
	}
}

// WithFallbackBackground sets the asset loaded when a template's
// background cannot be. An empty path skips straight to a blank surface.
func WithFallbackBackground(source string) Option {
	return func(o *options) {
		o.fallback = source
	}
}

// WithDefaultSize sets the size of the blank surface used when no
// background is resolved.
func WithDefaultSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.width, o.height = width, height
		}
	}
}

// WithBlankColor sets the fill of the blank surface.
func WithBlankColor(c color.Color) Option {
	return func(o *options) {
		if c != nil {
			o.blank = c
		}
	}
}

// WithPrefetchLimit bounds how many image sources one render acquires
// concurrently.
func WithPrefetchLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.prefetch = n
		}
	}
}

// WithCompressionLevel sets the PNG compression level of encoded output.
func WithCompressionLevel(level png.CompressionLevel) Option {
	return func(o *options) {
		o.compression = level
	}
}

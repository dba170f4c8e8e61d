// Package asset loads the images a template refers to.
//
// A source descriptor beginning with http:// or https:// is fetched over
// the network; anything else is a file path, read relative to the
// loader's root unless it is already absolute. Fetched bytes are decoded
// as PNG, JPEG, GIF, WebP, BMP or TIFF.
//
// Decoded images can optionally be kept in a sharded LRU cache. Rendered
// outputs are never cached here.
package asset

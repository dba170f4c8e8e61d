package compose

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// Built-in font families.
const (
	BrandFamily = "Go"
	MonoFamily  = "Go Mono"
)

// ErrUnknownFamily is returned when a family is not registered.
var ErrUnknownFamily = errors.New("compose: unknown font family")

// FontSource is a parsed font shared across renders. It holds both the
// outline view used for drawing and the shaping view used for layout.
//
// FontSource is safe for concurrent use.
type FontSource struct {
	family  string
	outline *sfnt.Font
	shaping *font.Font
}

// NewFontSource parses TTF or OTF data.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, errors.New("compose: empty font data")
	}
	outline, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("compose: parse font outlines: %w", err)
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("compose: parse font tables: %w", err)
	}

	s := &FontSource{outline: outline, shaping: face.Font}
	if name, err := outline.Name(nil, sfnt.NameIDFamily); err == nil {
		s.family = name
	}
	return s, nil
}

// Family returns the family name embedded in the font, which may be empty.
func (s *FontSource) Family() string { return s.family }

// Typography is the text style of one text element.
type Typography struct {
	Size   float64
	Family string
}

// String formats the typography as a CSS font shorthand with a generic
// fallback, e.g. "24px Go, sans-serif".
func (t Typography) String() string {
	return strconv.FormatFloat(t.Size, 'f', -1, 64) + "px " + t.Family + ", sans-serif"
}

// FontRegistry maps family names to fonts. Lookups are case-insensitive.
// The zero value is not usable; create one with NewFontRegistry.
//
// FontRegistry is safe for concurrent use.
type FontRegistry struct {
	mu       sync.RWMutex
	families map[string]*FontSource
	names    map[string]string // lower-case key -> name as registered
	brand    string
}

// NewFontRegistry returns a registry holding the built-in Go fonts, with
// Go Regular as the brand (default) family.
func NewFontRegistry() *FontRegistry {
	r := &FontRegistry{
		families: make(map[string]*FontSource),
		names:    make(map[string]string),
		brand:    BrandFamily,
	}
	// The embedded Go fonts always parse.
	if err := r.RegisterAs(BrandFamily, goregular.TTF); err != nil {
		panic(err)
	}
	if err := r.RegisterAs(MonoFamily, gomono.TTF); err != nil {
		panic(err)
	}
	return r
}

// Register parses data and registers it under its embedded family name.
func (r *FontRegistry) Register(data []byte) (*FontSource, error) {
	src, err := NewFontSource(data)
	if err != nil {
		return nil, err
	}
	if src.family == "" {
		return nil, errors.New("compose: font has no family name; use RegisterAs")
	}
	r.add(src.family, src)
	return src, nil
}

// RegisterAs parses data and registers it under family, replacing any
// font already registered under that name.
func (r *FontRegistry) RegisterAs(family string, data []byte) error {
	family = strings.TrimSpace(family)
	if family == "" {
		return errors.New("compose: empty family name")
	}
	src, err := NewFontSource(data)
	if err != nil {
		return err
	}
	r.add(family, src)
	return nil
}

// RegisterFile registers the font file at path under its embedded family
// name.
func (r *FontRegistry) RegisterFile(path string) (*FontSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compose: read font: %w", err)
	}
	src, err := r.Register(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// RegisterDir registers every .ttf and .otf file below dir and returns
// the number of fonts registered. Unparseable files are logged and
// skipped.
func (r *FontRegistry) RegisterDir(dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf":
		default:
			return nil
		}
		src, err := r.RegisterFile(path)
		if err != nil {
			Logger().Warn("compose: skipping font", "path", path, "error", err)
			return nil
		}
		Logger().Debug("compose: registered font", "family", src.family, "path", path)
		n++
		return nil
	})
	return n, err
}

// SetDefault makes family the brand family used when a text element names
// no font or an unavailable one.
func (r *FontRegistry) SetDefault(family string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[strings.ToLower(strings.TrimSpace(family))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	r.brand = name
	return nil
}

// Default returns the brand family name.
func (r *FontRegistry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.brand
}

// Lookup returns the font registered under family.
func (r *FontRegistry) Lookup(family string) (*FontSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.families[strings.ToLower(strings.TrimSpace(family))]
	return src, ok
}

// Families returns the registered family names in sorted order.
func (r *FontRegistry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the font for a requested family. The request may be a
// comma-separated list whose entries are tried in order. The generic
// names sans-serif, serif and system-ui map to the brand family and
// monospace to Go Mono. Anything unavailable falls back to the brand
// family, so Resolve never returns nil.
func (r *FontRegistry) Resolve(requested string) (*FontSource, string) {
	for _, entry := range strings.Split(requested, ",") {
		name := strings.Trim(strings.TrimSpace(entry), `"'`)
		if name == "" {
			continue
		}
		switch strings.ToLower(name) {
		case "sans-serif", "serif", "system-ui":
			name = r.Default()
		case "monospace":
			name = MonoFamily
		}
		if src, ok := r.Lookup(name); ok {
			return src, r.canonical(name)
		}
	}
	brand := r.Default()
	src, _ := r.Lookup(brand)
	return src, brand
}

func (r *FontRegistry) canonical(family string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names[strings.ToLower(strings.TrimSpace(family))]
}

func (r *FontRegistry) add(family string, src *FontSource) {
	key := strings.ToLower(family)
	r.mu.Lock()
	r.families[key] = src
	r.names[key] = family
	r.mu.Unlock()
}

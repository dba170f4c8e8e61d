package asset

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"http://example.com/a.png", true},
		{"https://example.com/a.png", true},
		{"HTTPS://example.com/a.png", true},
		{"assets/a.png", false},
		{"/abs/a.png", false},
		{"ftp://example.com/a.png", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.source); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestLoaderLocal(t *testing.T) {
	dir := t.TempDir()
	data := pngBytes(t, 4, 3, color.RGBA{R: 255, A: 255})
	if err := os.WriteFile(filepath.Join(dir, "red.png"), data, 0o600); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(WithRoot(dir))

	tests := []struct {
		name   string
		source string
	}{
		{"relative", "red.png"},
		{"absolute", filepath.Join(dir, "red.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := l.Acquire(context.Background(), tt.source)
			if err != nil {
				t.Fatalf("Acquire: %v", err)
			}
			if got := img.Bounds().Size(); got != image.Pt(4, 3) {
				t.Errorf("size = %v, want 4x3", got)
			}
		})
	}
}

func TestLoaderLocalErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "junk.png"), []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(WithRoot(dir))

	if _, err := l.Acquire(context.Background(), "missing.png"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: expected fs.ErrNotExist, got %v", err)
	}
	if _, err := l.Acquire(context.Background(), "junk.png"); err == nil {
		t.Error("undecodable file: expected error")
	}
	if _, err := l.Acquire(context.Background(), " "); !errors.Is(err, ErrEmptySource) {
		t.Errorf("empty source: expected ErrEmptySource, got %v", err)
	}
}

func TestLoaderRemote(t *testing.T) {
	data := pngBytes(t, 2, 2, color.RGBA{B: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(data)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))

	img, err := l.Acquire(context.Background(), srv.URL+"/ok.png")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if r, g, b, _ := img.At(0, 0).RGBA(); r != 0 || g != 0 || b != 0xffff {
		t.Errorf("pixel = (%d,%d,%d), want blue", r, g, b)
	}

	_, err = l.Acquire(context.Background(), srv.URL+"/gone.png")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", se.StatusCode)
	}
}

func TestLoaderMaxBytes(t *testing.T) {
	dir := t.TempDir()
	data := pngBytes(t, 64, 64, color.RGBA{G: 255, A: 255})
	if err := os.WriteFile(filepath.Join(dir, "big.png"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(WithRoot(dir), WithMaxBytes(16))
	if _, err := l.Acquire(context.Background(), "big.png"); err == nil {
		t.Error("expected size limit error")
	}

	l = NewLoader(WithRoot(dir), WithMaxBytes(int64(len(data))))
	if _, err := l.Acquire(context.Background(), "big.png"); err != nil {
		t.Errorf("asset of exactly the limit: %v", err)
	}
}

// withDimensions rewrites the IHDR size of an encoded PNG, leaving the
// pixel data as it was.
func withDimensions(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	if string(out[12:16]) != "IHDR" {
		t.Fatal("first chunk is not IHDR")
	}
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestLoaderMaxPixels(t *testing.T) {
	dir := t.TempDir()
	small := pngBytes(t, 64, 64, color.RGBA{B: 255, A: 255})
	huge := withDimensions(t, pngBytes(t, 1, 1, color.Black), 200000, 200000)
	for name, data := range map[string][]byte{"small.png": small, "huge.png": huge} {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name      string
		source    string
		maxPixels int64
		wantErr   bool
	}{
		{"default limit rejects huge header", "huge.png", DefaultMaxPixels, true},
		{"default limit accepts small", "small.png", DefaultMaxPixels, false},
		{"tight limit rejects small", "small.png", 64*64 - 1, true},
		{"exact limit", "small.png", 64 * 64, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(WithRoot(dir), WithMaxPixels(tt.maxPixels))
			img, err := l.Acquire(context.Background(), tt.source)
			if tt.wantErr {
				if !errors.Is(err, ErrTooLarge) {
					t.Fatalf("err = %v, want ErrTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Acquire: %v", err)
			}
			if got := img.Bounds().Dx(); got != 64 {
				t.Errorf("width = %d, want 64", got)
			}
		})
	}
}

func TestLoaderCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	if err := os.WriteFile(path, pngBytes(t, 1, 1, color.White), 0o600); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(WithRoot(dir), WithCache(4))

	first, err := l.Acquire(context.Background(), "a.png")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	second, err := l.Acquire(context.Background(), "a.png")
	if err != nil {
		t.Fatalf("expected cached image after removal: %v", err)
	}
	if first != second {
		t.Error("expected the same decoded image from cache")
	}
	if l.Cache().Stats().Hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", l.Cache().Stats().Hits)
	}
}

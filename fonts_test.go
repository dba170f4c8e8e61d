package compose

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
)

func TestFontRegistryBuiltins(t *testing.T) {
	r := NewFontRegistry()
	if r.Default() != BrandFamily {
		t.Errorf("Default() = %q, want %q", r.Default(), BrandFamily)
	}
	for _, name := range []string{"Go", "go", " GO MONO "} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("Lookup(%q) failed", name)
		}
	}
	if _, ok := r.Lookup("Comic Sans"); ok {
		t.Error("Lookup of an unregistered family should fail")
	}
}

func TestFontRegistryResolve(t *testing.T) {
	r := NewFontRegistry()
	brand, _ := r.Lookup(BrandFamily)
	mono, _ := r.Lookup(MonoFamily)

	tests := []struct {
		requested  string
		want       *FontSource
		wantFamily string
	}{
		{"", brand, "Go"},
		{"go mono", mono, "Go Mono"},
		{"Missing Family", brand, "Go"},
		{"Missing, monospace", mono, "Go Mono"},
		{`"Go Mono", sans-serif`, mono, "Go Mono"},
		{"serif", brand, "Go"},
	}
	for _, tt := range tests {
		got, family := r.Resolve(tt.requested)
		if got != tt.want || family != tt.wantFamily {
			t.Errorf("Resolve(%q) = %q, want %q", tt.requested, family, tt.wantFamily)
		}
	}
}

func TestFontRegistryRegister(t *testing.T) {
	r := NewFontRegistry()
	src, err := r.Register(gobold.TTF)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if src.Family() == "" {
		t.Fatal("expected an embedded family name")
	}
	if got, _ := r.Lookup(src.Family()); got != src {
		t.Error("font should be registered under its embedded family")
	}

	if err := r.RegisterAs("Brand Bold", gobold.TTF); err != nil {
		t.Fatal(err)
	}
	if err := r.SetDefault("brand bold"); err != nil {
		t.Fatal(err)
	}
	if r.Default() != "Brand Bold" {
		t.Errorf("Default() = %q, want Brand Bold", r.Default())
	}
	if err := r.SetDefault("nope"); err == nil {
		t.Error("SetDefault of an unregistered family should fail")
	}
	if err := r.RegisterAs("Broken", []byte("not a font")); err == nil {
		t.Error("RegisterAs should reject invalid data")
	}
}

func TestFontRegistryRegisterDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bold.ttf"), gobold.TTF, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.otf"), []byte("junk"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewFontRegistry()
	n, err := r.RegisterDir(dir)
	if err != nil {
		t.Fatalf("RegisterDir: %v", err)
	}
	if n != 1 {
		t.Errorf("registered %d fonts, want 1", n)
	}
}

func TestTypographyString(t *testing.T) {
	tests := []struct {
		in   Typography
		want string
	}{
		{Typography{Size: 24, Family: "Go"}, "24px Go, sans-serif"},
		{Typography{Size: 12.5, Family: "Go Mono"}, "12.5px Go Mono, sans-serif"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

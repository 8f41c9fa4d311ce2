package filesystem

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/example/routeslip/internal/errorx"
)

func writeImage(t *testing.T, dir, name string, encode func(f *os.File, img image.Image) error) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 12, 8))
	img.Set(1, 1, color.Black)

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()
	if err := encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return path
}

func TestImageResolver_Formats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		file   string
		encode func(f *os.File, img image.Image) error
		format string
	}{
		{"png", "a.png", func(f *os.File, img image.Image) error { return png.Encode(f, img) }, "png"},
		{"jpeg", "b.jpg", func(f *os.File, img image.Image) error { return jpeg.Encode(f, img, nil) }, "jpeg"},
		{"bmp", "c.bmp", func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }, "bmp"},
		{"tiff", "d.tiff", func(f *os.File, img image.Image) error { return tiff.Encode(f, img, nil) }, "tiff"},
	}

	resolver := NewImageResolver(dir)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeImage(t, dir, tt.file, tt.encode)

			info, err := resolver.Resolve(context.Background(), tt.file)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if info.Format != tt.format {
				t.Errorf("expected format %s, got %s", tt.format, info.Format)
			}
			if info.Width != 12 || info.Height != 8 {
				t.Errorf("expected 12x8, got %dx%d", info.Width, info.Height)
			}
			if info.Size <= 0 {
				t.Errorf("expected positive size, got %d", info.Size)
			}
		})
	}
}

func TestImageResolver_Invalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.png"), []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.png"), 0755); err != nil {
		t.Fatal(err)
	}

	resolver := NewImageResolver(dir)
	for _, ref := range []string{"", "missing.png", "notes.png", "folder.png"} {
		t.Run(ref, func(t *testing.T) {
			if _, err := resolver.Resolve(context.Background(), ref); !errors.Is(err, errorx.ErrInvalidImage) {
				t.Errorf("expected ErrInvalidImage for %q, got %v", ref, err)
			}
		})
	}
}

func TestImageResolver_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := writeImage(t, dir, "abs.png", func(f *os.File, img image.Image) error { return png.Encode(f, img) })

	info, err := NewImageResolver("/elsewhere").Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Ref != path {
		t.Errorf("expected ref %s, got %s", path, info.Ref)
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"a.png":   true,
		"B.JPG":   true,
		"c.webp":  true,
		"d.tif":   true,
		"e.txt":   false,
		"noext":   false,
		".hidden": false,
	}
	for name, want := range tests {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCompanionImage(t *testing.T) {
	dir := t.TempDir()
	transcript := filepath.Join(dir, "scan-17.txt")
	if err := os.WriteFile(transcript, []byte("INVOICE #A1"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := CompanionImage(transcript); got != "" {
		t.Errorf("expected no companion, got %q", got)
	}

	want := writeImage(t, dir, "scan-17.jpg", func(f *os.File, img image.Image) error {
		return jpeg.Encode(f, img, nil)
	})
	if got := CompanionImage(transcript); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

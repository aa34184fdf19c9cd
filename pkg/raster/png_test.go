package raster

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSavePNG(t *testing.T) {
	dir, err := os.MkdirTemp("", "raster-png-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	Clear(img, color.RGBA{10, 20, 30, 255})

	path := filepath.Join(dir, "nested", "frame.png")
	if err := SavePNG(img, path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open capture: %v", err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Failed to decode capture: %v", err)
	}
	if r, g, b, _ := got.At(2, 2).RGBA(); r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("decoded pixel = (%d, %d, %d); want (10, 20, 30)", r>>8, g>>8, b>>8)
	}
}

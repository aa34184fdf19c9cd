package raster

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
)

// SavePNG writes img to path, creating the directory when needed.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing %s: %v", path, err)
		}
	}()
	return png.Encode(f, img)
}

package viewer

import (
	"fmt"
	"image"
	"log"
	"path/filepath"
	"time"

	"github.com/sudorandom/earth-viz/pkg/raster"
)

// captureFrame saves a copy of the current frame in the background.
func (v *Viewer) captureFrame(timestamp time.Time) {
	if v.CaptureDir == "" {
		return
	}
	rgba := image.NewRGBA(v.frame.Rect)
	copy(rgba.Pix, v.frame.Pix)

	path := filepath.Join(v.CaptureDir, fmt.Sprintf("earth-%s.png", timestamp.Format("20060102-150405.000")))
	go func() {
		if err := raster.SavePNG(rgba, path); err != nil {
			log.Printf("Error encoding capture: %v", err)
			return
		}
		log.Printf("Captured frame: %s", path)
	}()
}

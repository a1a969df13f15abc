// Package visualization writes raster images, preview slices of packed
// volumes and value histograms.
package visualization

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// ImageExtensions lists the file extensions SaveImage accepts, the default
// first.
var ImageExtensions = []string{".png", ".jpg", ".jpeg"}

// SaveImage encodes img to filename. The format follows the extension: PNG,
// or JPEG at quality 90.
func SaveImage(img image.Image, filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return fmt.Errorf("unsupported image extension %q", filepath.Ext(filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if ext == ".png" {
		err = png.Encode(file, img)
	} else {
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return file.Close()
}

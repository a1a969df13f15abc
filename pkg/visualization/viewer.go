package visualization

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"ncexport/pkg/quantize"
	"ncexport/pkg/volume"
)

// Viewer extracts 2D preview slices from a packed volume grid. Slices are
// stretched over the value range of the whole grid so that neighbouring
// slices stay comparable.
type Viewer struct {
	grid *volume.Grid

	// value range of the grid, used to normalise slices to 16 bits
	min float64
	max float64
}

// NewViewer creates a viewer over g
func NewViewer(g *volume.Grid) *Viewer {
	v := &Viewer{grid: g}
	first := true
	for z := 0; z < g.Shape[2]; z++ {
		for y := 0; y < g.Shape[1]; y++ {
			for x := 0; x < g.Shape[0]; x++ {
				val := g.At(x, y, z)
				if first || val < v.min {
					v.min = val
				}
				if first || val > v.max {
					v.max = val
				}
				first = false
			}
		}
	}
	return v
}

func (v *Viewer) level(x, y, z int) color.Gray16 {
	return color.Gray16{Y: uint16(quantize.Code(v.grid.At(x, y, z), v.min, v.max, quantize.Levels(16)))}
}

// ExtractSlice extracts a 2D slice from the grid perpendicular to axis
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray16, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	width, height, depth := v.grid.Shape[0], v.grid.Shape[1], v.grid.Shape[2]

	var img *image.Gray16
	switch axis {
	case "x", "X":
		if position >= width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, width)
		}
		img = image.NewGray16(image.Rect(0, 0, depth, height))
		for y := 0; y < height; y++ {
			for z := 0; z < depth; z++ {
				img.SetGray16(z, y, v.level(position, y, z))
			}
		}

	case "y", "Y":
		if position >= height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, height)
		}
		img = image.NewGray16(image.Rect(0, 0, width, depth))
		for z := 0; z < depth; z++ {
			for x := 0; x < width; x++ {
				img.SetGray16(x, z, v.level(x, position, z))
			}
		}

	case "z", "Z":
		if position >= depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, depth)
		}
		img = image.NewGray16(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetGray16(x, y, v.level(x, y, position))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// SaveSliceSequence writes every slice along axis to outputDir as
// slice_<axis>_NNN.png and returns the number of files written.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) (int, error) {
	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.grid.Shape[0]
	case "y", "Y":
		maxPos = v.grid.Shape[1]
	case "z", "Z":
		maxPos = v.grid.Shape[2]
	default:
		return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return pos, err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := SaveImage(img, filename); err != nil {
			return pos, err
		}
	}

	return maxPos, nil
}

// Package volume packs the sparse non-zero cells of a field into a dense,
// quantized raster laid out for volumetric shaders with a Y-up convention.
package volume

import (
	"errors"
	"fmt"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"

	"ncexport/internal/models"
	"ncexport/pkg/quantize"
	"ncexport/pkg/voxel"
)

var (
	// ErrNoVoxels is returned when there are no non-zero cells to place. The
	// vertical placement of an empty volume is undefined.
	ErrNoVoxels = errors.New("no non-zero voxels to pack")

	// ErrOutOfBounds is returned when a voxel lands outside the output grid
	ErrOutOfBounds = errors.New("voxel outside output grid")
)

// Grid is a dense 3D raster. Exactly one of U8, U16 or F32 holds data,
// selected by Depth. Values are stored with the first axis varying fastest,
// the order raster containers expect on disk.
type Grid struct {
	Shape [3]int
	Depth quantize.Depth

	U8  []uint8
	U16 []uint16
	F32 []float32

	// MinY is the lowest source z index holding data. It places the volume
	// vertically in a larger scene and is reported beside the grid.
	MinY int

	// MaxY is the highest source z index holding data. It does not size the
	// grid; the output height reuses the source X extent.
	MaxY int
}

// NewGrid allocates a zero-filled grid
func NewGrid(shape [3]int, depth quantize.Depth) *Grid {
	g := &Grid{Shape: shape, Depth: depth}
	n := shape[0] * shape[1] * shape[2]
	switch depth {
	case quantize.Bits8:
		g.U8 = make([]uint8, n)
	case quantize.Bits16:
		g.U16 = make([]uint16, n)
	default:
		g.F32 = make([]float32, n)
	}
	return g
}

// Len returns the number of cells
func (g *Grid) Len() int {
	return g.Shape[0] * g.Shape[1] * g.Shape[2]
}

func (g *Grid) index(x, y, z int) int {
	return x + g.Shape[0]*(y+g.Shape[1]*z)
}

// At returns the stored value at (x, y, z) widened to float64
func (g *Grid) At(x, y, z int) float64 {
	i := g.index(x, y, z)
	switch g.Depth {
	case quantize.Bits8:
		return float64(g.U8[i])
	case quantize.Bits16:
		return float64(g.U16[i])
	default:
		return float64(g.F32[i])
	}
}

// Data returns the active payload slice
func (g *Grid) Data() interface{} {
	switch g.Depth {
	case quantize.Bits8:
		return g.U8
	case quantize.Bits16:
		return g.U16
	default:
		return g.F32
	}
}

// NonZero counts the cells holding a non-zero value
func (g *Grid) NonZero() int {
	n := 0
	for i := 0; i < g.Len(); i++ {
		switch g.Depth {
		case quantize.Bits8:
			if g.U8[i] != 0 {
				n++
			}
		case quantize.Bits16:
			if g.U16[i] != 0 {
				n++
			}
		default:
			if g.F32[i] != 0 {
				n++
			}
		}
	}
	return n
}

func (g *Grid) put(x, y, z int, v float64, p quantize.Profile) {
	i := g.index(x, y, z)
	switch g.Depth {
	case quantize.Bits8:
		g.U8[i] = p.Uint8(v)
	case quantize.Bits16:
		g.U16[i] = p.Uint16(v)
	default:
		g.F32[i] = p.Float32(v)
	}
}

// Profile builds the quantization profile of a field from its full value
// range, zeros included.
func Profile(field *sparse.DenseArray, depth quantize.Depth, clamp bool) (quantize.Profile, error) {
	if field == nil || len(field.Elements) == 0 {
		return quantize.Profile{}, fmt.Errorf("cannot compute range of an empty field")
	}
	p := quantize.Profile{
		Depth: depth,
		Min:   floats.Min(field.Elements),
		Max:   floats.Max(field.Elements),
		Clamp: clamp,
	}
	return p, p.Validate()
}

// Pack places the value of every voxel into a grid of shape (nx, nx, ny),
// where nx and ny are the source X and Y extents.
//
// A source voxel (ix, iy, iz) is written at
//
//	(ix, iz - minY - 1, ny - iy - 1)
//
// which is the same rotation as voxel.Reproject expressed in grid indices,
// with the last axis flipped to match the container's row order. Negative
// indices count back from the end of their axis, so the lowest layer
// (iz == minY) lands in the last row.
func Pack(voxels models.VoxelSet, field *sparse.DenseArray, p quantize.Profile) (*Grid, error) {
	nx, ny, nz, err := models.Shape3(field)
	if err != nil {
		return nil, err
	}

	minY, maxY, ok := voxel.ZRange(voxels)
	if !ok {
		return nil, ErrNoVoxels
	}

	g := NewGrid([3]int{nx, nx, ny}, p.Depth)
	g.MinY, g.MaxY = minY, maxY

	for _, v := range voxels {
		ix, iy, iz := v[0], v[1], v[2]
		if ix < 0 || ix >= nx || iy < 0 || iy >= ny || iz < 0 || iz >= nz {
			return nil, fmt.Errorf("%w: source index %v outside field %dx%dx%d", ErrOutOfBounds, v, nx, ny, nz)
		}

		y, okY := wrap(iz-minY-1, g.Shape[1])
		z, okZ := wrap(ny-iy-1, g.Shape[2])
		if !okY || !okZ {
			return nil, fmt.Errorf("%w: voxel %v maps to (%d, %d, %d) in grid %v",
				ErrOutOfBounds, v, ix, iz-minY-1, ny-iy-1, g.Shape)
		}

		g.put(ix, y, z, field.Elements[models.Offset(ix, iy, iz, ny, nz)], p)
	}
	return g, nil
}

// wrap resolves i against an axis of length n, counting negative indices
// from the end.
func wrap(i, n int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}

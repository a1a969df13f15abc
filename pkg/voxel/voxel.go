// Package voxel finds the populated cells of a gridded field and moves them
// from the grid's Z-up convention into the Y-up convention used by 3D viewers.
package voxel

import (
	"errors"
	"fmt"

	"github.com/ctessum/sparse"

	"ncexport/internal/models"
)

// ErrNotVolume is returned when a field does not have exactly three dimensions
var ErrNotVolume = errors.New("field is not 3-dimensional")

// Extract returns the index of every cell in field whose value is not exactly
// zero. Cells are visited in row-major order (x slowest, z fastest), the same
// order the data is stored in, so later lookups into field at these indices
// see the same cells.
//
// An all-zero field yields an empty, non-nil VoxelSet.
func Extract(field *sparse.DenseArray) (models.VoxelSet, error) {
	nx, ny, nz, err := models.Shape3(field)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotVolume, err)
	}

	voxels := make(models.VoxelSet, 0)
	i := 0
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				if field.Elements[i] != 0 {
					voxels = append(voxels, models.Voxel{x, y, z})
				}
				i++
			}
		}
	}
	return voxels, nil
}

// ReprojectPoint rotates a grid index by -90 degrees about the X axis:
// (x, y, z) becomes (x, z, -y). Applying it four times is the identity.
func ReprojectPoint(v models.Voxel) models.Point {
	return models.Point{float64(v[0]), float64(v[2]), -float64(v[1])}
}

// Reproject converts every voxel to target space, preserving order
func Reproject(voxels models.VoxelSet) models.PointSet {
	points := make(models.PointSet, len(voxels))
	for i, v := range voxels {
		points[i] = ReprojectPoint(v)
	}
	return points
}

// ZRange returns the smallest and largest z index in voxels. The source Z
// axis becomes the output Y axis, so this is the vertical extent of the data.
// ok is false for an empty set.
func ZRange(voxels models.VoxelSet) (minZ, maxZ int, ok bool) {
	if len(voxels) == 0 {
		return 0, 0, false
	}
	minZ, maxZ = voxels[0][2], voxels[0][2]
	for _, v := range voxels[1:] {
		if v[2] < minZ {
			minZ = v[2]
		}
		if v[2] > maxZ {
			maxZ = v[2]
		}
	}
	return minZ, maxZ, true
}

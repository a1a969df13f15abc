package models

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Voxel is the integer (x, y, z) index of a grid cell in a scalar field
type Voxel [3]int

// VoxelSet holds the non-zero cells of a field in the scan order of the source array
type VoxelSet []Voxel

// Point is a coordinate triple in target (Y-up) space
type Point [3]float64

// PointSet holds reprojected voxels. Index i of a PointSet always
// corresponds to index i of the VoxelSet it was built from.
type PointSet []Point

// BoundingBox is the component-wise minimum and maximum over a point set.
// Mesh containers carry it so viewers can frame the camera correctly.
type BoundingBox struct {
	Min [3]float64
	Max [3]float64
}

// Extend grows the box to include p
func (b *BoundingBox) Extend(p Point) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Size returns the extent of the box along each axis
func (b BoundingBox) Size() [3]float64 {
	return [3]float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Shape3 returns the extents of a 3-dimensional field.
//
// Scalar fields are dense row-major arrays indexed (x, y, z) with z varying
// fastest, which is the layout netCDF variables are stored in.
func Shape3(field *sparse.DenseArray) (nx, ny, nz int, err error) {
	if field == nil {
		return 0, 0, 0, fmt.Errorf("nil field")
	}
	if len(field.Shape) != 3 {
		return 0, 0, 0, fmt.Errorf("field has %d dimensions, want 3", len(field.Shape))
	}
	return field.Shape[0], field.Shape[1], field.Shape[2], nil
}

// Offset returns the position of (x, y, z) in the Elements of a field with
// extents ny and nz along the last two axes.
func Offset(x, y, z, ny, nz int) int {
	return (x*ny+y)*nz + z
}

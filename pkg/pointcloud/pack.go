// Package pointcloud serializes reprojected voxels into a glTF point cloud.
package pointcloud

import (
	"encoding/binary"
	"errors"
	"math"

	"ncexport/internal/models"
)

// ErrEmptyPointSet is returned when there is nothing to pack. A zero-length
// accessor has no valid bounding box, so callers must handle this case.
var ErrEmptyPointSet = errors.New("point set is empty")

// vertexStride is the byte size of one float32 VEC3
const vertexStride = 12

// VertexBuffer is a flat little-endian float32 array of x, y, z triples
// together with the bounds glTF requires on a POSITION accessor.
type VertexBuffer struct {
	Data   []byte
	Count  int
	Bounds models.BoundingBox
}

// Pack flattens points into a VertexBuffer. Bounds are computed on the
// float32 values actually written, so they always enclose the buffer.
func Pack(points models.PointSet) (*VertexBuffer, error) {
	if len(points) == 0 {
		return nil, ErrEmptyPointSet
	}

	vb := &VertexBuffer{
		Data:  make([]byte, vertexStride*len(points)),
		Count: len(points),
	}

	first := narrow(points[0])
	vb.Bounds = models.BoundingBox{Min: first, Max: first}

	off := 0
	for _, p := range points {
		for i := 0; i < 3; i++ {
			binary.LittleEndian.PutUint32(vb.Data[off:], math.Float32bits(float32(p[i])))
			off += 4
		}
		vb.Bounds.Extend(narrow(p))
	}
	return vb, nil
}

// narrow rounds a point through float32, the precision stored in the buffer
func narrow(p models.Point) models.Point {
	return models.Point{
		float64(float32(p[0])),
		float64(float32(p[1])),
		float64(float32(p[2])),
	}
}

// Vertex decodes vertex i from the buffer
func (vb *VertexBuffer) Vertex(i int) models.Point {
	off := i * vertexStride
	var p models.Point
	for j := 0; j < 3; j++ {
		p[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(vb.Data[off+4*j:])))
	}
	return p
}

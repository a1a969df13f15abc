package volume

import (
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncexport/pkg/quantize"
	"ncexport/pkg/voxel"
)

// packField extracts the non-zero cells of field and packs them at depth
func packField(t *testing.T, field *sparse.DenseArray, depth quantize.Depth) *Grid {
	t.Helper()
	voxels, err := voxel.Extract(field)
	require.NoError(t, err)
	p, err := Profile(field, depth, false)
	require.NoError(t, err)
	g, err := Pack(voxels, field, p)
	require.NoError(t, err)
	return g
}

func TestPackSingleVoxel(t *testing.T) {
	field := sparse.ZerosDense(4, 4, 4)
	field.Set(2.0, 1, 2, 3)

	g := packField(t, field, quantize.Bits8)

	assert.Equal(t, [3]int{4, 4, 4}, g.Shape)
	assert.Equal(t, 1, g.NonZero())
	assert.Equal(t, 3, g.MinY)
	assert.Equal(t, 3, g.MaxY)

	// y = iz - minY - 1 = -1 wraps to the last row; z = ny - iy - 1 = 1
	assert.Equal(t, float64(255), g.At(1, 3, 1))
}

func TestPackPlacesEveryVoxel(t *testing.T) {
	field := sparse.ZerosDense(3, 3, 3)
	field.Set(1, 0, 0, 1)
	field.Set(4, 2, 1, 2)

	g := packField(t, field, quantize.Bits8)

	require.Equal(t, 2, g.NonZero())
	assert.Equal(t, 1, g.MinY)
	assert.Equal(t, float64(63), g.At(0, 2, 2))
	assert.Equal(t, float64(255), g.At(2, 0, 1))
}

func TestPackShapeUsesSourceXTwice(t *testing.T) {
	field := sparse.ZerosDense(5, 3, 2)
	field.Set(1, 4, 0, 1)

	g := packField(t, field, quantize.Bits16)

	assert.Equal(t, [3]int{5, 5, 3}, g.Shape)
	assert.Len(t, g.U16, 75)
	assert.Nil(t, g.U8)
	assert.Nil(t, g.F32)
	assert.Equal(t, float64(65535), g.At(4, 4, 2))
}

func TestPackFloatPassesValuesThrough(t *testing.T) {
	field := sparse.ZerosDense(3, 2, 3)
	field.Set(0.125, 0, 1, 0)
	field.Set(7.5, 1, 0, 2)

	g := packField(t, field, quantize.Float)

	require.NotNil(t, g.F32)
	assert.Equal(t, 0.125, g.At(0, 2, 0))
	assert.Equal(t, 7.5, g.At(1, 1, 1))
}

func TestPackErrors(t *testing.T) {
	t.Run("no voxels", func(t *testing.T) {
		field := sparse.ZerosDense(2, 2, 2)
		p, err := Profile(field, quantize.Bits8, false)
		require.NoError(t, err)
		_, err = Pack(nil, field, p)
		assert.ErrorIs(t, err, ErrNoVoxels)
	})

	t.Run("tall field overflows cube", func(t *testing.T) {
		field := sparse.ZerosDense(2, 2, 5)
		field.Set(1, 0, 0, 0)
		field.Set(1, 0, 0, 4)
		voxels, err := voxel.Extract(field)
		require.NoError(t, err)
		p, err := Profile(field, quantize.Bits8, false)
		require.NoError(t, err)
		_, err = Pack(voxels, field, p)
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})

	t.Run("not a volume", func(t *testing.T) {
		_, err := Pack(nil, sparse.ZerosDense(3, 3), quantize.Profile{})
		assert.Error(t, err)
	})
}

func TestProfileUsesFullRange(t *testing.T) {
	field := sparse.ZerosDense(2, 2, 2)
	field.Set(-1, 0, 0, 0)
	field.Set(3, 1, 1, 1)

	p, err := Profile(field, quantize.Bits8, true)
	require.NoError(t, err)
	assert.Equal(t, -1.0, p.Min)
	assert.Equal(t, 3.0, p.Max)
	assert.True(t, p.Clamp)

	_, err = Profile(nil, quantize.Bits8, false)
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	tests := []struct {
		i, n, want int
		ok         bool
	}{
		{0, 4, 0, true},
		{3, 4, 3, true},
		{-1, 4, 3, true},
		{-4, 4, 0, true},
		{-5, 4, -1, false},
		{4, 4, 4, false},
	}
	for _, tc := range tests {
		got, ok := wrap(tc.i, tc.n)
		assert.Equal(t, tc.ok, ok, "wrap(%d, %d)", tc.i, tc.n)
		if tc.ok {
			assert.Equal(t, tc.want, got)
		}
	}
}

package quantize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	assert.Equal(t, uint32(255), Levels(8))
	assert.Equal(t, uint32(65535), Levels(16))
	assert.Equal(t, uint32(math.MaxUint32), Levels(32))
}

func TestCodeEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		min, max float64
		levels   uint32
		want     uint32
	}{
		{"min maps to zero", 0.5, 0.5, 2.5, 255, 0},
		{"max maps to top code", 2.5, 0.5, 2.5, 255, 255},
		{"midpoint floors", 1.5, 0.5, 2.5, 255, 127},
		{"16-bit max", 10, -10, 10, 65535, 65535},
		{"16-bit quarter", -5, -10, 10, 65535, 16383},
		{"negative domain", -3, -4, -2, 255, 127},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Code(tc.v, tc.min, tc.max, tc.levels))
		})
	}
}

func TestUint8AndUint16(t *testing.T) {
	assert.Equal(t, uint8(0), Uint8(1, 1, 9))
	assert.Equal(t, uint8(255), Uint8(9, 1, 9))
	assert.Equal(t, uint16(0), Uint16(1, 1, 9))
	assert.Equal(t, uint16(65535), Uint16(9, 1, 9))
}

func TestDegenerateRange(t *testing.T) {
	for _, v := range []float64{-1, 0, 3.75, 1e9} {
		assert.Equal(t, uint32(0), Code(v, 3.75, 3.75, 255), "value %g", v)
		assert.Equal(t, uint8(0), Uint8(v, 3.75, 3.75))
		assert.Equal(t, uint16(0), Uint16(v, 3.75, 3.75))
	}
}

func TestPassThroughIsIdentity(t *testing.T) {
	for _, v := range []float64{0, -1.25, 3.5e-7, 1e30, math.Pi} {
		assert.Equal(t, float32(v), PassThrough(v, -100, 100, Levels(32)))
		assert.Equal(t, float32(v), PassThrough(v, 0, 0, 0))
	}
}

func TestParseDepth(t *testing.T) {
	d, err := ParseDepth(0)
	require.NoError(t, err)
	assert.Equal(t, Float, d)

	d, err = ParseDepth(8)
	require.NoError(t, err)
	assert.Equal(t, Bits8, d)
	assert.Equal(t, "uint8", d.String())

	d, err = ParseDepth(16)
	require.NoError(t, err)
	assert.Equal(t, Bits16, d)
	assert.Equal(t, 16, d.Bits())

	for _, bad := range []int{1, 12, 32, -8} {
		_, err := ParseDepth(bad)
		assert.Error(t, err, "bits %d", bad)
	}
}

func TestProfile(t *testing.T) {
	p := Profile{Depth: Bits8, Min: 0, Max: 10}
	require.NoError(t, p.Validate())

	assert.Equal(t, float64(255), p.Apply(10))
	assert.Equal(t, float64(25), p.Apply(1))

	p.Depth = Bits16
	assert.Equal(t, float64(65535), p.Apply(10))

	p.Depth = Float
	assert.Equal(t, float64(float32(1.1)), p.Apply(1.1))
}

func TestProfileClamp(t *testing.T) {
	p := Profile{Depth: Bits8, Min: 0, Max: 10, Clamp: true}
	assert.Equal(t, uint8(255), p.Uint8(25))
	assert.Equal(t, uint8(0), p.Uint8(-4))
	assert.Equal(t, uint16(65535), p.Uint16(11))
	assert.Equal(t, float32(10), p.Float32(11))
}

func TestProfileValidate(t *testing.T) {
	assert.Error(t, Profile{Min: 2, Max: 1}.Validate())
	assert.Error(t, Profile{Min: math.NaN(), Max: 1}.Validate())
	assert.NoError(t, Profile{Min: 1, Max: 1}.Validate())
}

func TestProfileFloat32UsesFloatDepth(t *testing.T) {
	p := Profile{Depth: Float, Min: 0, Max: 5}
	assert.Equal(t, float32(2.5), p.Float32(2.5))
	assert.Equal(t, 2.5, p.Apply(2.5))
}

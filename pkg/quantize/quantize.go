// Package quantize maps floating point field values onto fixed-width integer
// codes for compact raster storage.
package quantize

import (
	"fmt"
	"math"
)

// Depth selects the storage type of quantized values
type Depth int

const (
	// Float keeps values as 32-bit floats
	Float Depth = iota
	// Bits8 stores 8-bit unsigned codes
	Bits8
	// Bits16 stores 16-bit unsigned codes
	Bits16
)

// ParseDepth converts a bit count from the command line into a Depth.
// Zero means no bit count was given and selects Float.
func ParseDepth(bits int) (Depth, error) {
	switch bits {
	case 0:
		return Float, nil
	case 8:
		return Bits8, nil
	case 16:
		return Bits16, nil
	default:
		return Float, fmt.Errorf("only 8 or 16 bits are allowed for quantizing data, got %d", bits)
	}
}

// Bits returns the number of bits per stored value
func (d Depth) Bits() int {
	switch d {
	case Bits8:
		return 8
	case Bits16:
		return 16
	default:
		return 32
	}
}

// String returns the type name used in logs and raster headers
func (d Depth) String() string {
	switch d {
	case Bits8:
		return "uint8"
	case Bits16:
		return "uint16"
	default:
		return "float32"
	}
}

// Levels returns the highest code for a bit depth, 2^bits - 1
func Levels(bits int) uint32 {
	return uint32(1)<<uint(bits) - 1
}

// Code quantizes v over [min, max] into levels+1 codes:
//
//	floor((v - min) / (max - min) * levels)
//
// The caller must guarantee min <= v <= max, normally by scanning the whole
// field for its range first. Out-of-range input is not checked here; use
// Profile with Clamp set when the range comes from elsewhere.
//
// A degenerate range (max == min) maps every value to 0.
func Code(v, min, max float64, levels uint32) uint32 {
	rng := max - min
	if rng == 0 {
		return 0
	}
	return uint32(math.Floor((v - min) / rng * float64(levels)))
}

// Uint8 quantizes v to 255 levels
func Uint8(v, min, max float64) uint8 {
	return uint8(Code(v, min, max, Levels(8)))
}

// Uint16 quantizes v to 65535 levels
func Uint16(v, min, max float64) uint16 {
	return uint16(Code(v, min, max, Levels(16)))
}

// PassThrough is the identity counterpart of Code with the same signature.
// It lets callers export raw values without a separate code path.
func PassThrough(v, min, max float64, levels uint32) float32 {
	return float32(v)
}

// Profile describes how the values of one field are quantized. Min and Max
// are the full value range of the field, not just of its non-zero cells.
type Profile struct {
	Depth Depth
	Min   float64
	Max   float64

	// Clamp limits input to [Min, Max] before quantizing. Values from the
	// field the range was computed over never need it.
	Clamp bool
}

// Validate checks the range invariant
func (p Profile) Validate() error {
	if math.IsNaN(p.Min) || math.IsNaN(p.Max) {
		return fmt.Errorf("quantization range contains NaN")
	}
	if p.Max < p.Min {
		return fmt.Errorf("quantization range is inverted: max %g < min %g", p.Max, p.Min)
	}
	return nil
}

// Levels returns the highest code for the profile's depth
func (p Profile) Levels() uint32 {
	return Levels(p.Depth.Bits())
}

func (p Profile) clamp(v float64) float64 {
	if !p.Clamp {
		return v
	}
	return math.Max(p.Min, math.Min(p.Max, v))
}

// Uint8 quantizes v to an 8-bit code
func (p Profile) Uint8(v float64) uint8 {
	return Uint8(p.clamp(v), p.Min, p.Max)
}

// Uint16 quantizes v to a 16-bit code
func (p Profile) Uint16(v float64) uint16 {
	return Uint16(p.clamp(v), p.Min, p.Max)
}

// Float32 passes v through as a float
func (p Profile) Float32(v float64) float32 {
	return PassThrough(p.clamp(v), p.Min, p.Max, p.Levels())
}

// Apply quantizes v according to the profile's depth and returns the stored
// value widened to float64.
func (p Profile) Apply(v float64) float64 {
	switch p.Depth {
	case Bits8:
		return float64(p.Uint8(v))
	case Bits16:
		return float64(p.Uint16(v))
	default:
		return float64(p.Float32(v))
	}
}

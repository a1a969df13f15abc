package export

import (
	"fmt"
	"sort"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the value distribution of a field. Mean, StdDev and
// Median are taken over the non-zero cells only, since empty air dominates
// most cloud fields.
type Summary struct {
	Cells   int
	NonZero int

	Min float64
	Max float64

	Mean   float64
	StdDev float64
	Median float64
}

// Summarize computes the summary of field
func Summarize(field *sparse.DenseArray) Summary {
	s := Summary{Cells: len(field.Elements)}
	if s.Cells == 0 {
		return s
	}
	s.Min = floats.Min(field.Elements)
	s.Max = floats.Max(field.Elements)

	nz := nonZero(field)
	s.NonZero = len(nz)
	if s.NonZero == 0 {
		return s
	}

	s.Mean, s.StdDev = stat.MeanStdDev(nz, nil)
	if s.NonZero == 1 {
		s.StdDev = 0
	}
	sort.Float64s(nz)
	s.Median = stat.Quantile(0.5, stat.Empirical, nz, nil)
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d cells, %d non-zero, range [%g, %g], non-zero mean %g (sd %g, median %g)",
		s.Cells, s.NonZero, s.Min, s.Max, s.Mean, s.StdDev, s.Median)
}

// nonZero returns the non-zero values of field in scan order
func nonZero(field *sparse.DenseArray) []float64 {
	var out []float64
	for _, v := range field.Elements {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}

// Package ncdata reads named variables from netCDF classic files as dense
// row-major arrays, and writes them back for fixtures and round trips.
package ncdata

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// ErrVariableNotFound is returned when a dataset has no variable of the
// requested name
var ErrVariableNotFound = errors.New("variable not found")

// Dataset is an open netCDF file
type Dataset struct {
	path string
	file *os.File
	nc   *cdf.File
}

// Open opens the netCDF file at path and reads its header
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	nc, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read netCDF header of %s: %w", path, err)
	}
	return &Dataset{path: path, file: f, nc: nc}, nil
}

// Close releases the underlying file
func (d *Dataset) Close() error {
	return d.file.Close()
}

// Path returns the file the dataset was opened from
func (d *Dataset) Path() string {
	return d.path
}

// Variables lists the variable names in header order
func (d *Dataset) Variables() []string {
	return d.nc.Header.Variables()
}

// Has reports whether the dataset defines name
func (d *Dataset) Has(name string) bool {
	for _, v := range d.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// Dimensions returns the dimension names of a variable
func (d *Dataset) Dimensions(name string) ([]string, error) {
	if !d.Has(name) {
		return nil, fmt.Errorf("%w: %q in %s", ErrVariableNotFound, name, d.path)
	}
	return d.nc.Header.Dimensions(name), nil
}

// Variable reads the whole of variable name into a dense array with the
// variable's shape. Numeric types are widened to float64.
func (d *Dataset) Variable(name string) (*sparse.DenseArray, error) {
	if !d.Has(name) {
		return nil, fmt.Errorf("%w: %q in %s", ErrVariableNotFound, name, d.path)
	}

	shape := d.nc.Header.Lengths(name)
	n := 1
	for _, l := range shape {
		n *= l
	}

	out := sparse.ZerosDense(shape...)
	if n == 0 {
		return out, nil
	}

	r := d.nc.Reader(name, nil, nil)
	buf := r.Zero(n)
	read, err := r.Read(buf)
	if err != nil && !(errors.Is(err, io.EOF) && read == n) {
		return nil, fmt.Errorf("failed to read variable %q: %w", name, err)
	}

	if err := widen(out.Elements, buf); err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	return out, nil
}

// widen copies a typed netCDF buffer into dst
func widen(dst []float64, buf interface{}) error {
	switch v := buf.(type) {
	case []float64:
		copy(dst, v)
	case []float32:
		for i, x := range v {
			dst[i] = float64(x)
		}
	case []int32:
		for i, x := range v {
			dst[i] = float64(x)
		}
	case []int16:
		for i, x := range v {
			dst[i] = float64(x)
		}
	case []int8:
		for i, x := range v {
			dst[i] = float64(x)
		}
	case []uint8:
		for i, x := range v {
			dst[i] = float64(x)
		}
	default:
		return fmt.Errorf("unsupported netCDF element type %T", buf)
	}
	return nil
}

// Variable is a named array to be written to a netCDF file
type Variable struct {
	Name string

	// Dims names each axis. Variables that share a dimension name must
	// agree on its length. When empty, names are derived from Name.
	Dims []string

	Units string
	Data  *sparse.DenseArray
}

func (v Variable) dims() []string {
	if len(v.Dims) == len(v.Data.Shape) {
		return v.Dims
	}
	dims := make([]string, len(v.Data.Shape))
	for i := range dims {
		dims[i] = fmt.Sprintf("%s_dim%d", v.Name, i)
	}
	return dims
}

// Write stores vars as NC_FLOAT variables in a new netCDF file
func Write(rw cdf.ReaderWriterAt, vars ...Variable) error {
	var names []string
	var lengths []int
	seen := map[string]int{}
	for _, v := range vars {
		if v.Data == nil {
			return fmt.Errorf("variable %q has no data", v.Name)
		}
		for i, dim := range v.dims() {
			l := v.Data.Shape[i]
			if prev, ok := seen[dim]; ok {
				if prev != l {
					return fmt.Errorf("dimension %q has length %d and %d", dim, prev, l)
				}
				continue
			}
			seen[dim] = l
			names = append(names, dim)
			lengths = append(lengths, l)
		}
	}

	h := cdf.NewHeader(names, lengths)
	for _, v := range vars {
		h.AddVariable(v.Name, v.dims(), []float32{0})
		if v.Units != "" {
			h.AddAttribute(v.Name, "units", v.Units)
		}
	}
	h.Define()

	f, err := cdf.Create(rw, h)
	if err != nil {
		return fmt.Errorf("failed to create netCDF file: %w", err)
	}

	for _, v := range vars {
		data := make([]float32, len(v.Data.Elements))
		for i, x := range v.Data.Elements {
			data[i] = float32(x)
		}
		end := f.Header.Lengths(v.Name)
		start := make([]int, len(end))
		if _, err := f.Writer(v.Name, start, end).Write(data); err != nil {
			return fmt.Errorf("failed to write variable %q: %w", v.Name, err)
		}
	}
	return cdf.UpdateNumRecs(rw)
}

// WriteFile creates path and writes vars to it
func WriteFile(path string, vars ...Variable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, vars...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package ncdata

import (
	"path/filepath"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T) string {
	t.Helper()

	qc := sparse.ZerosDense(2, 3, 4)
	qc.Set(5, 1, 1, 1)
	qc.Set(0.5, 0, 2, 3)

	rad := sparse.ZerosDense(2, 2, 9)
	for i := range rad.Elements {
		rad.Elements[i] = float64(i)
	}

	path := filepath.Join(t.TempDir(), "cloud.nc")
	err := WriteFile(path,
		Variable{Name: "QC", Dims: []string{"x", "y", "z"}, Units: "kg/kg", Data: qc},
		Variable{Name: "rad", Data: rad},
	)
	require.NoError(t, err)
	return path
}

func TestReadVariable(t *testing.T) {
	ds, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer ds.Close()

	assert.ElementsMatch(t, []string{"QC", "rad"}, ds.Variables())
	assert.True(t, ds.Has("QC"))

	qc, err := ds.Variable("QC")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, qc.Shape)
	assert.Equal(t, 5.0, qc.Get(1, 1, 1))
	assert.Equal(t, 0.5, qc.Get(0, 2, 3))
	assert.Equal(t, 0.0, qc.Get(0, 0, 0))

	dims, err := ds.Dimensions("QC")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, dims)

	rad, err := ds.Variable("rad")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 9}, rad.Shape)
	assert.Equal(t, 35.0, rad.Elements[35])
}

func TestMissingVariable(t *testing.T) {
	ds, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer ds.Close()

	_, err = ds.Variable("QR")
	assert.ErrorIs(t, err, ErrVariableNotFound)

	_, err = ds.Dimensions("QR")
	assert.ErrorIs(t, err, ErrVariableNotFound)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.nc"))
	assert.Error(t, err)
}

func TestWriteRejectsConflictingDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.nc")
	err := WriteFile(path,
		Variable{Name: "a", Dims: []string{"x"}, Data: sparse.ZerosDense(3)},
		Variable{Name: "b", Dims: []string{"x"}, Data: sparse.ZerosDense(4)},
	)
	assert.Error(t, err)

	assert.Error(t, WriteFile(path, Variable{Name: "empty"}))
}

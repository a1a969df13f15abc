package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncexport/pkg/nrrd"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "QC", cfg.Export.PointCloudVariable)
	assert.Equal(t, "rad", cfg.Export.RadianceVariable)
	assert.Equal(t, 8, cfg.Export.NadirIndex)
	assert.Equal(t, nrrd.Gzip, cfg.Encoding())
	assert.False(t, cfg.Export.Clamp)
	assert.Equal(t, 50, cfg.Export.HistogramBins)
	assert.True(t, cfg.Output.Verbose)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ncexport.yaml")

	want := DefaultConfig()
	want.Export.PointCloudVariable = "QR"
	want.Export.NRRDEncoding = "raw"
	want.Output.Verbose = false
	require.NoError(t, SaveConfig(want, path))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, nrrd.Raw, got.Encoding())
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ncexport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  histogramBins: 12\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Export.HistogramBins)
	assert.Equal(t, "QC", cfg.Export.PointCloudVariable)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"encoding", "export:\n  nrrdEncoding: bzip2\n"},
		{"nadir", "export:\n  nadirIndex: -1\n"},
		{"bins", "export:\n  histogramBins: 0\n"},
		{"variable", "export:\n  radianceVariable: \"\"\n"},
		{"syntax", "export: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ncexport.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ncexport.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pointCloudVariable: QC")
	assert.Contains(t, string(data), "nrrdEncoding: gzip")
}

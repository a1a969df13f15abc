// Package export runs the conversions from a netCDF field to a point cloud,
// a volume raster, a nadir image or a value histogram.
//
// Each conversion is described by a target type and executed by Run:
//  1. Load the requested variable from the input dataset
//  2. Extract and transform the non-zero cells
//  3. Write the container, removing it again if writing fails
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/google/uuid"

	"ncexport/pkg/ncdata"
	"ncexport/pkg/nrrd"
	"ncexport/pkg/pointcloud"
	"ncexport/pkg/quantize"
	"ncexport/pkg/radiance"
	"ncexport/pkg/visualization"
	"ncexport/pkg/volume"
	"ncexport/pkg/voxel"
)

// Target is one of PointCloudExport, VolumeExport, ImageExport or
// HistogramExport
type Target interface {
	// Paths returns the input dataset and the output file
	Paths() (input, output string)
	target()
}

// PointCloudExport writes the non-zero cells of Variable as a glTF point
// cloud. Resource names the external vertex buffer of a .gltf model.
type PointCloudExport struct {
	Input    string
	Output   string
	Resource string
	Variable string
}

// VolumeExport writes the non-zero cells of Variable into an NRRD raster.
// When SlicesDir is set, preview slices of the packed grid are written there
// as well, one subdirectory per axis.
type VolumeExport struct {
	Input     string
	Output    string
	Variable  string
	Depth     quantize.Depth
	Encoding  nrrd.Encoding
	Clamp     bool
	SlicesDir string
}

// ImageExport writes one view of a radiance field as a grayscale image
type ImageExport struct {
	Input    string
	Output   string
	Variable string
	View     int
}

// HistogramExport plots the distribution of the non-zero values of Variable
type HistogramExport struct {
	Input    string
	Output   string
	Variable string
	Bins     int
}

func (t PointCloudExport) Paths() (string, string) { return t.Input, t.Output }
func (t VolumeExport) Paths() (string, string)     { return t.Input, t.Output }
func (t ImageExport) Paths() (string, string)      { return t.Input, t.Output }
func (t HistogramExport) Paths() (string, string)  { return t.Input, t.Output }

func (PointCloudExport) target() {}
func (VolumeExport) target()     {}
func (ImageExport) target()      {}
func (HistogramExport) target()  {}

// Result reports what an export wrote
type Result struct {
	// ID identifies the export. It is stored in the container metadata
	// where the format allows.
	ID string

	Output   string
	Resource string

	// Points is the number of non-zero cells exported
	Points int

	// YOffset is the lowest source z index holding data, reported for
	// volume exports so the raster can be placed in a scene
	YOffset int

	// Slices is the number of preview slices written
	Slices int

	Summary Summary
}

// Exporter runs export targets and reports progress to Out
type Exporter struct {
	Out     io.Writer
	Verbose bool
}

// NewExporter creates an exporter printing to out. A nil out discards
// progress output.
func NewExporter(out io.Writer, verbose bool) *Exporter {
	if out == nil {
		out = io.Discard
	}
	return &Exporter{Out: out, Verbose: verbose}
}

// Run executes t with progress printed to stdout
func Run(t Target) (*Result, error) {
	return NewExporter(os.Stdout, false).Run(t)
}

// Run executes t
func (e *Exporter) Run(t Target) (*Result, error) {
	switch t := t.(type) {
	case PointCloudExport:
		return e.ExportPointCloud(t)
	case VolumeExport:
		return e.ExportVolume(t)
	case ImageExport:
		return e.ExportImage(t)
	case HistogramExport:
		return e.ExportHistogram(t)
	default:
		return nil, fmt.Errorf("unknown export target %T", t)
	}
}

func (e *Exporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.Out, format, args...)
}

// load reads variable from the dataset at path
func (e *Exporter) load(path, variable string) (*sparse.DenseArray, Summary, error) {
	ds, err := ncdata.Open(path)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer ds.Close()

	field, err := ds.Variable(variable)
	if err != nil {
		return nil, Summary{}, err
	}

	var s Summary
	if e.Verbose {
		s = Summarize(field)
		e.printf("Variable %s %v: %v\n", variable, field.Shape, s)
	}
	return field, s, nil
}

// removeOnError deletes paths if *err is set
func removeOnError(err *error, paths ...string) {
	if *err == nil {
		return
	}
	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
}

// ExportPointCloud converts the non-zero cells of a field into a glTF point
// cloud with a Y-up convention.
func (e *Exporter) ExportPointCloud(t PointCloudExport) (res *Result, err error) {
	field, summary, err := e.load(t.Input, t.Variable)
	if err != nil {
		return nil, err
	}

	voxels, err := voxel.Extract(field)
	if err != nil {
		return nil, fmt.Errorf("failed to extract voxels: %w", err)
	}
	e.printf("Found %d points\n", len(voxels))

	vb, err := pointcloud.Pack(voxel.Reproject(voxels))
	if err != nil {
		return nil, err
	}

	res = &Result{
		ID:      uuid.NewString(),
		Output:  t.Output,
		Points:  vb.Count,
		Summary: summary,
	}
	opts := pointcloud.GLTFOptions{
		Source:   filepath.Base(t.Input),
		Variable: t.Variable,
		ExportID: res.ID,
	}
	if strings.ToLower(filepath.Ext(t.Output)) == ".gltf" {
		res.Resource = t.Resource
		if res.Resource == "" {
			res.Resource = filepath.Join(filepath.Dir(t.Output), pointcloud.DefaultResource(t.Output))
		}
		opts.Resource = filepath.Base(res.Resource)
	}

	defer removeOnError(&err, res.Output, res.Resource)
	if err = pointcloud.WriteGLTF(t.Output, vb, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// ExportVolume packs the non-zero cells of a field into a cube raster and
// writes it as NRRD. Container metadata records the y offset needed to place
// the raster.
func (e *Exporter) ExportVolume(t VolumeExport) (res *Result, err error) {
	field, summary, err := e.load(t.Input, t.Variable)
	if err != nil {
		return nil, err
	}

	voxels, err := voxel.Extract(field)
	if err != nil {
		return nil, fmt.Errorf("failed to extract voxels: %w", err)
	}
	e.printf("Found %d points\n", len(voxels))

	profile, err := volume.Profile(field, t.Depth, t.Clamp)
	if err != nil {
		return nil, err
	}
	grid, err := volume.Pack(voxels, field, profile)
	if err != nil {
		return nil, err
	}
	e.printf("Y offset: %d meters\n", grid.MinY)

	res = &Result{
		ID:      uuid.NewString(),
		Output:  t.Output,
		Points:  len(voxels),
		YOffset: grid.MinY,
		Summary: summary,
	}
	opts := nrrd.Options{
		Encoding: t.Encoding,
		KeyValues: []nrrd.KeyValue{
			{Key: "y_offset", Value: strconv.Itoa(grid.MinY)},
			{Key: "export_id", Value: res.ID},
			{Key: "source", Value: filepath.Base(t.Input)},
			{Key: "variable", Value: t.Variable},
		},
	}

	defer removeOnError(&err, res.Output)
	if err = nrrd.WriteFile(t.Output, grid.Data(), grid.Shape[:], opts); err != nil {
		return nil, fmt.Errorf("failed to write nrrd: %w", err)
	}

	if t.SlicesDir != "" {
		viewer := visualization.NewViewer(grid)
		for _, axis := range []string{"x", "y", "z"} {
			n, serr := viewer.SaveSliceSequence(axis, filepath.Join(t.SlicesDir, axis))
			if serr != nil {
				e.printf("Warning: failed to save %s-axis slices: %v\n", axis, serr)
			}
			res.Slices += n
		}
	}
	return res, nil
}

// ExportImage renders one view of a radiance field to an 8-bit image
func (e *Exporter) ExportImage(t ImageExport) (res *Result, err error) {
	field, summary, err := e.load(t.Input, t.Variable)
	if err != nil {
		return nil, err
	}

	img, err := radiance.Image(field, t.View)
	if err != nil {
		return nil, err
	}

	res = &Result{
		ID:      uuid.NewString(),
		Output:  t.Output,
		Points:  len(img.Pix),
		Summary: summary,
	}

	defer removeOnError(&err, res.Output)
	if err = visualization.SaveImage(img, t.Output); err != nil {
		return nil, err
	}
	return res, nil
}

// ExportHistogram plots the non-zero values of a field
func (e *Exporter) ExportHistogram(t HistogramExport) (res *Result, err error) {
	field, summary, err := e.load(t.Input, t.Variable)
	if err != nil {
		return nil, err
	}

	values := nonZero(field)
	e.printf("Found %d points\n", len(values))
	if len(values) == 0 {
		return nil, visualization.ErrNoValues
	}

	res = &Result{
		ID:      uuid.NewString(),
		Output:  t.Output,
		Points:  len(values),
		Summary: summary,
	}

	defer removeOnError(&err, res.Output)
	title := fmt.Sprintf("%s (%s)", t.Variable, filepath.Base(t.Input))
	if err = visualization.SaveHistogram(values, t.Bins, title, t.Output); err != nil {
		return nil, err
	}
	return res, nil
}

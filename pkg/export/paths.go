package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInputPath is returned when the input is not an existing netCDF file
	ErrInputPath = errors.New("provided input is not a netCDF format file")

	// ErrOutputPath is returned when the output has an unsupported extension
	ErrOutputPath = errors.New("invalid output path")
)

// Output extensions per export target, default first
var (
	PointCloudExtensions = []string{".glb", ".gltf"}
	VolumeExtensions     = []string{".nrrd"}
	ImageExtensions      = []string{".png", ".jpg"}
	HistogramExtensions  = []string{".png", ".svg", ".pdf"}
)

// expand resolves a leading ~ and makes path absolute
func expand(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ResolveInput returns the absolute path of an existing .nc file
func ResolveInput(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: no input given", ErrInputPath)
	}
	abs, err := expand(path)
	if err != nil {
		return "", fmt.Errorf("could not resolve input filepath: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() || strings.ToLower(filepath.Ext(abs)) != ".nc" {
		return "", fmt.Errorf("%w: %s", ErrInputPath, abs)
	}
	return abs, nil
}

// ResolveOutput returns the file an export of input writes to. An empty out
// places <input stem><exts[0]> beside the input, and a directory receives the
// same file name. Any other out must carry one of exts.
func ResolveOutput(out, input string, exts []string) (string, error) {
	if len(exts) == 0 {
		return "", fmt.Errorf("%w: no output extensions allowed", ErrOutputPath)
	}
	if out == "" {
		return filepath.Join(filepath.Dir(input), stem(input)+exts[0]), nil
	}

	abs, err := expand(out)
	if err != nil {
		return "", fmt.Errorf("could not resolve output path: %w", err)
	}

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return filepath.Join(abs, stem(input)+exts[0]), nil
	}

	ext := strings.ToLower(filepath.Ext(abs))
	for _, e := range exts {
		if ext == e {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: outfile must be either a %s filepath or a directory",
		ErrOutputPath, strings.Join(exts, "/"))
}

// ResolveResource returns the vertex buffer path of a .gltf model. An empty
// res defaults to <out stem>.bin. A bare file name is placed beside the model.
// The buffer is referenced by name from the model, so it must share the
// model's directory.
func ResolveResource(res, out string) (string, error) {
	dir := filepath.Dir(out)
	if res == "" {
		return filepath.Join(dir, stem(out)+".bin"), nil
	}
	if filepath.Base(res) == res {
		return filepath.Join(dir, res), nil
	}

	abs, err := expand(res)
	if err != nil {
		return "", fmt.Errorf("could not resolve resource path: %w", err)
	}
	if filepath.Dir(abs) != dir {
		return "", fmt.Errorf("%w: resource %s must be in the model directory %s", ErrOutputPath, abs, dir)
	}
	return abs, nil
}

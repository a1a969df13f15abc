package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ncexport/pkg/config"
	"ncexport/pkg/export"
	"ncexport/pkg/quantize"
)

const usage = `Usage: ncexport [-config FILE] <command> [options] FILE

Commands:
  gltf    export non-zero cells of a variable as a glTF point cloud
  nrrd    export non-zero cells of a variable as an NRRD volume
  rad     export the nadir view of a radiance variable as an image
  hist    plot a histogram of the non-zero values of a variable
  config  write the default configuration file

Run 'ncexport <command> -h' for command options.
`

// errUsage marks errors caused by bad arguments; usage has already been
// printed for them.
var errUsage = errors.New("invalid arguments")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("Export failed: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("ncexport", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := global.String("config", config.DefaultPath, "YAML configuration file")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errUsage
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	if cmd == "config" {
		return writeConfig(rest, stdout, stderr)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	var target export.Target
	switch cmd {
	case "gltf":
		target, err = parseGLTF(rest, cfg, stdout, stderr)
	case "nrrd":
		target, err = parseNRRD(rest, cfg, stdout, stderr)
	case "rad":
		target, err = parseRad(rest, cfg, stdout, stderr)
	case "hist":
		target, err = parseHist(rest, cfg, stdout, stderr)
	default:
		global.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if err != nil {
		return err
	}

	startTime := time.Now()
	res, err := export.NewExporter(stdout, cfg.Output.Verbose).Run(target)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\nExport completed in %.2f seconds\n", time.Since(startTime).Seconds())
	if cfg.Output.Verbose {
		fmt.Fprintf(stdout, "Export id: %s\n", res.ID)
	}
	if res.Slices > 0 {
		fmt.Fprintf(stdout, "Saved %d preview slices\n", res.Slices)
	}
	return nil
}

// newFlagSet returns a subcommand flag set with the options every command
// shares. Each option is registered under a short and a long name.
func newFlagSet(name, defaultExt string, stderr io.Writer) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: ncexport %s [options] FILE\n\nOptions:\n", name)
		fs.PrintDefaults()
	}

	outfile := new(string)
	variable := new(string)
	outHelp := fmt.Sprintf("output file or directory (default: input name with %s extension)", defaultExt)
	fs.StringVar(outfile, "o", "", outHelp)
	fs.StringVar(outfile, "outfile", "", outHelp)
	fs.StringVar(variable, "v", "", "variable to export")
	fs.StringVar(variable, "variable", "", "variable to export")
	return fs, outfile, variable
}

// parseArgs parses flags given before or after the single FILE argument
func parseArgs(fs *flag.FlagSet, args []string) (string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return "", err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(positional) != 1 {
		fs.Usage()
		return "", fmt.Errorf("%w: expected exactly one input FILE, got %d", errUsage, len(positional))
	}
	return positional[0], nil
}

// resolve sanitises the input and output paths and prints them
func resolve(file, outfile, variable string, exts []string, stdout io.Writer) (string, string, error) {
	in, err := export.ResolveInput(file)
	if err != nil {
		return "", "", err
	}
	out, err := export.ResolveOutput(outfile, in, exts)
	if err != nil {
		return "", "", err
	}

	fmt.Fprintf(stdout, "input filepath   : %s\n", in)
	fmt.Fprintf(stdout, "output filepath  : %s\n", out)
	fmt.Fprintf(stdout, "exported variable: %s\n", variable)
	return in, out, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseGLTF(args []string, cfg *config.Config, stdout, stderr io.Writer) (export.Target, error) {
	fs, outfile, variable := newFlagSet("gltf", export.PointCloudExtensions[0], stderr)
	resource := new(string)
	fs.StringVar(resource, "r", "", "vertex buffer file of a .gltf model (default: model name with .bin extension)")
	fs.StringVar(resource, "resource", "", "vertex buffer file of a .gltf model")

	file, err := parseArgs(fs, args)
	if err != nil {
		return nil, err
	}

	name := orDefault(*variable, cfg.Export.PointCloudVariable)
	in, out, err := resolve(file, *outfile, name, export.PointCloudExtensions, stdout)
	if err != nil {
		return nil, err
	}

	t := export.PointCloudExport{Input: in, Output: out, Variable: name}
	if strings.ToLower(filepath.Ext(out)) == ".gltf" {
		t.Resource, err = export.ResolveResource(*resource, out)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(stdout, "vertices filepath: %s\n", t.Resource)
	}
	fmt.Fprintf(stdout, "\nExporting data to %s...\n", strings.ToUpper(strings.TrimPrefix(filepath.Ext(out), ".")))
	return t, nil
}

func parseNRRD(args []string, cfg *config.Config, stdout, stderr io.Writer) (export.Target, error) {
	fs, outfile, variable := newFlagSet("nrrd", export.VolumeExtensions[0], stderr)
	bits := new(int)
	bitsHelp := "bits of precision to quantize variable data, 8 or 16 (default: export as float)"
	fs.IntVar(bits, "b", 0, bitsHelp)
	fs.IntVar(bits, "bits", 0, bitsHelp)
	slices := fs.String("slices", "", "directory to save preview slices of the packed volume")
	clamp := fs.Bool("clamp", cfg.Export.Clamp, "clamp values to the field range before quantizing")

	file, err := parseArgs(fs, args)
	if err != nil {
		return nil, err
	}

	bitsSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "b" || f.Name == "bits" {
			bitsSet = true
		}
	})
	if bitsSet && *bits != 8 && *bits != 16 {
		fs.Usage()
		return nil, fmt.Errorf("%w: only 8 or 16 bits are allowed for quantizing data, got %d", errUsage, *bits)
	}

	depth, err := quantize.ParseDepth(*bits)
	if err != nil {
		fs.Usage()
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	name := orDefault(*variable, cfg.Export.PointCloudVariable)
	in, out, err := resolve(file, *outfile, name, export.VolumeExtensions, stdout)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(stdout, "quantization     : %s\n", depth)
	fmt.Fprintln(stdout, "\nExporting data to NRRD...")

	return export.VolumeExport{
		Input:     in,
		Output:    out,
		Variable:  name,
		Depth:     depth,
		Encoding:  cfg.Encoding(),
		Clamp:     *clamp,
		SlicesDir: *slices,
	}, nil
}

func parseRad(args []string, cfg *config.Config, stdout, stderr io.Writer) (export.Target, error) {
	fs, outfile, variable := newFlagSet("rad", export.ImageExtensions[0], stderr)
	view := fs.Int("view", cfg.Export.NadirIndex, "view-angle index to render")

	file, err := parseArgs(fs, args)
	if err != nil {
		return nil, err
	}

	name := orDefault(*variable, cfg.Export.RadianceVariable)
	in, out, err := resolve(file, *outfile, name, export.ImageExtensions, stdout)
	if err != nil {
		return nil, err
	}
	return export.ImageExport{Input: in, Output: out, Variable: name, View: *view}, nil
}

func parseHist(args []string, cfg *config.Config, stdout, stderr io.Writer) (export.Target, error) {
	fs, outfile, variable := newFlagSet("hist", export.HistogramExtensions[0], stderr)
	bins := fs.Int("bins", cfg.Export.HistogramBins, "number of histogram bins")

	file, err := parseArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if *bins <= 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: bins must be positive", errUsage)
	}

	name := orDefault(*variable, cfg.Export.PointCloudVariable)
	in, out, err := resolve(file, *outfile, name, export.HistogramExtensions, stdout)
	if err != nil {
		return nil, err
	}
	return export.HistogramExport{Input: in, Output: out, Variable: name, Bins: *bins}, nil
}

func writeConfig(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", config.DefaultPath, "path of the configuration file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.CreateDefaultConfigFile(*out); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Default configuration written to: %s\n", *out)
	return nil
}

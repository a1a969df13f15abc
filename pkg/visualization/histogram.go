package visualization

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoValues is returned when there is nothing to plot
var ErrNoValues = errors.New("no values to plot")

// SaveHistogram renders a histogram of values with the given number of bins.
// The image format follows the extension of filename.
func SaveHistogram(values []float64, bins int, title, filename string) error {
	if len(values) == 0 {
		return ErrNoValues
	}
	if bins <= 0 {
		return fmt.Errorf("bin count must be positive, got %d", bins)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Value"
	p.Y.Label.Text = "Cells"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return fmt.Errorf("failed to bin values: %w", err)
	}
	h.LineStyle.Width = vg.Points(1)
	p.Add(h)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, filename); err != nil {
		return fmt.Errorf("failed to save histogram: %w", err)
	}
	return nil
}

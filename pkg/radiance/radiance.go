// Package radiance renders a single viewing angle of a multi-angle radiance
// field as an 8-bit grayscale image.
package radiance

import (
	"errors"
	"fmt"
	"image"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"

	"ncexport/internal/models"
	"ncexport/pkg/quantize"
)

// NadirView is the view-angle index of the sample looking straight down
const NadirView = 8

// ErrViewIndex is returned when the field has no entry for the requested view
var ErrViewIndex = errors.New("view index out of range")

// Slice extracts the (along-track, across-track) plane of a radiance field
// indexed (along-track, across-track, view-angle) at view.
func Slice(field *sparse.DenseArray, view int) (*sparse.DenseArray, error) {
	along, across, views, err := models.Shape3(field)
	if err != nil {
		return nil, err
	}
	if view < 0 || view >= views {
		return nil, fmt.Errorf("%w: view %d requested, field has %d", ErrViewIndex, view, views)
	}

	plane := sparse.ZerosDense(along, across)
	for i := 0; i < along; i++ {
		for j := 0; j < across; j++ {
			plane.Elements[i*across+j] = field.Elements[models.Offset(i, j, view, across, views)]
		}
	}
	return plane, nil
}

// Image quantizes the plane at view to 8 bits over the plane's own value
// range. Rows of the image follow the along-track axis and columns the
// across-track axis. A constant plane renders black.
func Image(field *sparse.DenseArray, view int) (*image.Gray, error) {
	plane, err := Slice(field, view)
	if err != nil {
		return nil, err
	}

	along, across := plane.Shape[0], plane.Shape[1]
	img := image.NewGray(image.Rect(0, 0, across, along))
	if len(plane.Elements) == 0 {
		return img, nil
	}

	min, max := floats.Min(plane.Elements), floats.Max(plane.Elements)
	for i := 0; i < along; i++ {
		for j := 0; j < across; j++ {
			img.Pix[i*img.Stride+j] = quantize.Uint8(plane.Elements[i*across+j], min, max)
		}
	}
	return img, nil
}

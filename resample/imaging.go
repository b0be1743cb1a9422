package resample

import (
	"image"

	"github.com/disintegration/imaging"
)

// Imaging uses "github.com/disintegration/imaging". The resampling pass runs in parallel
// across GOMAXPROCS goroutines.
type Imaging struct{}

var _ Resampler = (*Imaging)(nil)

// Resize ...
func (r *Imaging) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := validSize(size); err != nil {
		return nil, err
	}
	return imaging.Resize(img, size.X, size.Y, imaging.Lanczos), nil
}

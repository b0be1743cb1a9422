package resample

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
)

// Bild uses "github.com/anthonynsimon/bild/transform"
type Bild struct{}

var _ Resampler = (*Bild)(nil)

// Resize ...
func (r *Bild) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := validSize(size); err != nil {
		return nil, err
	}
	return transform.Resize(img, size.X, size.Y, transform.Lanczos), nil
}

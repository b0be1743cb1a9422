package resample

import (
	"image"

	"github.com/nfnt/resize"
)

// Nfnt uses "github.com/nfnt/resize"
type Nfnt struct{}

var _ Resampler = (*Nfnt)(nil)

// Resize ...
func (r *Nfnt) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := validSize(size); err != nil {
		return nil, err
	}
	return resize.Resize(uint(size.X), uint(size.Y), img, resize.Lanczos3), nil
}

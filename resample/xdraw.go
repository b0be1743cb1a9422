package resample

import (
	"image"

	"golang.org/x/image/draw"
)

// XDraw uses "golang.org/x/image/draw" with the CatmullRom kernel, the closest
// of its scalers to Lanczos.
type XDraw struct{}

var _ Resampler = (*XDraw)(nil)

// Resize ...
func (r *XDraw) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := validSize(size); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rectangle{Max: size})
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

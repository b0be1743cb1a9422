// Package resizer scales one encoded image so that its shorter edge matches a target length,
// keeping the aspect ratio, and re-encodes the result in a fixed format.
package resizer

import (
	"bytes"
	"image"
	"sync"

	// imaging registers jpeg, png, gif, tiff and bmp.
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/shortedge/resample"
)

// DefaultTargetShortEdge is the short edge length used by DefaultOptions.
const DefaultTargetShortEdge = 512

// Options configures a Resizer.
type Options struct {
	// TargetShortEdge is the length the shorter output edge is scaled to.
	TargetShortEdge int
	// Format is the output container format.
	Format imaging.Format
	// Engine names the resampling engine, see resample.Names.
	Engine string
	// MaxOutputPixels bounds width*height of the output. Zero disables the check.
	MaxOutputPixels int
	// AutoOrient rotates input by its EXIF orientation before measuring. Off by default,
	// so the stored width and height decide the output size.
	AutoOrient bool
}

// DefaultOptions returns a 512px short edge, PNG output and the imaging engine.
func DefaultOptions() Options {
	return Options{
		TargetShortEdge: DefaultTargetShortEdge,
		Format:          imaging.PNG,
		Engine:          resample.Default,
	}
}

// Result is a successful resize.
type Result struct {
	Data     []byte
	Original image.Point
	Resized  image.Point
}

// Resizer is safe for concurrent use.
type Resizer struct {
	opts      Options
	resampler resample.Resampler
}

// maxPooledBuffer is the largest encode buffer returned to bufPool.
const maxPooledBuffer = 8 << 20

var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

func releaseBuffer(buf *bytes.Buffer) bool {
	if buf.Cap() > maxPooledBuffer {
		return false
	}
	buf.Reset()
	bufPool.Put(buf)
	return true
}

// New validates opts and returns a Resizer.
func New(opts Options) (*Resizer, error) {
	if opts.TargetShortEdge <= 0 {
		return nil, fail(ErrInvalidTargetEdge, errors.Errorf("got %d", opts.TargetShortEdge))
	}
	if opts.MaxOutputPixels < 0 {
		return nil, errors.Errorf("max output pixels must not be negative, got %d", opts.MaxOutputPixels)
	}
	r, err := resample.New(opts.Engine)
	if err != nil {
		return nil, err
	}
	return &Resizer{opts: opts, resampler: r}, nil
}

// Options returns the options the Resizer was built with.
func (r *Resizer) Options() Options {
	return r.opts
}

// Dimensions returns the output size for a width x height input whose short edge becomes
// target. A square input takes the width branch. The long edge is truncated, not rounded.
func Dimensions(width, height, target int) (int, int) {
	if width <= height {
		return target, int(int64(height) * int64(target) / int64(width))
	}
	return int(int64(width) * int64(target) / int64(height)), target
}

// Resize decodes input, scales it and encodes it in the configured format.
func (r *Resizer) Resize(input []byte) (Result, error) {
	if r.opts.TargetShortEdge <= 0 {
		return Result{}, fail(ErrInvalidTargetEdge, errors.Errorf("got %d", r.opts.TargetShortEdge))
	}
	if len(input) == 0 {
		return Result{}, fail(ErrDecodeFailed, errors.New("empty input"))
	}

	img, err := imaging.Decode(bytes.NewReader(input), imaging.AutoOrientation(r.opts.AutoOrient))
	if err != nil {
		return Result{}, fail(ErrDecodeFailed, err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Result{}, fail(ErrDecodeFailed, errors.Errorf("image has no pixels (%dx%d)", b.Dx(), b.Dy()))
	}
	res := Result{Original: image.Point{X: b.Dx(), Y: b.Dy()}}

	w, h := Dimensions(b.Dx(), b.Dy(), r.opts.TargetShortEdge)
	res.Resized = image.Point{X: w, Y: h}
	if limit := r.opts.MaxOutputPixels; limit > 0 && int64(w)*int64(h) > int64(limit) {
		return res, fail(ErrOutputTooLarge, errors.Errorf("%dx%d exceeds %d pixels", w, h, limit))
	}

	resized, err := r.resampler.Resize(img, res.Resized)
	if err != nil {
		return res, errors.Wrap(err, "resampling")
	}

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer releaseBuffer(buf)

	if err := imaging.Encode(buf, resized, r.opts.Format); err != nil {
		return res, fail(ErrEncodeFailed, err)
	}
	res.Data = append([]byte(nil), buf.Bytes()...)
	return res, nil
}

// Resize scales input so its short edge is targetShortEdge, using DefaultOptions otherwise.
func Resize(input []byte, targetShortEdge int) ([]byte, error) {
	opts := DefaultOptions()
	opts.TargetShortEdge = targetShortEdge
	r, err := New(opts)
	if err != nil {
		return nil, err
	}
	res, err := r.Resize(input)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

package resizer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 255, G: uint8(x % 256), B: uint8(y % 256), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func newResizer(t *testing.T, target int) *Resizer {
	t.Helper()
	opts := DefaultOptions()
	opts.TargetShortEdge = target
	r, err := New(opts)
	require.NoError(t, err)
	return r
}

func decodedSize(t *testing.T, b []byte) (int, int) {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

// withOrientation inserts an EXIF APP1 segment carrying the given orientation tag
// right after the JPEG SOI marker.
func withOrientation(t *testing.T, jpg []byte, orientation byte) []byte {
	t.Helper()
	require.True(t, bytes.HasPrefix(jpg, []byte{0xff, 0xd8}))
	payload := []byte("Exif\x00\x00")
	payload = append(payload, 'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0x00, 0x08)
	payload = append(payload, 0x00, 0x01)
	payload = append(payload, 0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, orientation, 0x00, 0x00)
	payload = append(payload, 0x00, 0x00, 0x00, 0x00)
	size := len(payload) + 2
	segment := append([]byte{0xff, 0xe1, byte(size >> 8), byte(size)}, payload...)

	out := append([]byte{}, jpg[:2]...)
	out = append(out, segment...)
	return append(out, jpg[2:]...)
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		target        int
		wantW, wantH  int
	}{
		{name: "landscape 1024x768", width: 1024, height: 768, target: 512, wantW: 682, wantH: 512},
		{name: "portrait 300x600", width: 300, height: 600, target: 512, wantW: 512, wantH: 1024},
		{name: "square", width: 700, height: 700, target: 512, wantW: 512, wantH: 512},
		{name: "already at target", width: 512, height: 900, target: 512, wantW: 512, wantH: 900},
		{name: "portrait truncates", width: 3, height: 7, target: 512, wantW: 512, wantH: 1194},
		{name: "landscape truncates", width: 7, height: 3, target: 512, wantW: 1194, wantH: 512},
		{name: "upscale tiny", width: 1, height: 2, target: 512, wantW: 512, wantH: 1024},
		{name: "one pixel tall", width: 10, height: 1, target: 4, wantW: 40, wantH: 4},
		{name: "alternate target", width: 1920, height: 1080, target: 256, wantW: 455, wantH: 256},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := Dimensions(tc.width, tc.height, tc.target)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestDimensionsShortEdgeProperty(t *testing.T) {
	for _, target := range []int{1, 16, 512} {
		for w := 1; w <= 40; w += 3 {
			for h := 1; h <= 40; h += 5 {
				nw, nh := Dimensions(w, h, target)
				if w <= h {
					assert.Equal(t, target, nw)
					assert.Equal(t, h*target/w, nh)
				} else {
					assert.Equal(t, target, nh)
					assert.Equal(t, w*target/h, nw)
				}
				assert.Positive(t, nw)
				assert.Positive(t, nh)
			}
		}
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		target        int
		wantW, wantH  int
	}{
		{name: "landscape example", width: 1024, height: 768, target: 512, wantW: 682, wantH: 512},
		{name: "portrait example", width: 300, height: 600, target: 512, wantW: 512, wantH: 1024},
		{name: "downscale", width: 90, height: 60, target: 20, wantW: 30, wantH: 20},
		{name: "upscale", width: 5, height: 8, target: 20, wantW: 20, wantH: 32},
		{name: "square", width: 33, height: 33, target: 16, wantW: 16, wantH: 16},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := newResizer(t, tc.target).Resize(encodePNG(t, tc.width, tc.height))
			require.NoError(t, err)
			assert.Equal(t, image.Point{X: tc.width, Y: tc.height}, res.Original)
			assert.Equal(t, image.Point{X: tc.wantW, Y: tc.wantH}, res.Resized)

			w, h := decodedSize(t, res.Data)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestResizeOutputIsPNG(t *testing.T) {
	res, err := newResizer(t, 16).Resize(encodePNG(t, 40, 20))
	require.NoError(t, err)
	_, format, err := image.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestResizeAcceptsJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(64, 48), nil))

	res, err := newResizer(t, 24).Resize(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Point{X: 32, Y: 24}, res.Resized)
}

func TestResizeIgnoresEXIFOrientationByDefault(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(1024, 768), nil))
	input := withOrientation(t, buf.Bytes(), 6)

	res, err := newResizer(t, 512).Resize(input)
	require.NoError(t, err)
	assert.Equal(t, image.Point{X: 1024, Y: 768}, res.Original)
	assert.Equal(t, image.Point{X: 682, Y: 512}, res.Resized)
	w, h := decodedSize(t, res.Data)
	assert.Equal(t, 682, w)
	assert.Equal(t, 512, h)

	opts := DefaultOptions()
	opts.AutoOrient = true
	r, err := New(opts)
	require.NoError(t, err)
	res, err = r.Resize(input)
	require.NoError(t, err)
	assert.Equal(t, image.Point{X: 768, Y: 1024}, res.Original)
	assert.Equal(t, image.Point{X: 512, Y: 682}, res.Resized)
}

func TestResizeShapeIsIdempotent(t *testing.T) {
	r := newResizer(t, 32)
	first, err := r.Resize(encodePNG(t, 50, 80))
	require.NoError(t, err)
	second, err := r.Resize(first.Data)
	require.NoError(t, err)
	assert.Equal(t, first.Resized, second.Resized)
	assert.Equal(t, first.Resized, second.Original)
}

func TestResizeKeepsContent(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 60, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			c := color.NRGBA{R: 20, G: 40, B: 220, A: 255}
			if x >= 30 {
				c = color.NRGBA{R: 240, G: 240, B: 20, A: 255}
			}
			src.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	res, err := newResizer(t, 20).Resize(buf.Bytes())
	require.NoError(t, err)
	out, err := imaging.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)

	left := color.NRGBAModel.Convert(out.At(3, 10)).(color.NRGBA)
	right := color.NRGBAModel.Convert(out.At(26, 10)).(color.NRGBA)
	assert.InDelta(t, 220, int(left.B), 4)
	assert.InDelta(t, 240, int(right.R), 4)
}

func TestResizeErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := newResizer(t, 512).Resize(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDecodeFailed))
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := newResizer(t, 512).Resize([]byte("not an image"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDecodeFailed))
	})

	t.Run("truncated input", func(t *testing.T) {
		b := encodePNG(t, 30, 30)
		_, err := newResizer(t, 16).Resize(b[:len(b)/2])
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDecodeFailed))
	})

	t.Run("zero target", func(t *testing.T) {
		_, err := Resize(encodePNG(t, 10, 10), 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTargetEdge))
	})

	t.Run("negative target rejected before decoding", func(t *testing.T) {
		r := &Resizer{opts: Options{TargetShortEdge: -1}}
		_, err := r.Resize(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTargetEdge))
	})

	t.Run("unsupported output format", func(t *testing.T) {
		opts := DefaultOptions()
		opts.TargetShortEdge = 8
		opts.Format = imaging.Format(99)
		r, err := New(opts)
		require.NoError(t, err)
		_, err = r.Resize(encodePNG(t, 10, 10))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEncodeFailed))
		assert.Contains(t, err.Error(), "unsupported image format")
	})

	t.Run("output too large", func(t *testing.T) {
		opts := DefaultOptions()
		opts.TargetShortEdge = 64
		opts.MaxOutputPixels = 64 * 64 * 10
		r, err := New(opts)
		require.NoError(t, err)
		res, err := r.Resize(encodePNG(t, 1, 20))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOutputTooLarge))
		assert.Equal(t, image.Point{X: 64, Y: 1280}, res.Resized)
	})
}

func TestErrorMatchesKindAndCause(t *testing.T) {
	err := error(&Error{Kind: ErrDecodeFailed, Err: io.ErrUnexpectedEOF})
	assert.True(t, errors.Is(err, ErrDecodeFailed))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.False(t, errors.Is(err, ErrEncodeFailed))
	assert.Equal(t, "decode failed: unexpected EOF", err.Error())
	assert.Equal(t, io.ErrUnexpectedEOF, errors.Cause(err))

	wrapped := errors.Wrap(err, "resize")
	assert.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))

	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, ErrDecodeFailed, e.Kind)

	bare := error(&Error{Kind: ErrOutputTooLarge})
	assert.True(t, errors.Is(bare, ErrOutputTooLarge))
	assert.Equal(t, "output image too large", bare.Error())
}

func TestReleaseBufferDropsLargeBuffers(t *testing.T) {
	small := bufPool.Get().(*bytes.Buffer)
	small.WriteString("png")
	assert.True(t, releaseBuffer(small))
	assert.Zero(t, small.Len())

	large := bytes.NewBuffer(make([]byte, 0, maxPooledBuffer+1))
	large.WriteString("png")
	assert.False(t, releaseBuffer(large))
}

func TestNew(t *testing.T) {
	_, err := New(Options{TargetShortEdge: 0})
	assert.True(t, errors.Is(err, ErrInvalidTargetEdge))

	_, err = New(Options{TargetShortEdge: 10, Engine: "nope"})
	assert.Error(t, err)

	_, err = New(Options{TargetShortEdge: 10, MaxOutputPixels: -1})
	assert.Error(t, err)

	r, err := New(DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 512, r.Options().TargetShortEdge)
	assert.Equal(t, imaging.PNG, r.Options().Format)
}

func TestResizeWithEveryEngine(t *testing.T) {
	input := encodePNG(t, 45, 30)
	for _, engine := range []string{"imaging", "nfnt", "gift", "bild", "xdraw"} {
		t.Run(engine, func(t *testing.T) {
			r, err := New(Options{TargetShortEdge: 12, Format: imaging.PNG, Engine: engine})
			require.NoError(t, err)
			res, err := r.Resize(input)
			require.NoError(t, err)
			w, h := decodedSize(t, res.Data)
			assert.Equal(t, 18, w)
			assert.Equal(t, 12, h)
		})
	}
}

func TestResizeConcurrent(t *testing.T) {
	r := newResizer(t, 10)
	input := encodePNG(t, 40, 25)
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			res, err := r.Resize(input)
			if err == nil && res.Resized != (image.Point{X: 16, Y: 10}) {
				err = errors.Errorf("unexpected size %v", res.Resized)
			}
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-errs)
	}
}

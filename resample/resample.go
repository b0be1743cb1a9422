// Package resample wraps the Lanczos-class resampling filters of several imaging libraries
// behind one interface, so the resize core can switch libraries from configuration.
package resample

import (
	"image"
	"sort"

	"github.com/pkg/errors"
)

// ErrUnknownEngine is returned by New for a name that has no registered engine.
var ErrUnknownEngine = errors.New("unknown resampling engine")

// Default is the engine used when none is configured.
const Default = "imaging"

// Resampler scales an image to exactly size.
type Resampler interface {
	Resize(img image.Image, size image.Point) (image.Image, error)
}

var engines = map[string]func() Resampler{
	"imaging": func() Resampler { return &Imaging{} },
	"nfnt":    func() Resampler { return &Nfnt{} },
	"gift":    func() Resampler { return &Gift{} },
	"bild":    func() Resampler { return &Bild{} },
	"xdraw":   func() Resampler { return &XDraw{} },
}

// New returns the engine registered under name. An empty name selects Default.
func New(name string) (Resampler, error) {
	if name == "" {
		name = Default
	}
	newEngine, ok := engines[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEngine, "%q", name)
	}
	return newEngine(), nil
}

// Names lists the registered engine names in sorted order.
func Names() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validSize(size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		return errors.Errorf("invalid target size %dx%d", size.X, size.Y)
	}
	return nil
}

package downloader

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedScheme is returned for URLs no registered downloader handles.
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// Dispatcher routes a URL to the downloader registered for its scheme.
type Dispatcher struct {
	schemes map[string]Service
}

var _ Service = (*Dispatcher)(nil)

// NewDispatcher returns a Dispatcher with no schemes.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{schemes: map[string]Service{}}
}

// Register routes scheme to svc. It returns the Dispatcher for chaining.
func (d *Dispatcher) Register(scheme string, svc Service) *Dispatcher {
	d.schemes[strings.ToLower(scheme)] = svc
	return d
}

// Download ...
func (d *Dispatcher) Download(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", rawURL)
	}
	svc, ok := d.schemes[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedScheme, "%q", u.Scheme)
	}
	return svc.Download(ctx, rawURL)
}

//go:generate mockgen -destination=../../mock/downloader/downloader.go -package=mock_downloader github.com/shortedge/web/downloader Service

package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Service describes donwloader interface.
type Service interface {
	Download(context.Context, string) ([]byte, error)
}

// DefaultMaxBytes caps the size of a downloaded body.
const DefaultMaxBytes = 32 << 20

// ErrTooLarge is returned when a body exceeds the configured limit.
var ErrTooLarge = errors.New("downloaded file is too large")

type httpImpl struct {
	client   *http.Client
	maxBytes int64
	allowed  hostList
}

// NewHTTP returns downloader implementation for http and https URLs. When allowedHosts is not
// empty, only those hosts may be fetched, redirects included. Use NewClient for a client that
// refuses internal addresses.
func NewHTTP(client *http.Client, maxBytes int64, allowedHosts []string) Service {
	if client == nil {
		client = NewClient(0, false)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	s := &httpImpl{maxBytes: maxBytes, allowed: newHostList(allowedHosts)}

	c := *client
	next := client.CheckRedirect
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if err := s.allowed.check(req.URL); err != nil {
			return err
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}
	s.client = &c
	return s
}

// Download downloads file and returns response body from it.
func (s *httpImpl) Download(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", rawURL)
	}
	if err := s.allowed.check(u); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "downloading %s", rawURL)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading %s, status code is: %d", rawURL, res.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, s.maxBytes+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading body for: %s", rawURL)
	}
	if int64(len(b)) > s.maxBytes {
		return nil, errors.Wrapf(ErrTooLarge, "%s exceeds %d bytes", rawURL, s.maxBytes)
	}

	return b, nil
}

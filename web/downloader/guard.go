package downloader

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrHostNotAllowed is returned for hosts outside the configured allow list.
	ErrHostNotAllowed = errors.New("host is not allowed")
	// ErrForbiddenAddress is returned when a host resolves to a loopback, private or
	// link-local address.
	ErrForbiddenAddress = errors.New("address is not allowed")
)

// 100.64.0.0/10, carrier-grade NAT.
var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// NewClient returns an http.Client for fetching user supplied URLs. Unless allowPrivate is set,
// its dialer refuses internal addresses, which also covers redirects and DNS answers.
func NewClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if !allowPrivate {
		dialer.Control = denyInternal
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// A proxy would be dialed instead of the target.
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: transport}
}

func denyInternal(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return errors.Wrapf(ErrForbiddenAddress, "%s", address)
	}
	ip := net.ParseIP(host)
	if ip == nil || internal(ip) {
		return errors.Wrapf(ErrForbiddenAddress, "%s", host)
	}
	return nil
}

func internal(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified() ||
		sharedAddressSpace.Contains(ip)
}

type hostList map[string]struct{}

func newHostList(hosts []string) hostList {
	if len(hosts) == 0 {
		return nil
	}
	l := hostList{}
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			l[h] = struct{}{}
		}
	}
	return l
}

// check allows everything when the list is empty.
func (l hostList) check(u *url.URL) error {
	if len(l) == 0 {
		return nil
	}
	if _, ok := l[strings.ToLower(u.Hostname())]; !ok {
		return errors.Wrapf(ErrHostNotAllowed, "%q", u.Hostname())
	}
	return nil
}

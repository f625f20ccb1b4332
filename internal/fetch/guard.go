package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"
)

// ErrBlockedAddress is returned when a URL resolves to a loopback, private,
// link-local or otherwise non-public address.
var ErrBlockedAddress = errors.New("address is not publicly routable")

// Ranges not covered by the netip predicates.
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

// IsPublicAddr reports whether addr may be fetched on behalf of a caller.
func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap().WithZone("")
	if !addr.IsValid() ||
		addr.IsUnspecified() ||
		addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() {
		return false
	}
	for _, prefix := range blockedPrefixes {
		if prefix.Contains(addr) {
			return false
		}
	}
	return true
}

// dialControl rejects connections to non-public addresses. It runs for every
// dial, so redirects are checked too.
func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !IsPublicAddr(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, addr)
	}
	return nil
}

// publicTransport returns a transport that only connects to public addresses.
// Proxies are disabled because the check applies to the dialed address.
func publicTransport(timeout time.Duration) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
		Control:   dialControl,
	}).DialContext
	return transport
}

// CheckHost resolves the host of urlStr and fails when any of its addresses is
// not public.
func CheckHost(ctx context.Context, urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Hostname() == "" {
		return &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", parsed.Hostname())
	if err != nil {
		return &Error{URL: urlStr, Message: "failed to resolve host", Cause: err}
	}
	for _, addr := range addrs {
		if !IsPublicAddr(addr) {
			return &Error{URL: urlStr, Message: "host not allowed", Cause: fmt.Errorf("%w: %s", ErrBlockedAddress, addr)}
		}
	}
	return nil
}

package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/xy-planning-network/signpost"
)

const unknownIP = "0.0.0.0"

var forwardingHeaders = []string{"X-Forwarded-For", "X-Real-Ip"}

// reservedPrefixes are not publicly routable, beyond what netip.Addr.IsPrivate covers.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
}

// InjectIPAddress stores the client IP address of a request, as ClientIP finds it,
// in its context under signpost.IpAddrKey.
func InjectIPAddress() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), signpost.IpAddrKey, ClientIP(r))
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP is the address GetIPAddress finds in r's headers,
// or else the public address r came from.
func ClientIP(r *http.Request) string {
	if ip := GetIPAddress(r.Header); ip != unknownIP {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if addr, err := netip.ParseAddr(host); err == nil && public(addr) {
		return addr.String()
	}

	return unknownIP
}

// GetIPAddress finds the public address a request was forwarded for
// in "X-Forwarded-For", then "X-Real-Ip".
//
// Each header is read right to left, so the address found is the one nearest the proxies in front of the app.
func GetIPAddress(hm http.Header) string {
	for _, name := range forwardingHeaders {
		hops := strings.Split(hm.Get(name), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err == nil && public(addr) {
				return addr.String()
			}
		}
	}

	return unknownIP
}

func public(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return false
	}

	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return false
		}
	}

	return true
}

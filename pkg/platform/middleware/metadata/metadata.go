package metadata

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"potterdex/pkg/requestcontext"
)

// Resolver derives the client address for the access log, rate limiter and
// audit trail. Forwarding headers are only honoured when the connection peer
// is a configured trusted proxy; otherwise the peer address is the client.
type Resolver struct {
	trusted []netip.Prefix
}

// NewResolver builds a Resolver trusting the given proxies. Entries are CIDR
// ranges or bare addresses. An empty list trusts no one.
func NewResolver(trustedProxies []string) (*Resolver, error) {
	res := &Resolver{}
	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
			}
			res.trusted = append(res.trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		res.trusted = append(res.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return res, nil
}

// Middleware adds the client IP and User-Agent to the request context.
// This middleware should be applied early in the chain.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), res.ClientIP(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the address of the client that sent r.
func (res *Resolver) ClientIP(r *http.Request) string {
	peer, ok := peerAddr(r.RemoteAddr)
	if !ok {
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}
	if !res.trusts(peer) {
		return peer.String()
	}

	// Walk X-Forwarded-For from the nearest hop; the first untrusted address
	// is the client. Anything left of it was written by the client itself.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		client := peer
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			client = addr.Unmap()
			if !res.trusts(client) {
				break
			}
		}
		return client.String()
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.Unmap().String()
		}
	}
	return peer.String()
}

func (res *Resolver) trusts(addr netip.Addr) bool {
	for _, prefix := range res.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// peerAddr parses RemoteAddr, which is "ip:port" or "[::1]:port".
func peerAddr(remote string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return ap.Addr().Unmap(), true
	}
	if addr, err := netip.ParseAddr(remote); err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}

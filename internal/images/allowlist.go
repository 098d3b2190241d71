// Package images guards and caches the image proxy path: a hostname
// allow-list for upstream image sources and a binary cache keyed by
// block ID.
package images

import (
	"net/url"
	"strings"
)

// Allowlist is a fixed set of trusted image source hostnames.
type Allowlist struct {
	domains []string
}

func NewAllowlist(domains []string) *Allowlist {
	return &Allowlist{domains: domains}
}

// Allowed reports whether rawURL's hostname exactly equals, or is a
// dot-suffixed subdomain of, a trusted domain. The match is on hostname
// components, never a substring check. Malformed URLs are rejected.
func (a *Allowlist) Allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := u.Hostname()
	if host == "" {
		return false
	}

	for _, domain := range a.domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

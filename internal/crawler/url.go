package crawler

import (
	"net/url"
	"sort"
	"strings"
)

// twoPartTLDs are suffixes where the base domain keeps three labels
// (e.g. example.co.uk).
var twoPartTLDs = map[string]struct{}{
	"co.uk":  {},
	"com.au": {},
	"co.nz":  {},
	"co.za":  {},
	"com.br": {},
	"com.mx": {},
}

// NormalizeURL lowercases the scheme and host, strips the fragment and any
// trailing slash, so https://example.com/ and https://example.com compare
// equal.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// BaseDomain strips subdomains and any port from a host name:
// www.pleo.io -> pleo.io, blog.pleo.io -> pleo.io, example.co.uk stays.
func BaseDomain(host string) string {
	if host == "" {
		return ""
	}
	host, _, _ = strings.Cut(host, ":")
	parts := strings.Split(host, ".")
	if len(parts) >= 3 {
		lastTwo := strings.Join(parts[len(parts)-2:], ".")
		if _, ok := twoPartTLDs[lastTwo]; ok {
			return strings.Join(parts[len(parts)-3:], ".")
		}
	}
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// SimplifyExternalLinks reduces a set of external URLs to the sorted list
// of unique base domains they point at.
func SimplifyExternalLinks(externalURLs map[string]struct{}) []string {
	domains := map[string]struct{}{}
	for raw := range externalURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		if base := BaseDomain(u.Host); base != "" {
			domains[base] = struct{}{}
		}
	}
	out := make([]string, 0, len(domains))
	for d := range domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

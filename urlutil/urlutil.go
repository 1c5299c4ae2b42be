// Package urlutil provides URL helpers shared by the crawler and analyzers.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that rawURL is an absolute http(s) URL with a host.
func Validate(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q (only http and https)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}
	return u, nil
}

// Normalize canonicalizes a URL for visited-set bookkeeping: lowercased
// scheme and host, fragment stripped, empty path folded into "/", trailing
// slash removed from non-root paths. Query strings are preserved because
// they can address distinct pages. Dedup keys only: crawled pages keep the
// URL form they were discovered under.
func Normalize(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String()
}

// Domain extracts the lowercased host (without port) from a URL.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SameDomain reports whether candidate belongs to the given domain,
// treating a "www." prefix as equivalent.
func SameDomain(candidate, domain string) bool {
	h := Domain(candidate)
	if h == "" || domain == "" {
		return false
	}
	d := strings.ToLower(strings.TrimPrefix(domain, "www."))
	if i := strings.LastIndex(d, ":"); i >= 0 {
		d = d[:i]
	}
	h = strings.TrimPrefix(h, "www.")
	return h == d
}

// Path returns the path component of a URL, "/" if empty or unparseable.
func Path(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// PathDepth counts non-empty path segments.
func PathDepth(rawURL string) int {
	p := strings.Trim(Path(rawURL), "/")
	if p == "" {
		return 0
	}
	return len(strings.Split(p, "/"))
}

// Resolve resolves href against base, returning the absolute URL string.
// Returns "" for hrefs the crawler should never follow: empty values,
// bare fragments, and mailto/tel/javascript pseudo-links.
func Resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:", "ftp:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

// BrandName derives a display brand from a domain: the registrable label
// title-cased, e.g. "acme-tools.co.uk" -> "Acme Tools".
func BrandName(domain string) string {
	d := strings.TrimPrefix(strings.ToLower(domain), "www.")
	if i := strings.Index(d, "."); i > 0 {
		d = d[:i]
	}
	if d == "" {
		return ""
	}
	words := strings.FieldsFunc(d, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

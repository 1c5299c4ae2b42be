package analyzer

import (
	"strings"

	"github.com/seo-audit/backend/crawler"
	"github.com/seo-audit/backend/urlutil"
)

// Suggested values are consumed by an external remediation integration,
// so they must be pure functions of the page: the same page always yields
// the same suggestion.

// SuggestTitle builds a replacement title from the page's H1 (falling
// back to the first path segment) with a domain-derived brand suffix,
// truncated at a word boundary to stay within the 30-60 character band.
func SuggestTitle(page crawler.CrawledPage, domain string) string {
	base := ""
	if len(page.H1) > 0 {
		base = strings.TrimSpace(page.H1[0])
	}
	if base == "" {
		base = titleFromPath(page.Path)
	}
	brand := urlutil.BrandName(domain)
	if base == "" {
		base = brand
	}

	candidate := base
	if brand != "" && !strings.Contains(strings.ToLower(base), strings.ToLower(brand)) {
		candidate = base + " | " + brand
	}
	if len(candidate) > titleMaxLen {
		candidate = truncateAtWord(candidate, titleMaxLen)
	}
	return candidate
}

// SuggestMetaDescription builds a replacement description from the page's
// existing description or body text, fitted into the 120-160 character
// band at word boundaries.
func SuggestMetaDescription(page crawler.CrawledPage, domain string) string {
	source := page.MetaDescription
	if source == "" {
		source = page.BodyText
	}
	source = strings.Join(strings.Fields(source), " ")

	desc := truncateAtWord(source, metaDescMaxLen)
	if len(desc) >= metaDescMinLen {
		return desc
	}

	brand := urlutil.BrandName(domain)
	suffix := "Learn more from " + brand + "."
	if brand == "" {
		suffix = "Learn more on our website."
	}
	if desc == "" {
		desc = suffix
	} else if !strings.HasSuffix(desc, ".") {
		desc = desc + ". " + suffix
	} else {
		desc = desc + " " + suffix
	}
	return truncateAtWord(desc, metaDescMaxLen)
}

// titleFromPath turns "/blog/seo-basics" into "Seo Basics".
func titleFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return ""
	}
	words := strings.FieldsFunc(last, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// truncateAtWord cuts s to at most max characters without splitting a
// word. A first word longer than max is hard-cut.
func truncateAtWord(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:.|")
}

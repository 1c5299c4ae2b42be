package analyzer

import "github.com/seo-audit/backend/crawler"

// successfulPages filters the crawl result down to pages that actually
// rendered HTML worth analyzing.
func successfulPages(pages []crawler.CrawledPage) []crawler.CrawledPage {
	var out []crawler.CrawledPage
	for _, p := range pages {
		if p.Error == "" && p.StatusCode >= 200 && p.StatusCode < 400 {
			out = append(out, p)
		}
	}
	return out
}

// homepage returns the shallowest successful page, preferring the site
// root. Nil when the crawl produced nothing usable.
func homepage(pages []crawler.CrawledPage) *crawler.CrawledPage {
	var best *crawler.CrawledPage
	for i := range pages {
		p := &pages[i]
		if p.Error != "" || p.StatusCode < 200 || p.StatusCode >= 400 {
			continue
		}
		if p.Path == "/" || p.Path == "" {
			return p
		}
		if best == nil || p.Depth < best.Depth {
			best = p
		}
	}
	return best
}

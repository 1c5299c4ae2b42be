// Package crawler implements a bounded breadth-first crawl of a single
// domain, producing the ordered page list the category analyzers consume.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/seo-audit/backend/urlutil"
)

const (
	maxRedirects = 5
	maxBodyBytes = 5 * 1024 * 1024 // 5 MB
)

// Crawler performs domain-scoped BFS crawls. One fetch is in flight at a
// time and fetches are spaced by the configured delay.
type Crawler struct {
	cfg    Config
	client *http.Client
	log    *logrus.Logger
}

// New creates a Crawler. The HTTP client follows at most maxRedirects
// redirects and times out per request.
func New(cfg Config, log *logrus.Logger) *Crawler {
	cfg = cfg.WithDefaults()
	return &Crawler{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		log: log,
	}
}

// Crawl walks the site starting at startURL in breadth-first order and
// returns pages in discovery order. A single page failing to fetch is
// recorded as a degraded page (status 0, Error set) and never aborts the
// crawl; only an invalid start URL returns an error.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]CrawledPage, error) {
	start, err := urlutil.Validate(startURL)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	domain := start.Hostname()

	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(c.cfg.Delay), 1)
	}

	// seen covers both the queue and visited pages so that
	// len(queue)+len(visited) never exceeds the page budget. Keys are
	// normalized for dedup only; pages keep the URL form the site links,
	// trailing slash included, so URL-style checks see the real shape.
	seen := map[string]bool{}
	queue := []queueEntry{{url: start.String(), depth: 0}}
	seen[urlutil.Normalize(start.String())] = true
	var pages []CrawledPage

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]
		if entry.depth > c.cfg.MaxDepth {
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return pages, fmt.Errorf("crawl: %w", err)
		}

		page, links := c.fetchPage(ctx, entry.url, entry.depth, domain)
		pages = append(pages, page)

		c.log.WithFields(logrus.Fields{
			"url":    page.URL,
			"status": page.StatusCode,
			"depth":  page.Depth,
		}).Debug("crawled page")

		if entry.depth >= c.cfg.MaxDepth {
			continue
		}
		for _, link := range links {
			if len(seen) >= c.cfg.MaxPages {
				break
			}
			key := urlutil.Normalize(link)
			if seen[key] || !urlutil.SameDomain(link, domain) {
				continue
			}
			seen[key] = true
			queue = append(queue, queueEntry{url: link, depth: entry.depth + 1})
		}
	}

	c.log.WithFields(logrus.Fields{
		"domain": domain,
		"pages":  len(pages),
	}).Info("crawl finished")
	return pages, nil
}

// fetchPage fetches one URL and extracts metadata and same-domain links.
// All failures degrade to a page record; the second return value is the
// deduplicated list of absolute link targets found on the page.
func (c *Crawler) fetchPage(ctx context.Context, pageURL string, depth int, domain string) (CrawledPage, []string) {
	page := CrawledPage{
		URL:   pageURL,
		Path:  urlutil.Path(pageURL),
		Depth: depth,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		page.Error = err.Error()
		return page, nil
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		page.Error = err.Error()
		c.log.WithError(err).WithField("url", pageURL).Warn("page fetch failed")
		return page, nil
	}
	defer resp.Body.Close()

	page.StatusCode = resp.StatusCode
	if resp.StatusCode >= http.StatusInternalServerError {
		page.Error = fmt.Sprintf("server returned %d", resp.StatusCode)
		return page, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	page.LoadTimeMs = int(time.Since(started).Milliseconds())
	if err != nil && !errors.Is(err, io.EOF) {
		page.Error = err.Error()
		return page, nil
	}
	page.PageSizeBytes = len(body)

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return page, nil
	}

	links := extractMetadata(&page, body, domain)
	return page, links
}

package analyzer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"

	"github.com/seo-audit/backend/crawler"
	"github.com/seo-audit/backend/urlutil"
)

// technicalWeights combines the technical checks into the category score.
var technicalWeights = map[string]float64{
	"sitemap":         20,
	"robots_txt":      15,
	"ssl":             30,
	"mobile_friendly": 20,
	"schema_markup":   5,
	"canonical":       5,
	"url_consistency": 5,
}

// A site-wide "Disallow: /" dominates everything else: the category score
// is capped here no matter how the remaining checks do.
const disallowAllScoreCap = 45

const maxFetchBytes = 512 * 1024

// TechnicalAnalyzer runs crawlability and infrastructure checks. It is
// the only analyzer besides Performance that performs its own I/O
// (sitemap.xml, robots.txt, SSL reachability); those fetches degrade to
// "not found" on any failure.
type TechnicalAnalyzer struct {
	client *http.Client
	log    *logrus.Logger
}

func NewTechnicalAnalyzer(client *http.Client, log *logrus.Logger) *TechnicalAnalyzer {
	return &TechnicalAnalyzer{client: client, log: log}
}

func (a *TechnicalAnalyzer) Analyze(ctx context.Context, auditID, domain string, pages []crawler.CrawledPage) (CategoryResult, error) {
	b := newResultBuilder(auditID, CategoryTechnical, WeightTechnical)
	ok := successfulPages(pages)

	a.checkSitemap(ctx, b, domain)
	disallowAll := a.checkRobotsTxt(ctx, b, domain)
	a.checkSSL(ctx, b, domain)
	a.checkViewport(b, ok)
	a.checkSchemaMarkup(b, ok)
	a.checkCanonical(b, ok, domain)
	a.checkURLConsistency(b, ok)

	score := b.weightedScore(technicalWeights)
	if disallowAll && score > disallowAllScoreCap {
		score = disallowAllScoreCap
	}
	return b.build(score), nil
}

func (a *TechnicalAnalyzer) checkSitemap(ctx context.Context, b *resultBuilder, domain string) {
	status, body, err := a.fetchText(ctx, "https://"+domain+"/sitemap.xml")
	if err != nil || status != http.StatusOK {
		b.addCheck("sitemap", StatusFail, 0, "sitemap.xml not found")
		b.addIssue(Issue{
			Type:           "missing_sitemap",
			Severity:       SeverityMedium,
			Title:          "Missing XML sitemap",
			Description:    "No sitemap.xml was found at the site root, which makes it harder for search engines to discover all pages.",
			Recommendation: "Generate an XML sitemap listing every indexable URL and serve it at /sitemap.xml.",
			AffectedPages:  1,
		})
		return
	}
	urlCount := strings.Count(body, "<loc>")
	b.addCheck("sitemap", StatusPass, 100, fmt.Sprintf("sitemap.xml found with %d URLs", urlCount))
}

// checkRobotsTxt returns true when robots.txt disallows the whole site
// for all user agents.
func (a *TechnicalAnalyzer) checkRobotsTxt(ctx context.Context, b *resultBuilder, domain string) bool {
	status, body, err := a.fetchText(ctx, "https://"+domain+"/robots.txt")
	if err != nil || status == 0 {
		status = http.StatusNotFound
	}
	if status != http.StatusOK {
		b.addCheck("robots_txt", StatusFail, 0, "robots.txt not found")
		b.addIssue(Issue{
			Type:           "missing_robots_txt",
			Severity:       SeverityMedium,
			Title:          "Missing robots.txt",
			Description:    "The site has no robots.txt file, leaving crawl directives undefined.",
			Recommendation: "Add a robots.txt at the site root that allows crawling and references the XML sitemap.",
			AffectedPages:  1,
		})
		return false
	}

	robots, parseErr := robotstxt.FromStatusAndBytes(status, []byte(body))
	if parseErr == nil && !robots.TestAgent("/", "*") {
		b.addCheck("robots_txt", StatusFail, 0, "robots.txt disallows all crawling")
		b.addIssue(Issue{
			Type:           "robots_blocking_all",
			Severity:       SeverityCritical,
			Title:          "robots.txt blocks all crawlers",
			Description:    "robots.txt contains a site-wide Disallow rule, preventing search engines from indexing any page.",
			Recommendation: "Remove the \"Disallow: /\" rule so search engines can crawl the site.",
			AffectedPages:  1,
		})
		return true
	}

	if strings.Contains(strings.ToLower(body), "sitemap:") {
		b.addCheck("robots_txt", StatusPass, 100, "robots.txt found with sitemap reference")
	} else {
		b.addCheck("robots_txt", StatusWarning, 70, "robots.txt found but does not reference a sitemap")
	}
	return false
}

func (a *TechnicalAnalyzer) checkSSL(ctx context.Context, b *resultBuilder, domain string) {
	status, _, err := a.fetchText(ctx, "https://"+domain+"/")
	if err != nil || status == 0 {
		b.addCheck("ssl", StatusFail, 0, "https request failed")
		b.addIssue(Issue{
			Type:           "no_ssl",
			Severity:       SeverityCritical,
			Title:          "Site not reachable over HTTPS",
			Description:    "The homepage could not be fetched over HTTPS. Unencrypted sites rank lower and browsers flag them as not secure.",
			Recommendation: "Install a valid TLS certificate and redirect all HTTP traffic to HTTPS.",
			AffectedPages:  1,
		})
		return
	}
	b.addCheck("ssl", StatusPass, 100, "site reachable over https")
}

func (a *TechnicalAnalyzer) checkViewport(b *resultBuilder, pages []crawler.CrawledPage) {
	var with int
	var missing []IssueExample
	for _, p := range pages {
		if p.HasViewport {
			with++
		} else {
			missing = append(missing, IssueExample{URL: p.URL})
		}
	}
	score := ratioScore(with, len(pages))
	if len(missing) == 0 {
		b.addCheck("mobile_friendly", StatusPass, score, "all pages declare a responsive viewport")
		return
	}
	status := StatusWarning
	severity := SeverityMedium
	if score < 50 {
		status = StatusFail
		severity = SeverityHigh
	}
	b.addCheck("mobile_friendly", status, score,
		fmt.Sprintf("%d of %d pages declare a responsive viewport", with, len(pages)))
	b.addIssue(Issue{
		Type:           "missing_viewport_meta",
		Severity:       severity,
		Title:          "Pages missing a responsive viewport meta tag",
		Description:    fmt.Sprintf("%d pages lack a viewport meta tag with width=device-width, hurting mobile usability signals.", len(missing)),
		Recommendation: "Add <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"> to every page.",
		AffectedPages:  len(missing),
		Examples:       missing,
	})
}

func (a *TechnicalAnalyzer) checkSchemaMarkup(b *resultBuilder, pages []crawler.CrawledPage) {
	var with int
	for _, p := range pages {
		if p.HasSchema {
			with++
		}
	}
	score := ratioScore(with, len(pages))
	if with == 0 && len(pages) > 0 {
		b.addCheck("schema_markup", StatusFail, 0, "no structured data found on any page")
		b.addIssue(Issue{
			Type:           "missing_schema_markup",
			Severity:       SeverityLow,
			Title:          "No structured data markup",
			Description:    "No JSON-LD or microdata structured data was found, so the site is not eligible for rich results.",
			Recommendation: "Add JSON-LD structured data (Organization, WebSite, and page-type schemas) to key pages.",
			AffectedPages:  len(pages),
		})
		return
	}
	status := StatusPass
	if score < 50 {
		status = StatusWarning
	}
	b.addCheck("schema_markup", status, score,
		fmt.Sprintf("%d of %d pages carry structured data", with, len(pages)))
}

func (a *TechnicalAnalyzer) checkCanonical(b *resultBuilder, pages []crawler.CrawledPage, domain string) {
	var good int
	var missing []IssueExample
	for _, p := range pages {
		if p.Canonical == "" {
			missing = append(missing, IssueExample{URL: p.URL})
			continue
		}
		// A canonical pointing off-domain is as bad as a missing one.
		if urlutil.SameDomain(p.Canonical, domain) || strings.HasPrefix(p.Canonical, "/") {
			good++
		} else {
			missing = append(missing, IssueExample{URL: p.URL, Current: p.Canonical})
		}
	}
	score := ratioScore(good, len(pages))
	if len(missing) == 0 {
		b.addCheck("canonical", StatusPass, score, "all pages declare a valid canonical")
		return
	}
	b.addCheck("canonical", StatusWarning, score,
		fmt.Sprintf("%d of %d pages declare a valid canonical", good, len(pages)))
	b.addIssue(Issue{
		Type:           "missing_canonical_tags",
		Severity:       SeverityLow,
		Title:          "Pages without a valid canonical tag",
		Description:    fmt.Sprintf("%d pages are missing a canonical link or point it at another domain, risking duplicate-content dilution.", len(missing)),
		Recommendation: "Add a self-referencing <link rel=\"canonical\"> to every indexable page.",
		AffectedPages:  len(missing),
		Examples:       missing,
	})
}

func (a *TechnicalAnalyzer) checkURLConsistency(b *resultBuilder, pages []crawler.CrawledPage) {
	var withSlash, withoutSlash int
	for _, p := range pages {
		if p.Path == "/" || p.Path == "" {
			continue
		}
		if strings.HasSuffix(p.Path, "/") {
			withSlash++
		} else {
			withoutSlash++
		}
	}
	if withSlash > 0 && withoutSlash > 0 {
		minority := withSlash
		if withoutSlash < withSlash {
			minority = withoutSlash
		}
		b.addCheck("url_consistency", StatusWarning, 50,
			fmt.Sprintf("mixed trailing-slash usage: %d with, %d without", withSlash, withoutSlash))
		b.addIssue(Issue{
			Type:           "inconsistent_url_patterns",
			Severity:       SeverityLow,
			Title:          "Inconsistent trailing-slash URL style",
			Description:    "The site mixes URLs with and without trailing slashes, which can split link equity across duplicate paths.",
			Recommendation: "Pick one trailing-slash convention and 301-redirect the other form to it.",
			AffectedPages:  minority,
		})
		return
	}
	b.addCheck("url_consistency", StatusPass, 100, "trailing-slash usage is consistent")
}

// fetchText GETs a small text resource, tolerating any response status.
// Transport errors are returned for the caller to degrade on.
func (a *TechnicalAnalyzer) fetchText(ctx context.Context, rawURL string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		a.log.WithError(err).WithField("url", rawURL).Debug("technical check fetch failed")
		return 0, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

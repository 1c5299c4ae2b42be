package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/seo-audit/backend/crawler"
	"github.com/seo-audit/backend/urlutil"
)

var authorityWeights = map[string]float64{
	"branding":           20,
	"social_links":       20,
	"contact_info":       20,
	"about_page":         15,
	"outbound_authority": 15,
	"blog_freshness":     10,
}

var socialDomains = []string{
	"facebook.com", "twitter.com", "x.com", "linkedin.com",
	"instagram.com", "youtube.com", "tiktok.com",
}

// AuthorityAnalyzer scores trust and expertise signals: consistent
// branding, social presence, contact and about pages, outbound links and
// a maintained blog.
type AuthorityAnalyzer struct {
	log *logrus.Logger
}

func NewAuthorityAnalyzer(log *logrus.Logger) *AuthorityAnalyzer {
	return &AuthorityAnalyzer{log: log}
}

func (a *AuthorityAnalyzer) Analyze(_ context.Context, auditID, domain string, pages []crawler.CrawledPage) (CategoryResult, error) {
	b := newResultBuilder(auditID, CategoryAuthority, WeightAuthority)
	ok := successfulPages(pages)

	a.checkBranding(b, ok, domain)
	a.checkSocialLinks(b, ok)
	a.checkContactInfo(b, ok)
	a.checkAboutPage(b, ok)
	a.checkOutboundAuthority(b, ok)
	a.checkBlog(b, ok)

	return b.build(b.weightedScore(authorityWeights)), nil
}

func (a *AuthorityAnalyzer) checkBranding(b *resultBuilder, pages []crawler.CrawledPage, domain string) {
	brand := strings.ToLower(urlutil.BrandName(domain))
	if brand == "" || len(pages) == 0 {
		b.addCheck("branding", StatusInfo, 100, "brand name could not be derived")
		return
	}
	branded := 0
	for _, p := range pages {
		if strings.Contains(strings.ToLower(p.Title), brand) {
			branded++
		}
	}
	score := ratioScore(branded, len(pages))
	status := StatusPass
	if branded*2 < len(pages) {
		status = StatusWarning
		b.addIssue(Issue{
			Type:           "low_authority_signals",
			Severity:       SeverityLow,
			Title:          "Inconsistent brand usage in titles",
			Description:    fmt.Sprintf("Only %d of %d page titles mention the brand, weakening brand-query association.", branded, len(pages)),
			Recommendation: "Append a consistent brand suffix to page titles.",
			AffectedPages:  len(pages) - branded,
		})
	}
	b.addCheck("branding", status, score,
		fmt.Sprintf("%d of %d titles carry the brand name", branded, len(pages)))
}

func (a *AuthorityAnalyzer) checkSocialLinks(b *resultBuilder, pages []crawler.CrawledPage) {
	found := map[string]bool{}
	for _, p := range pages {
		html := strings.ToLower(p.RawHTML)
		for _, d := range socialDomains {
			if strings.Contains(html, d) {
				found[d] = true
			}
		}
	}
	if len(found) > 0 {
		b.addCheck("social_links", StatusPass, 100,
			fmt.Sprintf("links to %d social platforms found", len(found)))
		return
	}
	b.addCheck("social_links", StatusFail, 0, "no social profile links found")
	b.addIssue(Issue{
		Type:           "missing_social_profiles",
		Severity:       SeverityLow,
		Title:          "No social profile links",
		Description:    "No links to social media profiles were found anywhere in the crawl. Social presence is a trust signal.",
		Recommendation: "Link the site to its social profiles, typically in the footer.",
		AffectedPages:  len(pages),
	})
}

func (a *AuthorityAnalyzer) checkContactInfo(b *resultBuilder, pages []crawler.CrawledPage) {
	found := false
	for _, p := range pages {
		lowerPath := strings.ToLower(p.Path)
		if strings.Contains(lowerPath, "contact") {
			found = true
			break
		}
		html := strings.ToLower(p.RawHTML)
		if strings.Contains(html, "mailto:") || strings.Contains(html, "tel:") {
			found = true
			break
		}
	}
	if found {
		b.addCheck("contact_info", StatusPass, 100, "contact information found")
		return
	}
	b.addCheck("contact_info", StatusFail, 0, "no contact page or contact links found")
	b.addIssue(Issue{
		Type:           "missing_contact_info",
		Severity:       SeverityMedium,
		Title:          "No discoverable contact information",
		Description:    "No contact page, mailto or tel link was found. Reachability is a core trust signal for users and search engines.",
		Recommendation: "Publish a contact page with email, phone and a contact form, linked site-wide.",
		AffectedPages:  len(pages),
	})
}

func (a *AuthorityAnalyzer) checkAboutPage(b *resultBuilder, pages []crawler.CrawledPage) {
	for _, p := range pages {
		lowerPath := strings.ToLower(p.Path)
		if strings.Contains(lowerPath, "about") || strings.Contains(lowerPath, "team") || strings.Contains(lowerPath, "company") {
			b.addCheck("about_page", StatusPass, 100, "about page found at "+p.Path)
			return
		}
	}
	b.addCheck("about_page", StatusFail, 0, "no about page found")
	b.addIssue(Issue{
		Type:           "missing_about_page",
		Severity:       SeverityLow,
		Title:          "No about page",
		Description:    "No about, team or company page was found in the crawl. An about page establishes who stands behind the content.",
		Recommendation: "Add an about page describing the organization and the people behind it.",
		AffectedPages:  1,
	})
}

func (a *AuthorityAnalyzer) checkOutboundAuthority(b *resultBuilder, pages []crawler.CrawledPage) {
	external := 0
	for _, p := range pages {
		external += p.ExternalLinks
	}
	if external > 0 {
		b.addCheck("outbound_authority", StatusPass, 100,
			fmt.Sprintf("%d outbound links found", external))
		return
	}
	b.addCheck("outbound_authority", StatusWarning, 0, "no outbound links found")
	b.addIssue(Issue{
		Type:           "no_outbound_links",
		Severity:       SeverityLow,
		Title:          "No outbound links",
		Description:    "The crawl found no links to external sites. Citing authoritative sources supports content credibility.",
		Recommendation: "Reference reputable external sources where the content relies on them.",
		AffectedPages:  len(pages),
	})
}

func (a *AuthorityAnalyzer) checkBlog(b *resultBuilder, pages []crawler.CrawledPage) {
	for _, p := range pages {
		lowerPath := strings.ToLower(p.Path)
		if strings.Contains(lowerPath, "/blog") || strings.Contains(lowerPath, "/news") || strings.Contains(lowerPath, "/articles") {
			b.addCheck("blog_freshness", StatusPass, 100, "blog or news section found")
			return
		}
	}
	b.addCheck("blog_freshness", StatusWarning, 0, "no blog or news section found")
	b.addIssue(Issue{
		Type:           "content_strategy",
		Severity:       SeverityLow,
		Title:          "No blog or news section",
		Description:    "No regularly updated content section was found. Fresh content sustains topical authority over time.",
		Recommendation: "Maintain a blog or news section publishing on the site's core topics.",
		AffectedPages:  1,
	})
}

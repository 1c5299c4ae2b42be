package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/seo-audit/backend/crawler"
)

var contentWeights = map[string]float64{
	"thin_content":            35,
	"keyword_cannibalization": 20,
	"readability":             20,
	"faq_presence":            10,
	"multimedia":              15,
}

const (
	thinContentWords = 300

	// A title word longer than this recurring across enough pages signals
	// multiple pages competing for the same query.
	cannibalMinWordLen = 4
	cannibalMinPages   = 3
	longTitleWordCount = 15
)

// ContentAnalyzer scores the quality and differentiation of the site's
// content across the crawled page set.
type ContentAnalyzer struct {
	log *logrus.Logger
}

func NewContentAnalyzer(log *logrus.Logger) *ContentAnalyzer {
	return &ContentAnalyzer{log: log}
}

func (a *ContentAnalyzer) Analyze(_ context.Context, auditID, domain string, pages []crawler.CrawledPage) (CategoryResult, error) {
	b := newResultBuilder(auditID, CategoryContent, WeightContent)
	ok := successfulPages(pages)

	a.checkThinContent(b, ok)
	a.checkCannibalization(b, ok)
	a.checkReadability(b, ok)
	a.checkFAQ(b, ok)
	a.checkMultimedia(b, ok)

	return b.build(b.weightedScore(contentWeights)), nil
}

func (a *ContentAnalyzer) checkThinContent(b *resultBuilder, pages []crawler.CrawledPage) {
	var thin []IssueExample
	good := 0
	for _, p := range pages {
		if p.WordCount < thinContentWords {
			thin = append(thin, IssueExample{URL: p.URL, Current: fmt.Sprintf("%d words", p.WordCount)})
		} else {
			good++
		}
	}

	score := ratioScore(good, len(pages))
	status := StatusPass
	if score < 100 {
		status = StatusWarning
	}
	if score < 50 {
		status = StatusFail
	}
	b.addCheck("thin_content", status, score,
		fmt.Sprintf("%d of %d pages exceed %d words", good, len(pages), thinContentWords))

	if len(thin) > 0 {
		severity := SeverityMedium
		if len(thin)*2 > len(pages) {
			severity = SeverityHigh
		}
		b.addIssue(Issue{
			Type:           "thin_content",
			Severity:       severity,
			Title:          "Thin content pages",
			Description:    fmt.Sprintf("%d pages have fewer than %d words, which search engines treat as low-value content.", len(thin), thinContentWords),
			Recommendation: "Expand thin pages with substantive content, or consolidate and redirect them.",
			AffectedPages:  len(thin),
			Examples:       thin,
		})
	}
}

func (a *ContentAnalyzer) checkCannibalization(b *resultBuilder, pages []crawler.CrawledPage) {
	wordPages := map[string]map[string]bool{}
	for _, p := range pages {
		for _, word := range strings.Fields(strings.ToLower(p.Title)) {
			word = strings.Trim(word, ".,:;!?()[]\"'")
			if len(word) <= cannibalMinWordLen {
				continue
			}
			if wordPages[word] == nil {
				wordPages[word] = map[string]bool{}
			}
			wordPages[word][p.URL] = true
		}
	}

	var overlapping []string
	affected := map[string]bool{}
	for word, urls := range wordPages {
		if len(urls) >= cannibalMinPages {
			overlapping = append(overlapping, word)
			for u := range urls {
				affected[u] = true
			}
		}
	}
	sort.Strings(overlapping)

	if len(overlapping) == 0 {
		b.addCheck("keyword_cannibalization", StatusPass, 100, "no recurring title keywords across pages")
		return
	}

	var examples []IssueExample
	for _, word := range overlapping {
		examples = append(examples, IssueExample{Current: word})
	}
	b.addCheck("keyword_cannibalization", StatusWarning, 40,
		fmt.Sprintf("%d keywords recur across %d+ page titles", len(overlapping), cannibalMinPages))
	b.addIssue(Issue{
		Type:           "keyword_cannibalization",
		Severity:       SeverityMedium,
		Title:          "Potential keyword cannibalization",
		Description:    fmt.Sprintf("%d title keywords appear on %d or more pages, so those pages may compete against each other in rankings.", len(overlapping), cannibalMinPages),
		Recommendation: "Consolidate overlapping pages or re-target each page at a distinct query.",
		AffectedPages:  len(affected),
		Examples:       examples,
	})
}

func (a *ContentAnalyzer) checkReadability(b *resultBuilder, pages []crawler.CrawledPage) {
	var wordy []IssueExample
	good := 0
	for _, p := range pages {
		if len(strings.Fields(p.Title)) > longTitleWordCount {
			wordy = append(wordy, IssueExample{URL: p.URL, Current: p.Title})
		} else {
			good++
		}
	}

	score := ratioScore(good, len(pages))
	status := StatusPass
	if score < 100 {
		status = StatusWarning
	}
	b.addCheck("readability", status, score,
		fmt.Sprintf("%d of %d pages have concise titles", good, len(pages)))

	if len(wordy) > 0 {
		b.addIssue(Issue{
			Type:           "poor_readability",
			Severity:       SeverityLow,
			Title:          "Overlong, hard-to-scan titles",
			Description:    fmt.Sprintf("%d pages have titles over %d words, a proxy for unfocused page copy.", len(wordy), longTitleWordCount),
			Recommendation: "Tighten titles and page copy around one clear topic per page.",
			AffectedPages:  len(wordy),
			Examples:       wordy,
		})
	}
}

func (a *ContentAnalyzer) checkFAQ(b *resultBuilder, pages []crawler.CrawledPage) {
	found := false
	for _, p := range pages {
		for _, t := range p.SchemaTypes {
			if strings.EqualFold(t, "FAQPage") {
				found = true
			}
		}
		for _, h := range append(append([]string{}, p.H2...), p.H3...) {
			lower := strings.ToLower(h)
			if strings.Contains(lower, "faq") || strings.Contains(lower, "frequently asked") || strings.HasSuffix(strings.TrimSpace(lower), "?") {
				found = true
			}
		}
	}

	if found {
		b.addCheck("faq_presence", StatusPass, 100, "FAQ content detected")
		return
	}
	b.addCheck("faq_presence", StatusFail, 0, "no FAQ content detected")
	b.addIssue(Issue{
		Type:           "missing_faq_content",
		Severity:       SeverityLow,
		Title:          "No FAQ content",
		Description:    "No FAQ schema or question-style headings were found. FAQ content captures long-tail and voice queries.",
		Recommendation: "Add an FAQ section answering common customer questions, marked up with FAQPage schema.",
		AffectedPages:  len(pages),
	})
}

func (a *ContentAnalyzer) checkMultimedia(b *resultBuilder, pages []crawler.CrawledPage) {
	withImages := 0
	for _, p := range pages {
		if p.ImageCount > 0 {
			withImages++
		}
	}

	score := ratioScore(withImages, len(pages))
	status := StatusPass
	if score < 100 {
		status = StatusWarning
	}
	if score < 50 {
		status = StatusFail
	}
	b.addCheck("multimedia", status, score,
		fmt.Sprintf("%d of %d pages include images", withImages, len(pages)))

	if len(pages) > 0 && withImages*2 < len(pages) {
		b.addIssue(Issue{
			Type:           "low_multimedia_usage",
			Severity:       SeverityLow,
			Title:          "Pages light on multimedia",
			Description:    fmt.Sprintf("Only %d of %d pages include images. Visual content improves engagement and dwell time.", withImages, len(pages)),
			Recommendation: "Add relevant images, diagrams or video to text-only pages.",
			AffectedPages:  len(pages) - withImages,
		})
	}
}

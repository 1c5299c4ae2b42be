package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/seo-audit/backend/crawler"
	"github.com/seo-audit/backend/urlutil"
)

var onPageWeights = map[string]float64{
	"title_tags":        25,
	"meta_descriptions": 20,
	"heading_structure": 20,
	"heading_hierarchy": 5,
	"url_structure":     10,
	"image_alt":         10,
	"internal_linking":  10,
}

const (
	titleMinLen    = 30
	titleMaxLen    = 60
	metaDescMinLen = 120
	metaDescMaxLen = 160
	// Pages with at least this many words are held to the content-page
	// standards for subheadings and internal links.
	contentPageWords = 300
	minInternalLinks = 3
	maxURLLen        = 100
	deepPathSegments = 4
)

// OnPageAnalyzer checks per-page markup quality: titles, descriptions,
// headings, URLs, alt text and internal linking. Every fixable finding
// carries a deterministic current -> suggested pair for downstream
// remediation tooling.
type OnPageAnalyzer struct {
	log *logrus.Logger
}

func NewOnPageAnalyzer(log *logrus.Logger) *OnPageAnalyzer {
	return &OnPageAnalyzer{log: log}
}

func (a *OnPageAnalyzer) Analyze(_ context.Context, auditID, domain string, pages []crawler.CrawledPage) (CategoryResult, error) {
	b := newResultBuilder(auditID, CategoryOnPage, WeightOnPage)
	ok := successfulPages(pages)

	a.checkTitles(b, ok, domain)
	a.checkMetaDescriptions(b, ok, domain)
	a.checkHeadingStructure(b, ok)
	a.checkHeadingHierarchy(b, ok)
	a.checkURLStructure(b, ok)
	a.checkImageAlt(b, ok)
	a.checkInternalLinking(b, ok)

	return b.build(b.weightedScore(onPageWeights)), nil
}

func (a *OnPageAnalyzer) checkTitles(b *resultBuilder, pages []crawler.CrawledPage, domain string) {
	var missing, short, long []IssueExample
	byTitle := map[string][]string{}
	good := 0

	for _, p := range pages {
		switch {
		case p.Title == "":
			missing = append(missing, IssueExample{URL: p.URL, Suggested: SuggestTitle(p, domain)})
		case p.TitleLength < titleMinLen:
			short = append(short, IssueExample{URL: p.URL, Current: p.Title, Suggested: SuggestTitle(p, domain)})
		case p.TitleLength > titleMaxLen:
			long = append(long, IssueExample{URL: p.URL, Current: p.Title, Suggested: SuggestTitle(p, domain)})
		default:
			good++
		}
		if p.Title != "" {
			byTitle[p.Title] = append(byTitle[p.Title], p.URL)
		}
	}

	var dupPages int
	var dupExamples []IssueExample
	for title, urls := range byTitle {
		if len(urls) > 1 {
			dupPages += len(urls)
			dupExamples = append(dupExamples, IssueExample{URL: urls[0], Current: title})
			good -= len(urls) // duplicated titles are not good titles
		}
	}
	if good < 0 {
		good = 0
	}
	sort.Slice(dupExamples, func(i, j int) bool { return dupExamples[i].URL < dupExamples[j].URL })

	score := ratioScore(good, len(pages))
	status := StatusPass
	if score < 100 {
		status = StatusWarning
	}
	if score < 50 {
		status = StatusFail
	}
	b.addCheck("title_tags", status, score,
		fmt.Sprintf("%d of %d pages have healthy unique titles", good, len(pages)))

	if len(missing) > 0 {
		b.addIssue(Issue{
			Type:           "missing_title_tags",
			Severity:       SeverityHigh,
			Title:          "Pages without a title tag",
			Description:    fmt.Sprintf("%d pages have no <title> element. The title is the strongest on-page relevance signal.", len(missing)),
			Recommendation: "Write a unique 30-60 character title for each page describing its content.",
			AffectedPages:  len(missing),
			Examples:       missing,
		})
	}
	if len(short) > 0 {
		b.addIssue(Issue{
			Type:           "short_titles",
			Severity:       SeverityLow,
			Title:          "Title tags shorter than 30 characters",
			Description:    fmt.Sprintf("%d pages have titles too short to use their full SERP real estate.", len(short)),
			Recommendation: "Expand short titles toward the 30-60 character range, leading with the page topic.",
			AffectedPages:  len(short),
			Examples:       short,
		})
	}
	if len(long) > 0 {
		b.addIssue(Issue{
			Type:           "long_titles",
			Severity:       SeverityLow,
			Title:          "Title tags longer than 60 characters",
			Description:    fmt.Sprintf("%d pages have titles that search engines will truncate in results.", len(long)),
			Recommendation: "Shorten long titles to at most 60 characters, keeping the primary keyword first.",
			AffectedPages:  len(long),
			Examples:       long,
		})
	}
	if dupPages > 0 {
		b.addIssue(Issue{
			Type:           "duplicate_title_tags",
			Severity:       SeverityHigh,
			Title:          "Duplicate title tags",
			Description:    fmt.Sprintf("%d pages share a title with at least one other page, so they compete for the same queries.", dupPages),
			Recommendation: "Differentiate each duplicated title so every page targets a distinct topic.",
			AffectedPages:  dupPages,
			Examples:       dupExamples,
		})
	}
}

func (a *OnPageAnalyzer) checkMetaDescriptions(b *resultBuilder, pages []crawler.CrawledPage, domain string) {
	var missing, short, long []IssueExample
	byDesc := map[string][]string{}
	good := 0

	for _, p := range pages {
		switch {
		case p.MetaDescription == "":
			missing = append(missing, IssueExample{URL: p.URL, Suggested: SuggestMetaDescription(p, domain)})
		case p.MetaDescLength < metaDescMinLen:
			short = append(short, IssueExample{URL: p.URL, Current: p.MetaDescription, Suggested: SuggestMetaDescription(p, domain)})
		case p.MetaDescLength > metaDescMaxLen:
			long = append(long, IssueExample{URL: p.URL, Current: p.MetaDescription, Suggested: SuggestMetaDescription(p, domain)})
		default:
			good++
		}
		if p.MetaDescription != "" {
			byDesc[p.MetaDescription] = append(byDesc[p.MetaDescription], p.URL)
		}
	}

	var dupPages int
	var dupExamples []IssueExample
	for desc, urls := range byDesc {
		if len(urls) > 1 {
			dupPages += len(urls)
			dupExamples = append(dupExamples, IssueExample{URL: urls[0], Current: desc})
			good -= len(urls)
		}
	}
	if good < 0 {
		good = 0
	}

	score := ratioScore(good, len(pages))
	status := StatusPass
	if score < 100 {
		status = StatusWarning
	}
	if score < 50 {
		status = StatusFail
	}
	b.addCheck("meta_descriptions", status, score,
		fmt.Sprintf("%d of %d pages have healthy unique meta descriptions", good, len(pages)))

	if len(missing) > 0 {
		b.addIssue(Issue{
			Type:           "missing_meta_descriptions",
			Severity:       SeverityMedium,
			Title:          "Pages without a meta description",
			Description:    fmt.Sprintf("%d pages have no meta description, so search engines pick their own snippet.", len(missing)),
			Recommendation: "Write a unique 120-160 character meta description for each page.",
			AffectedPages:  len(missing),
			Examples:       missing,
		})
	}
	if len(short) > 0 {
		b.addIssue(Issue{
			Type:           "short_meta_descriptions",
			Severity:       SeverityLow,
			Title:          "Meta descriptions shorter than 120 characters",
			Description:    fmt.Sprintf("%d pages have meta descriptions too short to make a compelling snippet.", len(short)),
			Recommendation: "Expand short descriptions toward 120-160 characters with a clear value proposition.",
			AffectedPages:  len(short),
			Examples:       short,
		})
	}
	if len(long) > 0 {
		b.addIssue(Issue{
			Type:           "long_meta_descriptions",
			Severity:       SeverityLow,
			Title:          "Meta descriptions longer than 160 characters",
			Description:    fmt.Sprintf("%d pages have meta descriptions that will be truncated in results.", len(long)),
			Recommendation: "Trim long descriptions to at most 160 characters.",
			AffectedPages:  len(long),
			Examples:       long,
		})
	}
	if dupPages > 0 {
		b.addIssue(Issue{
			Type:           "duplicate_meta_descriptions",
			Severity:       SeverityMedium,
			Title:          "Duplicate meta descriptions",
			Description:    fmt.Sprintf("%d pages share a meta description with at least one other page.", dupPages),
			Recommendation: "Give every page a description specific to its content.",
			AffectedPages:  dupPages,
			Examples:       dupExamples,
		})
	}
}

func (a *OnPageAnalyzer) checkHeadingStructure(b *resultBuilder, pages []crawler.CrawledPage) {
	var missing, multiple []IssueExample
	good := 0
	for _, p := range pages {
		switch {
		case len(p.H1) == 0:
			missing = append(missing, IssueExample{URL: p.URL})
		case len(p.H1) > 1:
			multiple = append(multiple, IssueExample{URL: p.URL, Current: fmt.Sprintf("%d H1 headings", len(p.H1))})
		default:
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
	b.addCheck("heading_structure", status, score,
		fmt.Sprintf("%d of %d pages have exactly one H1", good, len(pages)))

	if len(missing) > 0 {
		b.addIssue(Issue{
			Type:           "missing_h1",
			Severity:       SeverityHigh,
			Title:          "Pages without an H1 heading",
			Description:    fmt.Sprintf("%d pages have no H1, leaving the main topic signal undefined.", len(missing)),
			Recommendation: "Add exactly one H1 per page describing its primary topic.",
			AffectedPages:  len(missing),
			Examples:       missing,
		})
	}
	if len(multiple) > 0 {
		b.addIssue(Issue{
			Type:           "multiple_h1",
			Severity:       SeverityMedium,
			Title:          "Pages with multiple H1 headings",
			Description:    fmt.Sprintf("%d pages have more than one H1, diluting the topical focus.", len(multiple)),
			Recommendation: "Keep a single H1 and demote the rest to H2.",
			AffectedPages:  len(multiple),
			Examples:       multiple,
		})
	}
}

func (a *OnPageAnalyzer) checkHeadingHierarchy(b *resultBuilder, pages []crawler.CrawledPage) {
	var flat, skipped []IssueExample
	good := 0
	for _, p := range pages {
		switch {
		case p.WordCount >= contentPageWords && len(p.H2) == 0:
			flat = append(flat, IssueExample{URL: p.URL})
		case len(p.H3) > 0 && len(p.H2) == 0:
			skipped = append(skipped, IssueExample{URL: p.URL})
		default:
			good++
		}
	}

	score := ratioScore(good, len(pages))
	status := StatusPass
	if score < 100 {
		status = StatusWarning
	}
	b.addCheck("heading_hierarchy", status, score,
		fmt.Sprintf("%d of %d pages have a sound heading hierarchy", good, len(pages)))

	if len(flat)+len(skipped) > 0 {
		examples := append(flat, skipped...)
		b.addIssue(Issue{
			Type:           "improper_heading_hierarchy",
			Severity:       SeverityLow,
			Title:          "Weak heading hierarchy",
			Description:    fmt.Sprintf("%d long pages lack H2 subheadings or use H3 without any H2.", len(examples)),
			Recommendation: "Break long content into H2 sections and never skip heading levels.",
			AffectedPages:  len(examples),
			Examples:       examples,
		})
	}
}

func (a *OnPageAnalyzer) checkURLStructure(b *resultBuilder, pages []crawler.CrawledPage) {
	var bad []IssueExample
	good := 0
	for _, p := range pages {
		problems := urlProblems(p.URL)
		if len(problems) == 0 {
			good++
			continue
		}
		bad = append(bad, IssueExample{URL: p.URL, Current: strings.Join(problems, ", ")})
	}

	score := ratioScore(good, len(pages))
	status := StatusPass
	if score < 100 {
		status = StatusWarning
	}
	b.addCheck("url_structure", status, score,
		fmt.Sprintf("%d of %d pages have clean URLs", good, len(pages)))

	if len(bad) > 0 {
		b.addIssue(Issue{
			Type:           "poor_url_structure",
			Severity:       SeverityLow,
			Title:          "Unfriendly URL structure",
			Description:    fmt.Sprintf("%d pages have long, deeply nested or parameter-heavy URLs.", len(bad)),
			Recommendation: "Prefer short, flat, keyword-rich paths; avoid query parameters on indexable pages.",
			AffectedPages:  len(bad),
			Examples:       bad,
		})
	}
}

func urlProblems(rawURL string) []string {
	var problems []string
	if len(rawURL) > maxURLLen {
		problems = append(problems, "over 100 characters")
	}
	if strings.Contains(rawURL, "?") {
		problems = append(problems, "query parameters")
	}
	if urlutil.PathDepth(rawURL) >= deepPathSegments {
		problems = append(problems, "deeply nested path")
	}
	return problems
}

func (a *OnPageAnalyzer) checkImageAlt(b *resultBuilder, pages []crawler.CrawledPage) {
	var withAlt, total int
	var bad []IssueExample
	for _, p := range pages {
		withAlt += p.ImagesWithAlt
		total += p.ImageCount
		if p.ImageCount > p.ImagesWithAlt {
			bad = append(bad, IssueExample{
				URL:     p.URL,
				Current: fmt.Sprintf("%d of %d images missing alt text", p.ImageCount-p.ImagesWithAlt, p.ImageCount),
			})
		}
	}

	score := ratioScore(withAlt, total)
	status := StatusPass
	if score < 100 {
		status = StatusWarning
	}
	if score < 50 {
		status = StatusFail
	}
	b.addCheck("image_alt", status, score,
		fmt.Sprintf("%d of %d images have alt text", withAlt, total))

	if len(bad) > 0 {
		b.addIssue(Issue{
			Type:           "missing_alt_text",
			Severity:       SeverityMedium,
			Title:          "Images without alt text",
			Description:    fmt.Sprintf("%d images across %d pages are missing alt attributes, hurting accessibility and image search.", total-withAlt, len(bad)),
			Recommendation: "Add descriptive alt text to every meaningful image.",
			AffectedPages:  len(bad),
			Examples:       bad,
		})
	}
}

func (a *OnPageAnalyzer) checkInternalLinking(b *resultBuilder, pages []crawler.CrawledPage) {
	var weak []IssueExample
	contentPages := 0
	good := 0
	for _, p := range pages {
		if p.WordCount < contentPageWords {
			continue
		}
		contentPages++
		if p.InternalLinks < minInternalLinks {
			weak = append(weak, IssueExample{
				URL:     p.URL,
				Current: fmt.Sprintf("%d internal links", p.InternalLinks),
			})
		} else {
			good++
		}
	}

	score := ratioScore(good, contentPages)
	status := StatusPass
	if score < 100 {
		status = StatusWarning
	}
	b.addCheck("internal_linking", status, score,
		fmt.Sprintf("%d of %d content pages link out internally", good, contentPages))

	if len(weak) > 0 {
		b.addIssue(Issue{
			Type:           "weak_internal_linking",
			Severity:       SeverityMedium,
			Title:          "Content pages with too few internal links",
			Description:    fmt.Sprintf("%d content-rich pages have fewer than %d internal links, isolating them from the rest of the site.", len(weak), minInternalLinks),
			Recommendation: "Link related pages together with descriptive anchor text.",
			AffectedPages:  len(weak),
			Examples:       weak,
		})
	}
}

package analyzer

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/seo-audit/backend/crawler"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// pageOpt mutates a page under construction in tests.
type pageOpt func(*crawler.CrawledPage)

func testPage(path string, opts ...pageOpt) crawler.CrawledPage {
	p := crawler.CrawledPage{
		URL:             "https://example.com" + path,
		Path:            path,
		StatusCode:      200,
		Title:           "A Perfectly Reasonable Page Title Here",
		TitleLength:     len("A Perfectly Reasonable Page Title Here"),
		MetaDescription: strings.Repeat("Solid descriptive copy. ", 6), // ~144 chars
		H1:              []string{"Main Heading"},
		H2:              []string{"Section"},
		HasViewport:     true,
		Canonical:       "https://example.com" + path,
		WordCount:       500,
		ImageCount:      2,
		ImagesWithAlt:   2,
		InternalLinks:   5,
		ExternalLinks:   1,
		LoadTimeMs:      400,
	}
	p.MetaDescription = strings.TrimSpace(p.MetaDescription)
	p.MetaDescLength = len(p.MetaDescription)
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func withTitle(title string) pageOpt {
	return func(p *crawler.CrawledPage) {
		p.Title = title
		p.TitleLength = len(title)
	}
}

func withMetaDescription(desc string) pageOpt {
	return func(p *crawler.CrawledPage) {
		p.MetaDescription = desc
		p.MetaDescLength = len(desc)
	}
}

func withWordCount(n int) pageOpt {
	return func(p *crawler.CrawledPage) { p.WordCount = n }
}

func withH1(h1 ...string) pageOpt {
	return func(p *crawler.CrawledPage) { p.H1 = h1 }
}

func withBodyText(text string) pageOpt {
	return func(p *crawler.CrawledPage) { p.BodyText = text }
}

func withLoadTime(ms int) pageOpt {
	return func(p *crawler.CrawledPage) { p.LoadTimeMs = ms }
}

func withSchemaTypes(types ...string) pageOpt {
	return func(p *crawler.CrawledPage) {
		p.SchemaTypes = types
		p.HasSchema = len(types) > 0
	}
}

func findIssue(issues []Issue, issueType string) *Issue {
	for i := range issues {
		if issues[i].Type == issueType {
			return &issues[i]
		}
	}
	return nil
}

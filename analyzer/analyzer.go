package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seo-audit/backend/crawler"
	"github.com/seo-audit/backend/pagespeed"
	"github.com/seo-audit/backend/urlutil"
)

// CategoryAnalyzer is the contract every category analyzer satisfies.
// Implementations must treat pages as read-only: all six run in parallel
// over the same slice.
type CategoryAnalyzer interface {
	Analyze(ctx context.Context, auditID, domain string, pages []crawler.CrawledPage) (CategoryResult, error)
}

// Config wires an Orchestrator.
type Config struct {
	Crawl           crawler.Config
	PageSpeedAPIKey string
	CheckTimeout    time.Duration
}

// Orchestrator runs the full audit pipeline: crawl, six category
// analyzers in parallel, aggregate, classify.
type Orchestrator struct {
	crawler   *crawler.Crawler
	analyzers []CategoryAnalyzer
	log       *logrus.Logger
}

// NewOrchestrator builds the pipeline with all six analyzers.
func NewOrchestrator(cfg Config, log *logrus.Logger) *Orchestrator {
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 10 * time.Second
	}
	checkClient := &http.Client{Timeout: cfg.CheckTimeout}
	psi := pagespeed.New(cfg.PageSpeedAPIKey, nil)

	return &Orchestrator{
		crawler: crawler.New(cfg.Crawl, log),
		analyzers: []CategoryAnalyzer{
			NewTechnicalAnalyzer(checkClient, log),
			NewOnPageAnalyzer(log),
			NewContentAnalyzer(log),
			NewPerformanceAnalyzer(psi, log),
			NewAuthorityAnalyzer(log),
			NewLocalAnalyzer(log),
		},
		log: log,
	}
}

// Run executes one audit. Any analyzer error fails the whole audit; there
// is no partial report.
func (o *Orchestrator) Run(ctx context.Context, auditID, rawURL string) (*AuditReport, error) {
	started := time.Now()

	u, err := urlutil.Validate(rawURL)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", auditID, err)
	}
	domain := u.Hostname()

	o.log.WithFields(logrus.Fields{"auditId": auditID, "url": rawURL}).Info("audit started")

	pages, err := o.crawler.Crawl(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", auditID, err)
	}

	results := make([]CategoryResult, len(o.analyzers))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range o.analyzers {
		i, a := i, a
		g.Go(func() error {
			result, analyzeErr := a.Analyze(gctx, auditID, domain, pages)
			if analyzeErr != nil {
				return fmt.Errorf("category analyzer: %w", analyzeErr)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.log.WithError(err).WithField("auditId", auditID).Error("audit failed")
		return nil, fmt.Errorf("audit %s: %w", auditID, err)
	}

	overall, rating := Aggregate(results)

	var issues []Issue
	for _, r := range results {
		issues = append(issues, r.Issues...)
	}
	recs := ClassifyIssues(issues)
	sortRecommendations(recs)

	report := &AuditReport{
		AuditID:         auditID,
		URL:             rawURL,
		Domain:          domain,
		OverallScore:    overall,
		ScoreRating:     rating,
		Categories:      results,
		Recommendations: recs,
		PagesCrawled:    len(pages),
		GeneratedAt:     time.Now().UTC(),
		DurationMs:      time.Since(started).Milliseconds(),
	}

	o.log.WithFields(logrus.Fields{
		"auditId": auditID,
		"score":   overall,
		"rating":  rating,
		"pages":   len(pages),
		"tookMs":  report.DurationMs,
	}).Info("audit finished")
	return report, nil
}

var severityRank = map[string]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// sortRecommendations orders by priority, then by effort (cheapest
// first), keeping emission order as the final tie-break.
func sortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if severityRank[recs[i].Priority] != severityRank[recs[j].Priority] {
			return severityRank[recs[i].Priority] < severityRank[recs[j].Priority]
		}
		return recs[i].EstimatedHours < recs[j].EstimatedHours
	})
}

package analyzer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seo-audit/backend/crawler"
	"github.com/seo-audit/backend/pagespeed"
)

var performanceWeights = map[string]float64{
	"page_speed": 100,
}

const (
	mobileShare  = 0.70
	desktopShare = 0.30

	// Bounds for the latency-only fallback. These are a confidence
	// ceiling and floor, not a measurement: a TTFB proxy must never claim
	// a great or a catastrophic score on its own.
	estimateCap   = 65
	estimateFloor = 20
)

// Confidence tags recorded in the result's checks map.
const (
	ConfidenceMeasured  = "measured"
	ConfidenceEstimated = "estimated"
)

// PerformanceAnalyzer scores page experience. It prefers real PageSpeed
// Insights lab data (mobile and desktop, fetched concurrently); when the
// API is unconfigured or fails it degrades to an estimate derived from
// crawl-time response latency.
type PerformanceAnalyzer struct {
	psi *pagespeed.Client
	log *logrus.Logger
}

func NewPerformanceAnalyzer(psi *pagespeed.Client, log *logrus.Logger) *PerformanceAnalyzer {
	return &PerformanceAnalyzer{psi: psi, log: log}
}

func (a *PerformanceAnalyzer) Analyze(ctx context.Context, auditID, domain string, pages []crawler.CrawledPage) (CategoryResult, error) {
	b := newResultBuilder(auditID, CategoryPerformance, WeightPerformance)

	if a.psi.Enabled() {
		if done := a.analyzeMeasured(ctx, b, domain); done {
			return b.build(b.weightedScore(performanceWeights)), nil
		}
	}

	a.analyzeEstimated(b, successfulPages(pages))
	return b.build(b.weightedScore(performanceWeights)), nil
}

// analyzeMeasured runs both PageSpeed strategies concurrently. It returns
// false when the API yields nothing usable, handing over to the fallback.
func (a *PerformanceAnalyzer) analyzeMeasured(ctx context.Context, b *resultBuilder, domain string) bool {
	target := "https://" + domain + "/"
	var mobile, desktop *pagespeed.Metrics

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := a.psi.Run(gctx, target, pagespeed.StrategyMobile)
		if err != nil {
			return err
		}
		mobile = m
		return nil
	})
	g.Go(func() error {
		m, err := a.psi.Run(gctx, target, pagespeed.StrategyDesktop)
		if err != nil {
			return err
		}
		desktop = m
		return nil
	})
	if err := g.Wait(); err != nil {
		a.log.WithError(err).Warn("pagespeed api failed, falling back to latency estimate")
		return false
	}

	mobileScore, desktopScore := 0, 0
	if mobile != nil {
		mobileScore = mobile.Score
	}
	if desktop != nil {
		desktopScore = desktop.Score
	}

	var score int
	switch {
	case mobileScore > 0 && desktopScore > 0:
		score = clampScore(mobileShare*float64(mobileScore) + desktopShare*float64(desktopScore))
	case mobileScore > 0:
		score = mobileScore
	case desktopScore > 0:
		score = desktopScore
	default:
		a.log.Warn("pagespeed api returned no usable scores, falling back to latency estimate")
		return false
	}

	status := StatusPass
	if score < 70 {
		status = StatusWarning
	}
	if score < 50 {
		status = StatusFail
	}
	b.addCheck("page_speed", status, score,
		fmt.Sprintf("pagespeed mobile=%d desktop=%d", mobileScore, desktopScore))
	b.addCheck("confidence", StatusInfo, 100, ConfidenceMeasured)
	if mobile != nil {
		b.addCheck("core_web_vitals", StatusInfo, 100,
			fmt.Sprintf("LCP=%.0fms CLS=%.3f FCP=%.0fms TTI=%.0fms", mobile.LCPMs, mobile.CLS, mobile.FCPMs, mobile.TTIMs))
	}

	if score < 70 {
		severity := SeverityMedium
		if score < 50 {
			severity = SeverityHigh
		}
		b.addIssue(Issue{
			Type:           "slow_page_speed",
			Severity:       severity,
			Title:          "Slow page experience",
			Description:    fmt.Sprintf("The measured PageSpeed performance score is %d (mobile-weighted). Slow pages lose rankings and visitors.", score),
			Recommendation: "Optimize images, eliminate render-blocking resources and improve server response time.",
			AffectedPages:  1,
		})
	}
	if mobile != nil && mobile.LCPMs > 2500 {
		b.addIssue(Issue{
			Type:           "poor_core_web_vitals",
			Severity:       SeverityMedium,
			Title:          "Largest Contentful Paint over 2.5s",
			Description:    fmt.Sprintf("Mobile LCP is %.1fs, above the 2.5s good threshold.", mobile.LCPMs/1000),
			Recommendation: "Reduce the size of the largest above-the-fold element and preload its resources.",
			AffectedPages:  1,
		})
	}
	return true
}

// analyzeEstimated derives a bounded score from crawl-measured response
// latency. The deduction ladder mirrors the one used for measured load
// times; the result is then clamped into [estimateFloor, estimateCap].
func (a *PerformanceAnalyzer) analyzeEstimated(b *resultBuilder, pages []crawler.CrawledPage) {
	var totalMs, counted int
	for _, p := range pages {
		if p.LoadTimeMs > 0 {
			totalMs += p.LoadTimeMs
			counted++
		}
	}

	avgMs := 0
	if counted > 0 {
		avgMs = totalMs / counted
	}

	score := 100
	switch {
	case avgMs > 3000:
		score -= 40
	case avgMs > 2000:
		score -= 30
	case avgMs > 1500:
		score -= 20
	case avgMs > 1000:
		score -= 10
	}
	if score > estimateCap {
		score = estimateCap
	}
	if score < estimateFloor {
		score = estimateFloor
	}

	status := StatusWarning
	if score < 50 {
		status = StatusFail
	}
	b.addCheck("page_speed", status, score,
		fmt.Sprintf("estimated from average response time of %dms across %d pages", avgMs, counted))
	b.addCheck("confidence", StatusInfo, 100, ConfidenceEstimated)

	if avgMs > 1500 {
		severity := SeverityMedium
		if avgMs > 3000 {
			severity = SeverityHigh
		}
		b.addIssue(Issue{
			Type:           "slow_page_speed",
			Severity:       severity,
			Title:          "Slow server response times",
			Description:    fmt.Sprintf("Average response time across crawled pages was %dms. This estimate is based on server latency only.", avgMs),
			Recommendation: "Improve server response time with caching or a CDN, then re-measure with real lab data.",
			AffectedPages:  counted,
		})
	}
}

// Package analyzer implements the six SEO category analyzers, the score
// aggregator and the recommendation classifier.
package analyzer

import (
	"math"
	"time"
)

// Issue severities, ordered from most to least urgent.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Check statuses recorded in the diagnostics map.
const (
	StatusPass    = "pass"
	StatusWarning = "warning"
	StatusFail    = "fail"
	StatusInfo    = "info"
)

// Category names.
const (
	CategoryTechnical   = "technical"
	CategoryOnPage      = "onpage"
	CategoryContent     = "content"
	CategoryPerformance = "performance"
	CategoryAuthority   = "authority"
	CategoryLocal       = "local"
)

// Category weights in the overall score.
const (
	WeightTechnical   = 0.25
	WeightOnPage      = 0.20
	WeightContent     = 0.20
	WeightPerformance = 0.10
	WeightAuthority   = 0.15
	WeightLocal       = 0.10
)

// IssueExample ties an issue occurrence to a page, optionally with a
// deterministic current -> suggested remediation pair.
type IssueExample struct {
	URL       string `json:"url"`
	Current   string `json:"current,omitempty"`
	Suggested string `json:"suggested,omitempty"`
}

// Issue is one finding emitted by a check. Immutable once emitted.
type Issue struct {
	Type           string         `json:"type"`
	Severity       string         `json:"severity"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Recommendation string         `json:"recommendation"`
	AffectedPages  int            `json:"affectedPages"`
	Examples       []IssueExample `json:"examples,omitempty"`
}

// CheckResult is one named diagnostic entry.
type CheckResult struct {
	Status string `json:"status"`
	Score  int    `json:"score"`
	Detail string `json:"detail,omitempty"`
}

// CategoryResult is the output of one analyzer for one audit.
type CategoryResult struct {
	AuditID        string                 `json:"auditId"`
	Category       string                 `json:"category"`
	Score          int                    `json:"score"`
	Weight         float64                `json:"weight"`
	Rating         string                 `json:"rating"`
	Issues         []Issue                `json:"issues"`
	SeverityCounts map[string]int         `json:"severityCounts"`
	Checks         map[string]CheckResult `json:"checks"`
}

// Recommendation is an Issue classified by priority, effort and phase.
type Recommendation struct {
	IssueType      string `json:"issueType"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Action         string `json:"action"`
	Priority       string `json:"priority"`
	EffortLevel    string `json:"effortLevel"`
	EstimatedHours int    `json:"estimatedHours"`
	Phase          string `json:"phase"`
	ExpectedImpact string `json:"expectedImpact"`
	AffectedPages  int    `json:"affectedPages"`
}

// AuditReport is the aggregate result for one audited site.
type AuditReport struct {
	AuditID         string           `json:"auditId"`
	URL             string           `json:"url"`
	Domain          string           `json:"domain"`
	OverallScore    int              `json:"overallScore"`
	ScoreRating     string           `json:"scoreRating"`
	Categories      []CategoryResult `json:"categories"`
	Recommendations []Recommendation `json:"recommendations"`
	PagesCrawled    int              `json:"pagesCrawled"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	DurationMs      int64            `json:"durationMs"`
}

// ScoreRating buckets a 0-100 score into a rating label.
func ScoreRating(score int) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "needs-improvement"
	default:
		return "poor"
	}
}

// clampScore bounds a raw score to [0,100], rounding to the nearest int.
func clampScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	s := int(math.Round(score))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// ratioScore converts good/total into a 0-100 percentage, 100 when there
// is nothing to measure.
func ratioScore(good, total int) int {
	if total <= 0 {
		return 100
	}
	return clampScore(float64(good) / float64(total) * 100)
}

// boolScore converts a binary found/not-found check into 0 or 100.
func boolScore(ok bool) int {
	if ok {
		return 100
	}
	return 0
}

const maxIssueExamples = 5

// resultBuilder accumulates checks and issues for one analyzer run. It is
// a local value inside each Analyze call, never shared state, so analyzers
// stay safe to run in parallel.
type resultBuilder struct {
	auditID  string
	category string
	weight   float64
	checks   map[string]CheckResult
	issues   []Issue
}

func newResultBuilder(auditID, category string, weight float64) *resultBuilder {
	return &resultBuilder{
		auditID:  auditID,
		category: category,
		weight:   weight,
		checks:   make(map[string]CheckResult),
	}
}

func (b *resultBuilder) addCheck(name, status string, score int, detail string) {
	b.checks[name] = CheckResult{Status: status, Score: clampScore(float64(score)), Detail: detail}
}

func (b *resultBuilder) addIssue(issue Issue) {
	if len(issue.Examples) > maxIssueExamples {
		issue.Examples = issue.Examples[:maxIssueExamples]
	}
	b.issues = append(b.issues, issue)
}

// weightedScore combines check scores using the given per-check weight
// table, normalized by the weights actually present in the checks map.
func (b *resultBuilder) weightedScore(weights map[string]float64) int {
	var sum, totalWeight float64
	for name, w := range weights {
		check, ok := b.checks[name]
		if !ok {
			continue
		}
		sum += float64(check.Score) * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return clampScore(sum / totalWeight)
}

// build finalizes the CategoryResult with the given score.
func (b *resultBuilder) build(score int) CategoryResult {
	counts := map[string]int{
		SeverityCritical: 0,
		SeverityHigh:     0,
		SeverityMedium:   0,
		SeverityLow:      0,
	}
	for _, issue := range b.issues {
		counts[issue.Severity]++
	}
	issues := b.issues
	if issues == nil {
		issues = []Issue{}
	}
	return CategoryResult{
		AuditID:        b.auditID,
		Category:       b.category,
		Score:          clampScore(float64(score)),
		Weight:         b.weight,
		Rating:         ScoreRating(clampScore(float64(score))),
		Issues:         issues,
		SeverityCounts: counts,
		Checks:         b.checks,
	}
}

package analyzer

// Effort levels and remediation phases.
const (
	EffortQuickWin    = "QUICK_WIN"
	EffortModerate    = "MODERATE"
	EffortSubstantial = "SUBSTANTIAL"

	PhaseQuickWins  = "quick-wins"
	PhaseShortTerm  = "short-term"
	PhaseMediumTerm = "medium-term"
)

type effortProfile struct {
	level string
	hours int
	phase string
}

var (
	quickWin    = effortProfile{EffortQuickWin, 1, PhaseQuickWins}
	moderate    = effortProfile{EffortModerate, 3, PhaseShortTerm}
	substantial = effortProfile{EffortSubstantial, 12, PhaseMediumTerm}
)

// effortByIssueType maps issue types to remediation effort. The table
// intentionally includes types emitted by external analyzers (author
// bios, content age and similar expertise signals) so their issues
// classify consistently; anything unknown falls back to moderate.
var effortByIssueType = map[string]effortProfile{
	// Quick wins: single-file or template-level edits.
	"missing_meta_descriptions":   quickWin,
	"short_meta_descriptions":     quickWin,
	"long_meta_descriptions":      quickWin,
	"duplicate_meta_descriptions": quickWin,
	"short_titles":                quickWin,
	"long_titles":                 quickWin,
	"duplicate_title_tags":        quickWin,
	"missing_title_tags":          quickWin,
	"missing_alt_text":            quickWin,
	"missing_h1":                  quickWin,
	"multiple_h1":                 quickWin,
	"missing_viewport_meta":       quickWin,
	"missing_canonical_tags":      quickWin,
	"robots_blocking_all":         quickWin,

	// Substantial: structural or content-production work.
	"thin_content":            substantial,
	"keyword_cannibalization": substantial,
	"slow_page_speed":         substantial,
	"no_ssl":                  substantial,
	"missing_sitemap":         substantial,
	"site_architecture":       substantial,
	"content_strategy":        substantial,
	"low_authority_signals":   substantial,
	"missing_author_bios":     substantial,
	"outdated_content":        substantial,
}

var impactBySeverity = map[string]string{
	SeverityCritical: "Resolving this removes a blocker that is actively suppressing rankings across the site.",
	SeverityHigh:     "Resolving this should produce a clear, measurable improvement in organic visibility.",
	SeverityMedium:   "Resolving this delivers an incremental ranking and user-experience improvement.",
	SeverityLow:      "Resolving this is a polish item with modest but compounding long-term value.",
}

// ClassifyIssues maps every issue to a prioritized, effort-estimated
// recommendation. Priority tracks severity directly; effort and phase
// come from the static lookup with a moderate default.
func ClassifyIssues(issues []Issue) []Recommendation {
	recs := make([]Recommendation, 0, len(issues))
	for _, issue := range issues {
		effort, ok := effortByIssueType[issue.Type]
		if !ok {
			effort = moderate
		}
		impact, ok := impactBySeverity[issue.Severity]
		if !ok {
			impact = impactBySeverity[SeverityLow]
		}
		recs = append(recs, Recommendation{
			IssueType:      issue.Type,
			Title:          issue.Title,
			Description:    issue.Description,
			Action:         issue.Recommendation,
			Priority:       issue.Severity,
			EffortLevel:    effort.level,
			EstimatedHours: effort.hours,
			Phase:          effort.phase,
			ExpectedImpact: impact,
			AffectedPages:  issue.AffectedPages,
		})
	}
	return recs
}

package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-audit/backend/crawler"
)

func auditSite(t *testing.T) *httptest.Server {
	t.Helper()
	page := func(title, body string) string {
		return fmt.Sprintf(`<html><head><title>%s</title>
			<meta name="description" content="Industrial widgets made to order, shipped the same day, with engineering support on every line item we stock.">
			<meta name="viewport" content="width=device-width, initial-scale=1">
			</head><body><h1>%s</h1>%s</body></html>`, title, title, body)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page("Acme Widgets Industrial Catalog Home",
			`<a href="/about">About</a><a href="/contact">Contact</a>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page("About The Acme Widgets Company Team", `<a href="/">Home</a>`))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page("Contact Acme Widgets Sales And Support",
			`<a href="mailto:sales@acme.com">Email</a>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testOrchestrator() *Orchestrator {
	return NewOrchestrator(Config{
		Crawl: crawler.Config{
			MaxPages: 10,
			MaxDepth: 2,
			Delay:    time.Millisecond,
			Timeout:  5 * time.Second,
		},
		CheckTimeout: 2 * time.Second,
	}, testLogger())
}

func TestOrchestratorRun(t *testing.T) {
	server := auditSite(t)

	report, err := testOrchestrator().Run(context.Background(), "audit-42", server.URL)
	require.NoError(t, err)

	assert.Equal(t, "audit-42", report.AuditID)
	assert.Equal(t, server.URL, report.URL)
	assert.Equal(t, 3, report.PagesCrawled)
	assert.Len(t, report.Categories, 6)

	assert.GreaterOrEqual(t, report.OverallScore, 0)
	assert.LessOrEqual(t, report.OverallScore, 100)
	assert.Equal(t, ScoreRating(report.OverallScore), report.ScoreRating)
	assert.False(t, report.GeneratedAt.IsZero())

	seen := map[string]bool{}
	var weightSum float64
	for _, c := range report.Categories {
		seen[c.Category] = true
		weightSum += c.Weight
		assert.GreaterOrEqual(t, c.Score, 0, c.Category)
		assert.LessOrEqual(t, c.Score, 100, c.Category)
	}
	for _, want := range []string{
		CategoryTechnical, CategoryOnPage, CategoryContent,
		CategoryPerformance, CategoryAuthority, CategoryLocal,
	} {
		assert.True(t, seen[want], "missing category %s", want)
	}
	assert.InDelta(t, 1.0, weightSum, 0.0001)

	// Every issue across all categories must surface as a recommendation.
	total := 0
	for _, c := range report.Categories {
		total += len(c.Issues)
	}
	assert.Len(t, report.Recommendations, total)
}

func TestOrchestratorRunInvalidURL(t *testing.T) {
	_, err := testOrchestrator().Run(context.Background(), "audit-42", "not a url")
	assert.Error(t, err)
}

func TestSortRecommendations(t *testing.T) {
	recs := []Recommendation{
		{IssueType: "a", Priority: SeverityLow, EstimatedHours: 1},
		{IssueType: "b", Priority: SeverityCritical, EstimatedHours: 12},
		{IssueType: "c", Priority: SeverityHigh, EstimatedHours: 12},
		{IssueType: "d", Priority: SeverityHigh, EstimatedHours: 1},
		{IssueType: "e", Priority: SeverityHigh, EstimatedHours: 1},
	}
	sortRecommendations(recs)

	var order []string
	for _, r := range recs {
		order = append(order, r.IssueType)
	}
	// Critical first, then high by ascending effort; d before e holds the
	// original emission order.
	assert.Equal(t, []string{"b", "d", "e", "c", "a"}, order)
}

package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/seo-audit/backend/crawler"
)

// Weight tables for the local category. Which one applies is decided once
// per analysis by the business-type classifier and passed explicitly into
// scoring; it is never mutated.
var (
	localBusinessWeights = map[string]float64{
		"nap_presence":    30,
		"nap_consistency": 20,
		"local_schema":    20,
		"location_page":   15,
		"map_embed":       15,
	}
	saasWeights = map[string]float64{
		"nap_presence":     25,
		"local_schema":     25,
		"location_page":    10,
		"digital_presence": 40,
	}
)

// Business types produced by the classifier.
const (
	businessTypeLocal = "local"
	businessTypeSaaS  = "saas"
)

// Keyword sets for the business-type classifier. The two sets are
// disjoint; hits are counted over the homepage title, H1s and meta
// description.
var (
	saasSignalTerms = []string{
		"saas", "software", "platform", "api", "developer", "cloud",
		"app", "startup", "b2b", "subscription", "dashboard", "integration",
	}
	localSignalTerms = []string{
		"near me", "location", "hours", "directions", "visit", "store",
		"shop", "clinic", "restaurant", "salon", "local", "neighborhood", "city",
	}
)

var (
	phoneRe = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}`)
	// Street-address heuristic: house number, street name, street suffix.
	addressRe = regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z0-9'. ]{2,40}\s(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct|Place|Pl|Suite|Ste)\b`)
	digitsRe  = regexp.MustCompile(`\d`)
)

const addressVariantTolerance = 2

// nap holds Name/Address/Phone signals extracted from the crawl.
type nap struct {
	phones    []string // normalized digit strings
	addresses []string // distinct raw matches
}

// LocalAnalyzer scores local-search readiness. For sites that classify as
// digital-first (SaaS) it switches to a weight table that drops the
// physical-presence penalties and scores digital footprint instead.
type LocalAnalyzer struct {
	log *logrus.Logger
}

func NewLocalAnalyzer(log *logrus.Logger) *LocalAnalyzer {
	return &LocalAnalyzer{log: log}
}

func (a *LocalAnalyzer) Analyze(_ context.Context, auditID, domain string, pages []crawler.CrawledPage) (CategoryResult, error) {
	b := newResultBuilder(auditID, CategoryLocal, WeightLocal)
	ok := successfulPages(pages)

	businessType := classifyBusinessType(homepage(ok))
	b.addCheck("business_type", StatusInfo, 100, businessType)

	extracted := extractNAP(ok)
	weights := localBusinessWeights
	if businessType == businessTypeSaaS {
		weights = saasWeights
	}

	a.checkNAPPresence(b, ok, extracted, businessType)
	if businessType == businessTypeLocal {
		a.checkNAPConsistency(b, extracted)
		a.checkMapEmbed(b, ok)
	} else {
		a.checkDigitalPresence(b, ok)
	}
	a.checkLocalSchema(b, ok, businessType)
	a.checkLocationPage(b, ok, businessType)

	return b.build(b.weightedScore(weights)), nil
}

// classifyBusinessType scans the homepage's title, H1s and meta
// description against the two keyword sets. A site is SaaS only when it
// has at least two SaaS hits AND strictly more SaaS than local hits;
// every tie defaults to local.
func classifyBusinessType(home *crawler.CrawledPage) string {
	if home == nil {
		return businessTypeLocal
	}
	text := strings.ToLower(home.Title + " " + strings.Join(home.H1, " ") + " " + home.MetaDescription)

	saasHits, localHits := 0, 0
	for _, term := range saasSignalTerms {
		if strings.Contains(text, term) {
			saasHits++
		}
	}
	for _, term := range localSignalTerms {
		if strings.Contains(text, term) {
			localHits++
		}
	}
	if saasHits >= 2 && saasHits > localHits {
		return businessTypeSaaS
	}
	return businessTypeLocal
}

// extractNAP pulls phone numbers and street addresses out of the crawled
// page text. Phones are normalized to their digits and deduplicated on
// the last 10 digits.
func extractNAP(pages []crawler.CrawledPage) nap {
	var out nap
	phoneSeen := map[string]bool{}
	addrSeen := map[string]bool{}

	for _, p := range pages {
		for _, m := range phoneRe.FindAllString(p.BodyText+" "+p.RawHTML, -1) {
			digits := strings.Join(digitsRe.FindAllString(m, -1), "")
			key := digits
			if len(digits) > 10 {
				key = digits[len(digits)-10:]
			}
			if key != "" && !phoneSeen[key] {
				phoneSeen[key] = true
				out.phones = append(out.phones, key)
			}
		}
		for _, m := range addressRe.FindAllString(p.BodyText, -1) {
			norm := strings.ToLower(strings.Join(strings.Fields(m), " "))
			if !addrSeen[norm] {
				addrSeen[norm] = true
				out.addresses = append(out.addresses, strings.TrimSpace(m))
			}
		}
	}
	return out
}

func (a *LocalAnalyzer) checkNAPPresence(b *resultBuilder, pages []crawler.CrawledPage, extracted nap, businessType string) {
	hasPhone := len(extracted.phones) > 0
	hasAddress := len(extracted.addresses) > 0

	if hasPhone && hasAddress {
		b.addCheck("nap_presence", StatusPass, 100, "phone and address found")
		return
	}

	if businessType == businessTypeSaaS {
		// Digital-first businesses are not penalized for missing
		// physical NAP data.
		b.addCheck("nap_presence", StatusInfo, 100, "physical NAP not expected for a digital-first business")
		return
	}

	score := 0
	missing := "phone and address"
	switch {
	case hasPhone:
		score = 50
		missing = "address"
	case hasAddress:
		score = 50
		missing = "phone number"
	}
	b.addCheck("nap_presence", StatusFail, score, "missing "+missing)
	b.addIssue(Issue{
		Type:           "missing_nap",
		Severity:       SeverityHigh,
		Title:          "Missing business contact details",
		Description:    fmt.Sprintf("No %s was found anywhere in the crawl. Local rankings depend on consistent Name/Address/Phone data.", missing),
		Recommendation: "Publish the business phone number and street address, ideally in the footer of every page.",
		AffectedPages:  len(pages),
	})
}

func (a *LocalAnalyzer) checkNAPConsistency(b *resultBuilder, extracted nap) {
	inconsistent := false
	var details []string
	if len(extracted.phones) > 1 {
		inconsistent = true
		details = append(details, fmt.Sprintf("%d distinct phone numbers", len(extracted.phones)))
	}
	if len(extracted.addresses) > addressVariantTolerance {
		inconsistent = true
		details = append(details, fmt.Sprintf("%d distinct address strings", len(extracted.addresses)))
	}

	if !inconsistent {
		b.addCheck("nap_consistency", StatusPass, 100, "contact details are consistent")
		return
	}
	b.addCheck("nap_consistency", StatusWarning, 40, strings.Join(details, "; "))
	b.addIssue(Issue{
		Type:           "inconsistent_nap",
		Severity:       SeverityMedium,
		Title:          "Inconsistent business contact details",
		Description:    "The site lists conflicting phone numbers or address variants (" + strings.Join(details, "; ") + "). Inconsistent NAP data confuses local search engines.",
		Recommendation: "Standardize on one phone number and one address format everywhere the business is mentioned.",
		AffectedPages:  1,
	})
}

func (a *LocalAnalyzer) checkLocalSchema(b *resultBuilder, pages []crawler.CrawledPage, businessType string) {
	for _, p := range pages {
		for _, t := range p.SchemaTypes {
			if strings.EqualFold(t, "LocalBusiness") || strings.EqualFold(t, "Organization") ||
				strings.HasSuffix(t, "Business") || strings.EqualFold(t, "Store") || strings.EqualFold(t, "Restaurant") {
				b.addCheck("local_schema", StatusPass, 100, t+" schema found")
				return
			}
		}
	}
	severity := SeverityMedium
	if businessType == businessTypeSaaS {
		severity = SeverityLow
	}
	b.addCheck("local_schema", StatusFail, 0, "no LocalBusiness or Organization schema found")
	b.addIssue(Issue{
		Type:           "missing_local_schema",
		Severity:       severity,
		Title:          "Missing business schema markup",
		Description:    "No LocalBusiness or Organization structured data was found, so search engines cannot confirm the business entity.",
		Recommendation: "Add Organization or LocalBusiness JSON-LD with name, address, phone and opening hours.",
		AffectedPages:  1,
	})
}

func (a *LocalAnalyzer) checkLocationPage(b *resultBuilder, pages []crawler.CrawledPage, businessType string) {
	for _, p := range pages {
		lowerPath := strings.ToLower(p.Path)
		for _, marker := range []string{"location", "find-us", "findus", "visit", "stores", "directions"} {
			if strings.Contains(lowerPath, marker) {
				b.addCheck("location_page", StatusPass, 100, "location page found at "+p.Path)
				return
			}
		}
	}

	if businessType == businessTypeSaaS {
		b.addCheck("location_page", StatusInfo, 100, "no location page; not expected for a digital-first business")
		return
	}
	b.addCheck("location_page", StatusFail, 0, "no location page found")
	b.addIssue(Issue{
		Type:           "missing_location_page",
		Severity:       SeverityLow,
		Title:          "No location or directions page",
		Description:    "No dedicated location page was found. Location pages rank for \"near me\" and directions queries.",
		Recommendation: "Add a location page with address, map, opening hours and directions.",
		AffectedPages:  1,
	})
}

func (a *LocalAnalyzer) checkMapEmbed(b *resultBuilder, pages []crawler.CrawledPage) {
	for _, p := range pages {
		html := strings.ToLower(p.RawHTML)
		if strings.Contains(html, "google.com/maps") || strings.Contains(html, "maps.googleapis.com") || strings.Contains(html, "openstreetmap.org") {
			b.addCheck("map_embed", StatusPass, 100, "embedded map found")
			return
		}
	}
	b.addCheck("map_embed", StatusFail, 0, "no embedded map found")
	b.addIssue(Issue{
		Type:           "missing_map_embed",
		Severity:       SeverityLow,
		Title:          "No embedded map",
		Description:    "No embedded map was found on any page. Maps help visitors and reinforce the physical location signal.",
		Recommendation: "Embed a map on the contact or location page.",
		AffectedPages:  1,
	})
}

// checkDigitalPresence replaces the physical-presence checks for
// digital-first sites: breadth of the crawl and structured-data adoption.
func (a *LocalAnalyzer) checkDigitalPresence(b *resultBuilder, pages []crawler.CrawledPage) {
	pageScore := 100
	if len(pages) < 10 {
		pageScore = len(pages) * 10
	}
	schemaPages := 0
	for _, p := range pages {
		if p.HasSchema {
			schemaPages++
		}
	}
	schemaScore := boolScore(schemaPages > 0)
	score := clampScore(float64(pageScore+schemaScore) / 2)

	status := StatusPass
	if score < 70 {
		status = StatusWarning
	}
	b.addCheck("digital_presence", status, score,
		fmt.Sprintf("%d pages crawled, %d with structured data", len(pages), schemaPages))

	if score < 70 {
		b.addIssue(Issue{
			Type:           "weak_digital_presence",
			Severity:       SeverityLow,
			Title:          "Thin digital footprint",
			Description:    fmt.Sprintf("The site exposes only %d crawlable pages and %d with structured data, limiting its entity footprint.", len(pages), schemaPages),
			Recommendation: "Grow indexable content depth and add Organization schema across key pages.",
			AffectedPages:  len(pages),
		})
	}
}

package crawler

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seo-audit/backend/urlutil"
)

// extractMetadata fills page from the fetched HTML body and returns the
// deduplicated, resolvable link targets found on the page.
func extractMetadata(page *CrawledPage, body []byte, domain string) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		page.Error = "failed to parse html: " + err.Error()
		return nil
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		return nil
	}

	page.RawHTML = string(body)
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.TitleLength = len(page.Title)
	page.MetaDescription, _ = doc.Find(`meta[name="description"]`).Attr("content")
	page.MetaDescription = strings.TrimSpace(page.MetaDescription)
	page.MetaDescLength = len(page.MetaDescription)
	page.Canonical, _ = doc.Find(`link[rel="canonical"]`).Attr("href")
	page.RobotsMeta, _ = doc.Find(`meta[name="robots"]`).Attr("content")
	if viewport, ok := doc.Find(`meta[name="viewport"]`).Attr("content"); ok {
		page.HasViewport = strings.Contains(strings.ToLower(viewport), "width=device-width")
	}

	for _, tag := range []string{"h1", "h2", "h3"} {
		var texts []string
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				texts = append(texts, t)
			}
		})
		switch tag {
		case "h1":
			page.H1 = texts
		case "h2":
			page.H2 = texts
		case "h3":
			page.H3 = texts
		}
	}

	page.BodyText = strings.TrimSpace(doc.Find("body").Text())
	page.WordCount = len(strings.Fields(page.BodyText))

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		page.ImageCount++
		if alt, ok := s.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
			page.ImagesWithAlt++
		}
	})

	page.SchemaTypes = extractSchemaTypes(doc)
	page.HasSchema = len(page.SchemaTypes) > 0
	page.OpenGraph = extractMetaProperties(doc, "og:")
	page.TwitterCard = extractMetaNames(doc, "twitter:")

	seen := map[string]bool{}
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := urlutil.Resolve(base, href)
		if abs == "" {
			return
		}
		page.LinkCount++
		if urlutil.SameDomain(abs, domain) {
			page.InternalLinks++
		} else {
			page.ExternalLinks++
		}
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})

	return links
}

// extractSchemaTypes reads the declared @type of each JSON-LD block plus
// any microdata itemtype. Malformed JSON-LD entries are skipped silently.
func extractSchemaTypes(doc *goquery.Document) []string {
	seen := map[string]bool{}
	var types []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if i := strings.LastIndex(t, "/"); i >= 0 {
			t = t[i+1:]
		}
		if t != "" && !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return
		}
		collectJSONLDTypes(raw, add)
	})

	doc.Find("[itemtype]").Each(func(_ int, s *goquery.Selection) {
		if t, ok := s.Attr("itemtype"); ok {
			add(t)
		}
	})

	return types
}

// collectJSONLDTypes walks a decoded JSON-LD value picking up @type
// declarations, including @graph containers and arrays of entities.
func collectJSONLDTypes(v any, add func(string)) {
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			collectJSONLDTypes(item, add)
		}
	case map[string]any:
		switch t := val["@type"].(type) {
		case string:
			add(t)
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		}
		if graph, ok := val["@graph"]; ok {
			collectJSONLDTypes(graph, add)
		}
	}
}

func extractMetaProperties(doc *goquery.Document, prefix string) map[string]string {
	out := map[string]string{}
	doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		if !strings.HasPrefix(prop, prefix) {
			return
		}
		if content, ok := s.Attr("content"); ok {
			out[strings.TrimPrefix(prop, prefix)] = content
		}
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

func extractMetaNames(doc *goquery.Document, prefix string) map[string]string {
	out := map[string]string{}
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if !strings.HasPrefix(name, prefix) {
			return
		}
		if content, ok := s.Attr("content"); ok {
			out[strings.TrimPrefix(name, prefix)] = content
		}
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

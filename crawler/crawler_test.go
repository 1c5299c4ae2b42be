package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// fakeSite serves a map of path -> html body; unknown paths 404.
func fakeSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCrawlSinglePage(t *testing.T) {
	server := fakeSite(t, map[string]string{
		"/": `<html><head><title>Lone Page</title></head><body><h1>Hello</h1></body></html>`,
	})

	c := New(Config{MaxPages: 10, MaxDepth: 2}, testLogger())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)

	require.Len(t, pages, 1)
	assert.Equal(t, 0, pages[0].Depth)
	assert.Equal(t, http.StatusOK, pages[0].StatusCode)
	assert.Equal(t, "Lone Page", pages[0].Title)
}

func TestCrawlFollowsInternalLinksBFS(t *testing.T) {
	server := fakeSite(t, map[string]string{
		"/":      `<html><head><title>Home</title></head><body><a href="/about">About</a><a href="/blog">Blog</a></body></html>`,
		"/about": `<html><head><title>About</title></head><body><a href="/team">Team</a></body></html>`,
		"/blog":  `<html><head><title>Blog</title></head><body></body></html>`,
		"/team":  `<html><head><title>Team</title></head><body></body></html>`,
	})

	c := New(Config{MaxPages: 10, MaxDepth: 3}, testLogger())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)

	require.Len(t, pages, 4)
	// Discovery order: root, then depth-1 pages, then depth-2.
	assert.Equal(t, "Home", pages[0].Title)
	assert.Equal(t, "About", pages[1].Title)
	assert.Equal(t, "Blog", pages[2].Title)
	assert.Equal(t, "Team", pages[3].Title)
	assert.Equal(t, 2, pages[3].Depth)
}

func TestCrawlRespectsPageBudget(t *testing.T) {
	site := map[string]string{}
	var links string
	for i := 0; i < 20; i++ {
		path := fmt.Sprintf("/p%d", i)
		links += fmt.Sprintf(`<a href="%s">p</a>`, path)
		site[path] = `<html><head><title>P</title></head><body></body></html>`
	}
	site["/"] = `<html><head><title>Hub</title></head><body>` + links + `</body></html>`
	server := fakeSite(t, site)

	c := New(Config{MaxPages: 5, MaxDepth: 3}, testLogger())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(pages), 5)
}

func TestCrawlRespectsMaxDepth(t *testing.T) {
	server := fakeSite(t, map[string]string{
		"/":   `<html><body><a href="/a">a</a></body></html>`,
		"/a":  `<html><body><a href="/ab">ab</a></body></html>`,
		"/ab": `<html><body><a href="/abc">abc</a></body></html>`,
	})

	c := New(Config{MaxPages: 10, MaxDepth: 1}, testLogger())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)

	require.Len(t, pages, 2)
	for _, p := range pages {
		assert.LessOrEqual(t, p.Depth, 1)
	}
}

func TestCrawlPreservesTrailingSlash(t *testing.T) {
	server := fakeSite(t, map[string]string{
		"/":       `<html><body><a href="/alpha/">alpha</a><a href="/beta">beta</a></body></html>`,
		"/alpha/": `<html><head><title>Alpha</title></head><body></body></html>`,
		"/beta":   `<html><head><title>Beta</title></head><body></body></html>`,
	})

	c := New(Config{MaxPages: 10, MaxDepth: 2}, testLogger())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)

	// Pages keep the URL form the site links them under; the slash
	// difference is exactly what the URL-consistency check looks at.
	paths := map[string]bool{}
	for _, p := range pages {
		paths[p.Path] = true
	}
	assert.True(t, paths["/alpha/"], "trailing slash lost, got %v", paths)
	assert.True(t, paths["/beta"])
}

func TestCrawlSlashVariantsDedupe(t *testing.T) {
	server := fakeSite(t, map[string]string{
		"/":      `<html><body><a href="/page/">slashed</a><a href="/page">bare</a></body></html>`,
		"/page":  `<html><head><title>Page</title></head><body></body></html>`,
		"/page/": `<html><head><title>Page</title></head><body></body></html>`,
	})

	c := New(Config{MaxPages: 10, MaxDepth: 2}, testLogger())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)

	// /page/ and /page are the same resource; only the first discovered
	// form is fetched.
	require.Len(t, pages, 2)
}

func TestCrawlStartPageOnly(t *testing.T) {
	server := fakeSite(t, map[string]string{
		"/":  `<html><head><title>Home</title></head><body><a href="/a">a</a></body></html>`,
		"/a": `<html><head><title>A</title></head><body></body></html>`,
	})

	c := New(Config{MaxPages: 10, MaxDepth: -1}, testLogger())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)

	require.Len(t, pages, 1)
	assert.Equal(t, "Home", pages[0].Title)
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	assert.Equal(t, 50, cfg.MaxPages)
	assert.Equal(t, 3, cfg.MaxDepth)

	assert.Equal(t, 0, Config{MaxDepth: -1}.WithDefaults().MaxDepth)
	assert.Equal(t, 1, Config{MaxDepth: 1}.WithDefaults().MaxDepth)
}

func TestCrawlNoDuplicateURLs(t *testing.T) {
	server := fakeSite(t, map[string]string{
		"/":  `<html><body><a href="/a">a</a><a href="/a">a again</a><a href="/a#section">anchor</a></body></html>`,
		"/a": `<html><body><a href="/">home</a></body></html>`,
	})

	c := New(Config{MaxPages: 10, MaxDepth: 3}, testLogger())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, p := range pages {
		assert.False(t, seen[p.URL], "duplicate URL %s in crawl result", p.URL)
		seen[p.URL] = true
	}
	assert.Len(t, pages, 2)
}

func TestCrawlDegradedPageDoesNotAbort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body><a href="/broken">broken</a><a href="/fine">fine</a></body></html>`)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/fine":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>Fine</title></head><body></body></html>`)
		}
	}))
	defer server.Close()

	c := New(Config{MaxPages: 10, MaxDepth: 2}, testLogger())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)

	require.Len(t, pages, 3)
	var broken, fine *CrawledPage
	for i := range pages {
		switch pages[i].Path {
		case "/broken":
			broken = &pages[i]
		case "/fine":
			fine = &pages[i]
		}
	}
	require.NotNil(t, broken)
	require.NotNil(t, fine)
	assert.NotEmpty(t, broken.Error)
	assert.Equal(t, "Fine", fine.Title)
}

func TestCrawlSkipsExternalAndPseudoLinks(t *testing.T) {
	server := fakeSite(t, map[string]string{
		"/": `<html><body>
			<a href="https://other-domain.example/x">external</a>
			<a href="mailto:a@b.c">mail</a>
			<a href="tel:+15551234567">tel</a>
			<a href="javascript:void(0)">js</a>
			<a href="#frag">frag</a>
		</body></html>`,
	})

	c := New(Config{MaxPages: 10, MaxDepth: 3}, testLogger())
	pages, err := c.Crawl(context.Background(), server.URL)
	require.NoError(t, err)

	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].ExternalLinks)
	assert.Equal(t, 0, pages[0].InternalLinks)
}

func TestCrawlInvalidStartURL(t *testing.T) {
	c := New(Config{}, testLogger())
	_, err := c.Crawl(context.Background(), "ftp://nope")
	assert.Error(t, err)
}

func TestExtractMetadata(t *testing.T) {
	html := `<html><head>
		<title>Acme Widgets | Quality Tools</title>
		<meta name="description" content="Buy quality widgets from Acme.">
		<meta name="robots" content="index,follow">
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<link rel="canonical" href="https://example.com/widgets">
		<meta property="og:title" content="Acme Widgets">
		<meta name="twitter:card" content="summary">
		<script type="application/ld+json">{"@context":"https://schema.org","@type":"Organization","name":"Acme"}</script>
		<script type="application/ld+json">not valid json {{{</script>
	</head><body>
		<h1>Widgets</h1>
		<h2>Why Acme</h2><h2>FAQ</h2>
		<h3>Shipping</h3>
		<p>Some body copy with several words in it.</p>
		<img src="a.png" alt="a widget"><img src="b.png">
		<a href="/pricing">Pricing</a>
		<a href="https://twitter.com/acme">Twitter</a>
	</body></html>`

	page := CrawledPage{URL: "https://example.com/widgets", Path: "/widgets"}
	links := extractMetadata(&page, []byte(html), "example.com")

	assert.Equal(t, "Acme Widgets | Quality Tools", page.Title)
	assert.Equal(t, "Buy quality widgets from Acme.", page.MetaDescription)
	assert.Equal(t, "index,follow", page.RobotsMeta)
	assert.True(t, page.HasViewport)
	assert.Equal(t, "https://example.com/widgets", page.Canonical)
	assert.Equal(t, []string{"Widgets"}, page.H1)
	assert.Equal(t, []string{"Why Acme", "FAQ"}, page.H2)
	assert.Equal(t, []string{"Shipping"}, page.H3)
	assert.True(t, page.HasSchema)
	assert.Equal(t, []string{"Organization"}, page.SchemaTypes)
	assert.Equal(t, "Acme Widgets", page.OpenGraph["title"])
	assert.Equal(t, "summary", page.TwitterCard["card"])
	assert.Equal(t, 2, page.ImageCount)
	assert.Equal(t, 1, page.ImagesWithAlt)
	assert.Equal(t, 1, page.InternalLinks)
	assert.Equal(t, 1, page.ExternalLinks)
	assert.Greater(t, page.WordCount, 5)
	assert.Len(t, links, 2)
}

func TestExtractSchemaTypesGraphAndArrays(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@context":"https://schema.org","@graph":[
			{"@type":"WebSite"},
			{"@type":["LocalBusiness","Store"]}
		]}
		</script>
	</head><body></body></html>`

	page := CrawledPage{URL: "https://example.com/", Path: "/"}
	extractMetadata(&page, []byte(html), "example.com")

	assert.ElementsMatch(t, []string{"WebSite", "LocalBusiness", "Store"}, page.SchemaTypes)
}

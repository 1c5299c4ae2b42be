package crawler

import "time"

// CrawledPage is a single fetched page with its extracted SEO metadata.
// Pages are created once by the crawler and treated as read-only by every
// analyzer; the analyzers run in parallel over the same slice.
type CrawledPage struct {
	URL             string            `json:"url"`
	Path            string            `json:"path"`
	StatusCode      int               `json:"statusCode"`
	Depth           int               `json:"depth"`
	Title           string            `json:"title"`
	TitleLength     int               `json:"titleLength"`
	MetaDescription string            `json:"metaDescription"`
	MetaDescLength  int               `json:"metaDescriptionLength"`
	H1              []string          `json:"h1"`
	H2              []string          `json:"h2"`
	H3              []string          `json:"h3"`
	Canonical       string            `json:"canonical"`
	RobotsMeta      string            `json:"robotsMeta"`
	HasViewport     bool              `json:"hasViewport"`
	LoadTimeMs      int               `json:"loadTime"`
	PageSizeBytes   int               `json:"pageSize"`
	WordCount       int               `json:"wordCount"`
	ImageCount      int               `json:"imageCount"`
	ImagesWithAlt   int               `json:"imagesWithAlt"`
	LinkCount       int               `json:"linkCount"`
	InternalLinks   int               `json:"internalLinks"`
	ExternalLinks   int               `json:"externalLinks"`
	HasSchema       bool              `json:"hasSchema"`
	SchemaTypes     []string          `json:"schemaTypes,omitempty"`
	OpenGraph       map[string]string `json:"openGraph,omitempty"`
	TwitterCard     map[string]string `json:"twitterCard,omitempty"`
	BodyText        string            `json:"-"`
	RawHTML         string            `json:"-"`
	Error           string            `json:"error,omitempty"`
}

// Config controls one crawl.
type Config struct {
	MaxPages int
	// MaxDepth limits how many links deep the crawl goes. Zero means
	// unset and defaults to 3; pass a negative value to fetch only the
	// start page.
	MaxDepth  int
	Delay     time.Duration
	Timeout   time.Duration
	UserAgent string
}

// WithDefaults fills zero-value fields with sensible defaults.
func (c Config) WithDefaults() Config {
	if c.MaxPages <= 0 {
		c.MaxPages = 50
	}
	if c.MaxDepth < 0 {
		c.MaxDepth = 0
	} else if c.MaxDepth == 0 {
		c.MaxDepth = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "SEOAuditBot/1.0"
	}
	return c
}

// queueEntry is one pending fetch in the BFS frontier.
type queueEntry struct {
	url   string
	depth int
}

// Package pagespeed is a minimal client for the Google PageSpeed Insights
// API. The audit core treats it as optional: any failure here is degraded
// by the caller into a latency-based estimate, never propagated.
package pagespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	apiEndpoint    = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
	defaultTimeout = 60 * time.Second
)

// Strategies accepted by the API.
const (
	StrategyMobile  = "mobile"
	StrategyDesktop = "desktop"
)

// Metrics is one lab measurement for one strategy.
type Metrics struct {
	Score int     `json:"score"` // 0-100 performance score
	LCPMs float64 `json:"lcpMs"` // largest contentful paint
	CLS   float64 `json:"cls"`   // cumulative layout shift
	FCPMs float64 `json:"fcpMs"` // first contentful paint
	TTIMs float64 `json:"ttiMs"` // time to interactive
}

// Client calls the PageSpeed Insights API.
type Client struct {
	apiKey     string
	httpClient *http.Client

	// BaseURL exists so tests can point the client at a fake server.
	BaseURL string
}

// New creates a Client. An empty apiKey produces a disabled client; the
// Performance analyzer then falls back to latency estimation.
func New(apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{apiKey: apiKey, httpClient: httpClient, BaseURL: apiEndpoint}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type apiResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]struct {
			NumericValue float64 `json:"numericValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
}

// Run measures targetURL with the given strategy.
func (c *Client) Run(ctx context.Context, targetURL, strategy string) (*Metrics, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("pagespeed: no api key configured")
	}

	q := url.Values{}
	q.Set("url", targetURL)
	q.Set("strategy", strategy)
	q.Set("key", c.apiKey)
	q.Set("category", "performance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pagespeed: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pagespeed: %s request failed: %w", strategy, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("pagespeed: %s request returned status %d", strategy, resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("pagespeed: decode %s response: %w", strategy, err)
	}

	m := &Metrics{
		Score: int(parsed.LighthouseResult.Categories.Performance.Score * 100),
	}
	audits := parsed.LighthouseResult.Audits
	m.LCPMs = audits["largest-contentful-paint"].NumericValue
	m.CLS = audits["cumulative-layout-shift"].NumericValue
	m.FCPMs = audits["first-contentful-paint"].NumericValue
	m.TTIMs = audits["interactive"].NumericValue
	return m, nil
}

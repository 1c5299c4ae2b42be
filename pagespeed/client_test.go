package pagespeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDisabledWithoutKey(t *testing.T) {
	c := New("", nil)
	assert.False(t, c.Enabled())

	_, err := c.Run(context.Background(), "https://example.com/", StrategyMobile)
	assert.Error(t, err)
}

func TestClientNilReceiverDisabled(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
}

func TestClientParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "https://example.com/", q.Get("url"))
		assert.Equal(t, StrategyMobile, q.Get("strategy"))
		assert.Equal(t, "test-key", q.Get("key"))

		fmt.Fprint(w, `{
			"lighthouseResult": {
				"categories": {"performance": {"score": 0.87}},
				"audits": {
					"largest-contentful-paint": {"numericValue": 2100.5},
					"cumulative-layout-shift": {"numericValue": 0.04},
					"first-contentful-paint": {"numericValue": 900},
					"interactive": {"numericValue": 3200}
				}
			}
		}`)
	}))
	defer server.Close()

	c := New("test-key", server.Client())
	c.BaseURL = server.URL

	m, err := c.Run(context.Background(), "https://example.com/", StrategyMobile)
	require.NoError(t, err)
	assert.Equal(t, 87, m.Score)
	assert.InDelta(t, 2100.5, m.LCPMs, 0.001)
	assert.InDelta(t, 0.04, m.CLS, 0.001)
	assert.InDelta(t, 900, m.FCPMs, 0.001)
	assert.InDelta(t, 3200, m.TTIMs, 0.001)
}

func TestClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := New("test-key", server.Client())
	c.BaseURL = server.URL

	_, err := c.Run(context.Background(), "https://example.com/", StrategyDesktop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer server.Close()

	c := New("test-key", server.Client())
	c.BaseURL = server.URL

	_, err := c.Run(context.Background(), "https://example.com/", StrategyMobile)
	assert.Error(t, err)
}

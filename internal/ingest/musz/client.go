// Package musz scrapes competition results from the live.musz.hu result
// pages when no structured document is available for a competition.
package musz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/soosb/aquafeed/internal/metrics"
	"go.uber.org/zap"
)

const (
	// MinRequestInterval spaces page fetches against the live site.
	MinRequestInterval = 500 * time.Millisecond

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client fetches live site pages with rate limiting. Not safe for
// concurrent use; one client serves one sequential scrape run.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
	log     *zap.Logger

	lastRequest time.Time
	interval    time.Duration
}

// NewClient creates a page fetch client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		metrics:  m,
		log:      log,
		interval: MinRequestInterval,
	}
}

// FetchEventData fetches the competition metadata page.
func (c *Client) FetchEventData(ctx context.Context, onlineEventID int64) (*goquery.Document, error) {
	url := fmt.Sprintf("%s/event/eventdata?OnlineEventId=%d", c.baseURL, onlineEventID)
	return c.fetchDocument(ctx, url)
}

// FetchProgram fetches the competition program page.
func (c *Client) FetchProgram(ctx context.Context, onlineEventID int64) (*goquery.Document, error) {
	url := fmt.Sprintf("%s/event/program?OnlineEventId=%d", c.baseURL, onlineEventID)
	return c.fetchDocument(ctx, url)
}

// FetchResultPage fetches one result page for a (session, event) pair.
func (c *Client) FetchResultPage(ctx context.Context, onlineEventID int64, sessionID, eventID int) (*goquery.Document, error) {
	url := fmt.Sprintf("%s/event/result?OnlineEventId=%d&SessionId=%d&EventId=%d",
		c.baseURL, onlineEventID, sessionID, eventID)
	return c.fetchDocument(ctx, url)
}

// FetchHeatPage fetches one result page narrowed to a single heat.
func (c *Client) FetchHeatPage(ctx context.Context, onlineEventID int64, sessionID, eventID, heatID int) (*goquery.Document, error) {
	url := fmt.Sprintf("%s/event/result?OnlineEventId=%d&SessionId=%d&EventId=%d&HeatId=%d",
		c.baseURL, onlineEventID, sessionID, eventID, heatID)
	return c.fetchDocument(ctx, url)
}

// FetchSwimmerPage fetches the swimmer subpage as raw HTML. The birth
// year is pattern-matched over the whole body rather than a selector.
func (c *Client) FetchSwimmerPage(ctx context.Context, onlineEventID, umk int64) (string, error) {
	url := fmt.Sprintf("%s/event/swimmer?OnlineEventId=%d&UMK=%d", c.baseURL, onlineEventID, umk)
	body, err := c.fetchBody(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.fetchBody(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) fetchBody(ctx context.Context, url string) ([]byte, error) {
	c.throttle()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	c.log.Debug("fetching page", zap.String("url", url))
	resp, err := c.http.Do(req)
	c.lastRequest = time.Now()
	if err != nil {
		c.metrics.FetchFailures.Inc()
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.FetchFailures.Inc()
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.FetchFailures.Inc()
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	c.metrics.PagesFetched.Inc()
	return body, nil
}

func (c *Client) throttle() {
	if c.lastRequest.IsZero() {
		return
	}
	if elapsed := time.Since(c.lastRequest); elapsed < c.interval {
		time.Sleep(c.interval - elapsed)
	}
}

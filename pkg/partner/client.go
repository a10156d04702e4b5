// Package partner provides a client for the data partner's export API,
// which publishes location collection and chain-scrape export files.
package partner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/footprint-cli/internal/fetcher"
)

// Export types published by the partner API.
const (
	ExportCollection  = "collection"
	ExportChainScrape = "chain-scrape"
	ExportReference   = "reference"
)

// Export describes one downloadable export file.
type Export struct {
	FileName     string    `json:"file_name"`
	Type         string    `json:"type"`
	CollectionID int       `json:"collection_id"`
	URL          string    `json:"url"`
	SizeBytes    int64     `json:"size_bytes"`
	PublishedAt  time.Time `json:"published_at"`
	ETag         string    `json:"etag"`
}

type listResponse struct {
	Exports []Export `json:"exports"`
}

// Client defines the partner export API operations.
type Client interface {
	// ListExports returns exports of the given type, newest first. An empty
	// type returns everything.
	ListExports(ctx context.Context, exportType string) ([]Export, error)

	// Download fetches a single export into dir and returns the local path.
	Download(ctx context.Context, exp Export, dir string) (string, error)

	// DownloadAll fetches all given exports into dir concurrently and
	// returns the local paths in the same order.
	DownloadAll(ctx context.Context, exports []Export, dir string) ([]string, error)
}

// Option configures the partner client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithFetcher sets a custom download fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *httpClient) {
		c.fetcher = f
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithConcurrency sets the number of parallel downloads in DownloadAll.
func WithConcurrency(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

type httpClient struct {
	baseURL     string
	apiKey      string
	http        *http.Client
	fetcher     fetcher.Fetcher
	limiter     *rate.Limiter
	concurrency int
}

// NewClient creates a partner export API client.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 2 * time.Minute,
		},
		limiter:     rate.NewLimiter(rate.Limit(5), 5),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout: c.http.Timeout,
		})
	}
	return c
}

func (c *httpClient) ListExports(ctx context.Context, exportType string) ([]Export, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "partner: rate limit wait")
	}

	reqURL := c.baseURL + "/v1/exports"
	if exportType != "" {
		reqURL += "?type=" + url.QueryEscape(exportType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "partner: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "partner: list exports")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "partner: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("partner: list exports status %d: %s", resp.StatusCode, string(body))
	}

	var result listResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "partner: unmarshal export list")
	}
	return result.Exports, nil
}

func (c *httpClient) Download(ctx context.Context, exp Export, dir string) (string, error) {
	if exp.URL == "" {
		return "", eris.Errorf("partner: export %q has no download URL", exp.FileName)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "partner: rate limit wait")
	}

	path := filepath.Join(dir, exp.FileName)
	n, err := c.fetcher.DownloadToFile(ctx, exp.URL, path)
	if err != nil {
		return "", eris.Wrapf(err, "partner: download %s", exp.FileName)
	}
	if exp.SizeBytes > 0 && n != exp.SizeBytes {
		return "", eris.Errorf("partner: download %s: got %d bytes, expected %d",
			exp.FileName, n, exp.SizeBytes)
	}

	zap.L().Info("downloaded partner export",
		zap.String("file", exp.FileName),
		zap.String("type", exp.Type),
		zap.Int64("bytes", n))
	return path, nil
}

func (c *httpClient) DownloadAll(ctx context.Context, exports []Export, dir string) ([]string, error) {
	paths := make([]string, len(exports))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, exp := range exports {
		g.Go(func() error {
			path, err := c.Download(gctx, exp, dir)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// LatestCollection returns the most recently published collection export,
// or an error when none exist.
func LatestCollection(exports []Export) (Export, error) {
	var best Export
	found := false
	for _, exp := range exports {
		if exp.Type != ExportCollection {
			continue
		}
		if !found || exp.PublishedAt.After(best.PublishedAt) {
			best = exp
			found = true
		}
	}
	if !found {
		return Export{}, eris.New("partner: no collection exports available")
	}
	return best, nil
}

package fetcher

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	RateLimiters map[string]*rate.Limiter // per-host overrides
}

const (
	defaultUserAgent = "footprint-cli/1.0"
	defaultRetries   = 3
	backoffBase      = time.Second
	backoffCap       = 30 * time.Second
)

// AdaptiveLimiter is a rate.Limiter that tunes itself to the remote host's
// throttling: each success raises the rate 20% and each 429 halves it. The
// rate stays within [initial/4, initial*2].
type AdaptiveLimiter struct {
	mu      sync.Mutex
	inner   *rate.Limiter
	rate    rate.Limit
	floor   rate.Limit
	ceiling rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		inner:   rate.NewLimiter(initialRate, burst),
		rate:    initialRate,
		floor:   initialRate / 4,
		ceiling: initialRate * 2,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.inner.Wait(ctx)
}

// OnSuccess raises the rate 20%, capped at the ceiling.
func (a *AdaptiveLimiter) OnSuccess() {
	a.scale(1.2)
}

// OnRateLimit halves the rate after a 429, bounded by the floor.
func (a *AdaptiveLimiter) OnRateLimit() {
	next := a.scale(0.5)
	zap.L().Warn("adaptive rate limit: reducing rate after 429",
		zap.Float64("new_rate", float64(next)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rate
}

func (a *AdaptiveLimiter) scale(factor rate.Limit) rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	target := a.rate * factor
	switch {
	case target > a.ceiling:
		target = a.ceiling
	case target < a.floor:
		target = a.floor
	}
	a.rate = target
	a.inner.SetLimit(target)
	return target
}

// HTTPFetcher implements ConditionalFetcher using net/http with retry and
// per-host rate limiting. The partner's export host throttles aggressively,
// so every host gets an adaptive limiter on first use; hosts with a fixed
// limiter in the options opt out of adaptation.
type HTTPFetcher struct {
	hc    *http.Client
	opts  HTTPOptions
	fixed map[string]*rate.Limiter

	mu      sync.Mutex
	perHost map[string]*AdaptiveLimiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultRetries
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	fixed := make(map[string]*rate.Limiter, len(opts.RateLimiters))
	for host, lim := range opts.RateLimiters {
		fixed[host] = lim
	}

	return &HTTPFetcher{
		hc: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		fixed:   fixed,
		perHost: make(map[string]*AdaptiveLimiter),
	}
}

// wait applies the host's limiter, preferring a fixed override.
func (f *HTTPFetcher) wait(ctx context.Context, rawURL string) (*AdaptiveLimiter, error) {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	if lim, ok := f.fixed[host]; ok {
		return nil, lim.Wait(ctx)
	}

	f.mu.Lock()
	adaptive, ok := f.perHost[host]
	if !ok {
		adaptive = NewAdaptiveLimiter(10, 10)
		f.perHost[host] = adaptive
	}
	f.mu.Unlock()
	return adaptive, adaptive.Wait(ctx)
}

// sleep backs off exponentially with jitter, respecting cancellation.
func (f *HTTPFetcher) sleep(ctx context.Context, attempt int) {
	d := backoffBase << attempt
	if d > backoffCap {
		d = backoffCap
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// do runs the request, retrying 429s and 5xx responses. A 429 feeds back
// into the host's adaptive limiter before the retry.
func (f *HTTPFetcher) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < f.opts.MaxRetries; attempt++ {
		adaptive, err := f.wait(ctx, req.URL.String())
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}

		resp, err := f.hc.Do(req.Clone(ctx))
		switch {
		case err != nil:
			lastErr = err
			zap.L().Warn("http request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)

		case resp.StatusCode == http.StatusTooManyRequests:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("fetcher: http 429 from %s", req.URL.String())
			if adaptive != nil {
				adaptive.OnRateLimit()
			}

		case resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("fetcher: http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("server error, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)

		default:
			if adaptive != nil {
				adaptive.OnSuccess()
			}
			return resp, nil
		}

		f.sleep(ctx, attempt)
	}
	return nil, eris.Wrap(lastErr, "fetcher: all retries exhausted")
}

func (f *HTTPFetcher) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	return req, nil
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := f.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := f.do(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "download")
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("download: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

// DownloadToFile fetches the URL and writes it to the given path.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}

// HeadETag performs a HEAD request and returns the ETag header value.
func (f *HTTPFetcher) HeadETag(ctx context.Context, rawURL string) (string, error) {
	req, err := f.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return "", err
	}

	if _, err := f.wait(ctx, rawURL); err != nil {
		return "", eris.Wrap(err, "fetcher: rate limiter wait")
	}
	resp, err := f.hc.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "head request")
	}
	defer resp.Body.Close() //nolint:errcheck

	return resp.Header.Get("ETag"), nil
}

// DownloadIfChanged fetches the URL only if the ETag has changed.
func (f *HTTPFetcher) DownloadIfChanged(ctx context.Context, rawURL string, etag string) (io.ReadCloser, string, bool, error) {
	req, err := f.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, "", false, err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	if _, err := f.wait(ctx, rawURL); err != nil {
		return nil, "", false, eris.Wrap(err, "fetcher: rate limiter wait")
	}
	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, "", false, eris.Wrap(err, "download if changed")
	}

	switch resp.StatusCode {
	case http.StatusNotModified:
		_ = resp.Body.Close()
		return nil, etag, false, nil
	case http.StatusOK:
		return resp.Body, resp.Header.Get("ETag"), true, nil
	}
	_ = resp.Body.Close()
	return nil, "", false, eris.Errorf("download if changed: unexpected status %d from %s", resp.StatusCode, rawURL)
}

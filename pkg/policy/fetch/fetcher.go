package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"bioscope-hq/bioscope/pkg/policy/cache"
	"bioscope-hq/bioscope/pkg/telemetry/metrics"
)

// maxDocumentSize bounds how much of a policy response is read. Policy
// documents are small; anything larger is a misconfigured URL.
const maxDocumentSize = 1 << 20

// Fetcher retrieves remote validation policies with cache-first
// semantics.
type Fetcher struct {
	cache   cache.Store
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *metrics.Validation
	now     func() time.Time
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	// Cache is the policy cache store. Required.
	Cache cache.Store

	// Timeout bounds each network fetch. Default: 10 seconds.
	Timeout time.Duration

	// FetchesPerMinute limits how often the network is hit across all
	// URLs, so repeated cache misses cannot hammer a policy server.
	// Zero disables the limiter.
	FetchesPerMinute int

	// Logger receives fetch diagnostics. Nil falls back to slog.Default.
	Logger *slog.Logger

	// Metrics records cache and fetch outcomes. Optional.
	Metrics *metrics.Validation
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var limiter *rate.Limiter
	if cfg.FetchesPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.FetchesPerMinute)/60.0), cfg.FetchesPerMinute)
	}

	return &Fetcher{
		cache:   cfg.Cache,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     time.Now,
	}
}

// Fetch resolves a reference into a remote policy document. Cached
// entries that are still fresh short-circuit the network entirely. A
// failed fetch with a stale entry present degrades to the stale copy;
// with no entry at all it returns a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, ref Reference) (*Result, error) {
	if ref.URL == "" {
		return nil, &FetchError{URL: ref.URL, Message: "reference has no url"}
	}

	entry, err := f.cache.Get(ctx, ref.URL)
	if err != nil {
		// A broken cache read is not fatal: the network path below can
		// still serve the document.
		f.logger.Warn("policy cache read failed", "url", ref.URL, "error", err)
		entry = nil
	}

	if entry != nil && entry.FreshAt(f.now(), ref.cacheDuration()) {
		doc, perr := parseDocument(entry.Payload)
		if perr == nil {
			f.recordCacheHit()
			f.logger.Debug("remote policy served from cache", "url", ref.URL, "fetched_at", entry.FetchedAt)
			return &Result{Document: doc, Payload: entry.Payload, FromCache: true}, nil
		}
		// A corrupt cached payload is treated as a miss.
		f.logger.Warn("cached policy payload is corrupt, refetching", "url", ref.URL, "error", perr)
	}
	f.recordCacheMiss()

	payload, ferr := f.fetchRemote(ctx, ref.URL)
	if ferr == nil {
		doc, perr := parseDocument(payload)
		if perr != nil {
			ferr = &FetchError{URL: ref.URL, Message: "failed to parse policy document", Cause: perr}
		} else {
			if err := f.cache.Put(ctx, ref.URL, payload); err != nil {
				f.logger.Warn("failed to cache remote policy", "url", ref.URL, "error", err)
			}
			f.recordFetch("success")
			return &Result{Document: doc, Payload: payload}, nil
		}
	}

	// Live fetch failed. A stale cache entry still beats nothing.
	if entry != nil {
		if doc, perr := parseDocument(entry.Payload); perr == nil {
			f.recordFetch("stale")
			f.logger.Warn("remote policy fetch failed, using stale cache entry",
				"url", ref.URL,
				"fetched_at", entry.FetchedAt,
				"error", ferr,
			)
			return &Result{Document: doc, Payload: entry.Payload, FromCache: true, Stale: true}, nil
		}
	}

	f.recordFetch("error")
	return nil, ferr
}

// fetchRemote performs the network retrieval of a policy document.
func (f *Fetcher) fetchRemote(ctx context.Context, url string) ([]byte, *FetchError) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: url, Message: "rate limit wait canceled", Cause: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Accept", "application/x-yaml, text/yaml, application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, &FetchError{URL: url, Message: "failed to read response body", Cause: err}
	}

	return payload, nil
}

func (f *Fetcher) recordCacheHit() {
	if f.metrics != nil {
		f.metrics.RecordCacheHit()
	}
}

func (f *Fetcher) recordCacheMiss() {
	if f.metrics != nil {
		f.metrics.RecordCacheMiss()
	}
}

func (f *Fetcher) recordFetch(outcome string) {
	if f.metrics != nil {
		f.metrics.RecordFetch(outcome)
	}
}

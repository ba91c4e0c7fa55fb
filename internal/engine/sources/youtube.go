// Package sources implements the YouTube collaborators: video search and
// caption transcripts.
//
// Search uses the YouTube Data API v3 when a key is configured and falls back
// to scraping ytInitialData from the results page. Transcripts come from the
// watch page's ytInitialPlayerResponse caption tracks, with the ANDROID
// Innertube /player endpoint as a fallback.
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
)

const (
	ytWebBase  = "https://www.youtube.com"
	ytWatchURL = "https://www.youtube.com/watch?v="
)

// YouTube searches videos and fetches their transcripts.
type YouTube struct {
	client      *http.Client
	svc         *youtube.Service
	apiKeys     []string
	apiEndpoint string
	webBase     string
	langs       []string
	retry       engine.RetryConfig
	timeout     time.Duration
	cache       *engine.Cache
}

// Option customizes a YouTube client.
type Option func(*YouTube)

// WithWebBase points page scraping and Innertube calls at another host.
func WithWebBase(base string) Option {
	return func(y *YouTube) { y.webBase = base }
}

// WithDataAPIEndpoint overrides the YouTube Data API base URL.
func WithDataAPIEndpoint(endpoint string) Option {
	return func(y *YouTube) { y.apiEndpoint = endpoint }
}

// WithLanguages sets the caption language preference order.
func WithLanguages(langs ...string) Option {
	return func(y *YouTube) { y.langs = langs }
}

// NewYouTube builds a client from cfg. The Data API path is enabled only
// when at least one API key is configured.
func NewYouTube(ctx context.Context, cfg engine.Config, cache *engine.Cache, opts ...Option) (*YouTube, error) {
	cfg = cfg.WithDefaults()
	y := &YouTube{
		client:  cfg.HTTPClient,
		webBase: ytWebBase,
		langs:   []string{"en"},
		retry:   cfg.SearchRetryConfig(),
		timeout: cfg.FetchTimeout,
		cache:   cache,
	}
	for _, key := range []string{cfg.YouTubeAPIKey, cfg.YouTubeAPIKeyFallback} {
		if key != "" {
			y.apiKeys = append(y.apiKeys, key)
		}
	}
	for _, opt := range opts {
		opt(y)
	}

	if len(y.apiKeys) > 0 {
		// the key travels per call so a quota error can switch to the fallback
		apiClient := &http.Client{
			Timeout:   y.client.Timeout,
			Transport: &engine.RetryTransport{Base: y.client.Transport, Retry: y.retry},
		}
		svcOpts := []option.ClientOption{option.WithHTTPClient(apiClient)}
		if y.apiEndpoint != "" {
			svcOpts = append(svcOpts, option.WithEndpoint(y.apiEndpoint))
		}
		svc, err := youtube.NewService(ctx, svcOpts...)
		if err != nil {
			return nil, fmt.Errorf("youtube data api: %w", err)
		}
		y.svc = svc
	}
	return y, nil
}

// Search returns up to maxResults video candidates for query.
func (y *YouTube) Search(ctx context.Context, query string, maxResults int) ([]engine.Candidate, error) {
	engine.IncrYouTubeSearch()
	if maxResults <= 0 {
		return []engine.Candidate{}, nil
	}

	cacheKey := engine.CacheKey("yt-search", query, strconv.Itoa(maxResults))
	if cands, ok := engine.CacheLoadJSON[[]engine.Candidate](ctx, y.cache, cacheKey); ok {
		return cands, nil
	}

	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	var (
		cands []engine.Candidate
		err   error
	)
	if y.svc != nil {
		cands, err = y.searchDataAPI(ctx, query, maxResults)
		if err != nil {
			slog.Warn("youtube: data API failed, falling back to page scrape",
				slog.String("query", query), slog.Any("error", err))
		}
	}
	if y.svc == nil || err != nil {
		cands, err = y.searchScrape(ctx, query, maxResults)
	}
	if err != nil {
		engine.IncrYouTubeSearchErrors()
		return nil, fmt.Errorf("youtube search %q: %w", query, err)
	}

	if len(cands) > maxResults {
		cands = cands[:maxResults]
	}
	// an empty page is often transient (consent wall, layout experiment)
	if len(cands) > 0 {
		engine.CacheStoreJSON(ctx, y.cache, cacheKey, cands)
	}
	return cands, nil
}

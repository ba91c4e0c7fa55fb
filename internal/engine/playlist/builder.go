package playlist

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
)

// Searcher is a video search provider. It may return fewer than maxResults
// candidates; an error means the transport failed.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]engine.Candidate, error)
}

// Builder turns search queries into a flat, title-deduplicated video list.
type Builder struct {
	searcher    Searcher
	concurrency int
}

// NewBuilder returns a builder running at most concurrency searches at once.
func NewBuilder(s Searcher, concurrency int) *Builder {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Builder{searcher: s, concurrency: concurrency}
}

// Build searches each query once and returns the accepted videos in query
// order. The bucket filter applies to study builds only. A title is kept
// once per call, under the first query that produced it. Failed searches
// contribute nothing; Build itself never fails.
func (b *Builder) Build(ctx context.Context, queries []string, maxResults int, bucket Bucket, isFun bool) []engine.VideoRecord {
	out := []engine.VideoRecord{}
	if len(queries) == 0 || maxResults <= 0 {
		return out
	}

	// each search writes only its own slot; merging happens after Wait
	results := make([][]engine.Candidate, len(queries))
	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, q := range queries {
		g.Go(func() error {
			cands, err := b.searcher.Search(ctx, q, maxResults)
			if err != nil {
				slog.Warn("playlist: search failed, skipping query",
					slog.String("query", q), slog.Bool("fun", isFun), slog.Any("error", err))
				return nil
			}
			if len(cands) > maxResults {
				cands = cands[:maxResults]
			}
			results[i] = cands
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	for _, cands := range results {
		for _, c := range cands {
			duration := 0
			if c.DurationSeconds != nil && *c.DurationSeconds > 0 {
				duration = *c.DurationSeconds
			}
			if !isFun && bucket != BucketNone && !bucket.Matches(duration) {
				continue
			}
			if _, dup := seen[c.Title]; dup {
				continue
			}
			seen[c.Title] = struct{}{}

			channel := c.Channel
			if channel == "" {
				channel = engine.UnknownChannel
			}
			out = append(out, engine.VideoRecord{
				Title:           c.Title,
				URL:             c.URL,
				Channel:         channel,
				DurationSeconds: duration,
				IsFun:           isFun,
			})
		}
	}
	return out
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PlaylistRequests          atomic.Int64
	PlaylistErrors            atomic.Int64
	KeywordExtractions        atomic.Int64
	LLMCalls                  atomic.Int64
	LLMErrors                 atomic.Int64
	YouTubeSearchRequests     atomic.Int64
	YouTubeSearchErrors       atomic.Int64
	YouTubeTranscriptRequests atomic.Int64
	QuizRequests              atomic.Int64
	CacheHits                 atomic.Int64
	CacheMisses               atomic.Int64
}

var metricKeys = []string{
	"playlist_requests", "playlist_errors",
	"keyword_extractions", "llm_calls", "llm_errors",
	"youtube_search_requests", "youtube_search_errors",
	"youtube_transcript_requests", "quiz_requests",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"playlist_requests":           metrics.PlaylistRequests.Load(),
		"playlist_errors":             metrics.PlaylistErrors.Load(),
		"keyword_extractions":         metrics.KeywordExtractions.Load(),
		"llm_calls":                   metrics.LLMCalls.Load(),
		"llm_errors":                  metrics.LLMErrors.Load(),
		"youtube_search_requests":     metrics.YouTubeSearchRequests.Load(),
		"youtube_search_errors":       metrics.YouTubeSearchErrors.Load(),
		"youtube_transcript_requests": metrics.YouTubeTranscriptRequests.Load(),
		"quiz_requests":               metrics.QuizRequests.Load(),
		"cache_hits":                  metrics.CacheHits.Load(),
		"cache_misses":                metrics.CacheMisses.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrPlaylistRequests()    { metrics.PlaylistRequests.Add(1) }
func IncrPlaylistErrors()      { metrics.PlaylistErrors.Add(1) }
func IncrYouTubeSearch()       { metrics.YouTubeSearchRequests.Add(1) }
func IncrYouTubeSearchErrors() { metrics.YouTubeSearchErrors.Add(1) }
func IncrYouTubeTranscript()   { metrics.YouTubeTranscriptRequests.Add(1) }
func IncrQuizRequests()        { metrics.QuizRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}

package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
// Credentials live here and are handed to the components that make the
// external calls; nothing reads them from package state.
type Config struct {
	HTTPPort string
	MCPPort  string

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int

	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string

	MaxKeywords            int
	StudyResultsPerKeyword int
	FunResults             int
	SearchConcurrency      int
	SearchMaxRetries       int
	QuizQuestions          int
	FetchTimeout           time.Duration

	RedisURL             string
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	CORSOrigins []string
	HTTPClient  *http.Client
}

// WithDefaults fills zero values with the service defaults.
func (c Config) WithDefaults() Config {
	if c.HTTPPort == "" {
		c.HTTPPort = "5000"
	}
	if c.MCPPort == "" {
		c.MCPPort = "8891"
	}
	if c.MaxKeywords <= 0 {
		c.MaxKeywords = 8
	}
	if c.StudyResultsPerKeyword <= 0 {
		c.StudyResultsPerKeyword = 5
	}
	if c.FunResults <= 0 {
		c.FunResults = 10
	}
	if c.SearchConcurrency <= 0 {
		c.SearchConcurrency = 4
	}
	if c.SearchMaxRetries < 0 {
		c.SearchMaxRetries = 0
	}
	if c.QuizQuestions <= 0 {
		c.QuizQuestions = 5
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 15 * time.Minute
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

// SearchRetryConfig is the retry policy for a single video search. With
// SearchMaxRetries=0 each query gets exactly one attempt.
func (c Config) SearchRetryConfig() RetryConfig {
	rc := DefaultRetryConfig
	rc.MaxRetries = c.SearchMaxRetries
	return rc
}

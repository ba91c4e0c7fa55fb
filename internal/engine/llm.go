package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Completer sends a single-turn prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// NewLLMCompleter builds an OpenAI-compatible chat client from the config.
func NewLLMCompleter(c Config) Completer {
	client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return client.Complete(ctx, "", prompt)
	})
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// callLLM sends a prompt and returns the fence-stripped response text.
func callLLM(ctx context.Context, c Completer, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	resp, err := c.Complete(ctx, prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(resp), nil
}

// KeywordExtractor turns a study prompt into YouTube search phrases.
type KeywordExtractor struct {
	llm   Completer
	cache *Cache
	max   int
}

// NewKeywordExtractor returns an extractor capped at max keywords.
// cache may be nil.
func NewKeywordExtractor(c Completer, cache *Cache, max int) *KeywordExtractor {
	if max <= 0 {
		max = 8
	}
	return &KeywordExtractor{llm: c, cache: cache, max: max}
}

// Extract returns the ordered, de-duplicated keyword list for prompt.
// A model failure is reported as an upstream error; an answer that yields no
// keywords is a successful empty result.
func (k *KeywordExtractor) Extract(ctx context.Context, prompt string) ([]string, error) {
	metrics.KeywordExtractions.Add(1)

	prompt = strings.TrimSpace(prompt)
	cacheKey := CacheKey("keywords", prompt, fmt.Sprint(k.max))
	if out, ok := CacheLoadJSON[[]string](ctx, k.cache, cacheKey); ok {
		return out, nil
	}

	raw, err := callLLM(ctx, k.llm, fmt.Sprintf(keywordsPrompt, k.max, prompt))
	if err != nil {
		return nil, Upstream("keyword extraction", err)
	}

	keywords := DedupKeywords(parseKeywordList(raw))
	if len(keywords) > k.max {
		keywords = keywords[:k.max]
	}
	CacheStoreJSON(ctx, k.cache, cacheKey, keywords)
	return keywords, nil
}

// parseKeywordList accepts either a JSON array of strings or a comma / newline
// separated list, the shape older prompts produced.
func parseKeywordList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, cleanKeyword(f))
	}
	return out
}

// listNumberRe matches "1. " or "2) " list markers, not decimals like "3.5 mm".
var listNumberRe = regexp.MustCompile(`^\d{1,3}[.)]\s+`)

// cleanKeyword strips list bullets, numbering and quotes.
func cleanKeyword(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*• ")
	s = listNumberRe.ReplaceAllString(s, "")
	s = strings.Trim(strings.TrimSpace(s), `"'[]`)
	return strings.TrimSpace(s)
}

// DedupKeywords trims each keyword, drops empties and keeps the first
// occurrence of each, preserving input order.
func DedupKeywords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"google.golang.org/api/googleapi"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
)

const (
	ytInitialDataMarker = "ytInitialData = "
	ytSearchFilter      = "EgIQAQ%3D%3D" // videos only
	ytDataAPIMaxResults = 50
	ytPageMaxBytes      = 6 * 1024 * 1024
)

// ISO 8601 duration as returned in contentDetails.duration (PT#H#M#S).
var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration converts an ISO 8601 video duration to seconds.
// Returns 0 for empty or malformed input.
func parseISODuration(s string) int {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	mult := []int{86400, 3600, 60, 1}
	total := 0
	for i, part := range m[1:] {
		if part == "" {
			continue
		}
		n, _ := strconv.Atoi(part)
		total += n * mult[i]
	}
	return total
}

// parseClockDuration converts a "4:13" or "1:02:03" length label to seconds.
func parseClockDuration(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

// --- Data API v3 ---

// searchDataAPI tries each configured key in order; a quota or auth error on
// the primary key moves on to the fallback.
func (y *YouTube) searchDataAPI(ctx context.Context, query string, maxResults int) ([]engine.Candidate, error) {
	var lastErr error
	for _, key := range y.apiKeys {
		cands, err := y.dataSearch(ctx, query, maxResults, key)
		if err == nil {
			return cands, nil
		}
		lastErr = err
		slog.Debug("youtube data API key failed, trying fallback", slog.Any("error", err))
	}
	return nil, lastErr
}

func (y *YouTube) dataSearch(ctx context.Context, query string, maxResults int, key string) ([]engine.Candidate, error) {
	keyParam := googleapi.QueryParameter("key", key)
	resp, err := y.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(min(maxResults, ytDataAPIMaxResults))).
		Context(ctx).
		Do(keyParam)
	if err != nil {
		return nil, apiError("search.list", err)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}

	// durations are best effort; a failed lookup leaves them unknown
	durations := make(map[string]int, len(ids))
	if len(ids) > 0 {
		vresp, err := y.svc.Videos.List([]string{"contentDetails"}).Id(ids...).Context(ctx).Do(keyParam)
		if err != nil {
			slog.Debug("youtube: videos.list failed", slog.Any("error", err))
		} else {
			for _, v := range vresp.Items {
				if v.ContentDetails != nil {
					durations[v.Id] = parseISODuration(v.ContentDetails.Duration)
				}
			}
		}
	}

	cands := make([]engine.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		c := engine.Candidate{
			ID:      item.Id.VideoId,
			Title:   html.UnescapeString(item.Snippet.Title),
			URL:     ytWatchURL + item.Id.VideoId,
			Channel: html.UnescapeString(item.Snippet.ChannelTitle),
		}
		if d, ok := durations[item.Id.VideoId]; ok && d > 0 {
			c.DurationSeconds = &d
		}
		cands = append(cands, c)
	}
	return cands, nil
}

// apiError keeps the API's status and message in the error text.
func apiError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("youtube %s: HTTP %d: %s", op, gerr.Code, gerr.Message)
	}
	return fmt.Errorf("youtube %s: %w", op, err)
}

// --- ytInitialData scraping ---

type ytRuns struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (r ytRuns) first() string {
	if len(r.Runs) == 0 {
		return ""
	}
	return r.Runs[0].Text
}

type ytVideoRenderer struct {
	VideoID        string `json:"videoId"`
	Title          ytRuns `json:"title"`
	OwnerText      ytRuns `json:"ownerText"`
	LongBylineText ytRuns `json:"longBylineText"`
	LengthText     *struct {
		SimpleText string `json:"simpleText"`
	} `json:"lengthText"`
}

type ytInitialData struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []struct {
						ItemSectionRenderer *struct {
							Contents []struct {
								VideoRenderer *ytVideoRenderer `json:"videoRenderer"`
							} `json:"contents"`
						} `json:"itemSectionRenderer"`
					} `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

func (y *YouTube) searchScrape(ctx context.Context, query string, maxResults int) ([]engine.Candidate, error) {
	searchURL := y.webBase + "/results?search_query=" + url.QueryEscape(query) + "&sp=" + ytSearchFilter
	body, err := y.getPage(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("youtube search page: %w", err)
	}
	data, err := scriptJSON(body, ytInitialDataMarker)
	if err != nil {
		return nil, err
	}
	var initial ytInitialData
	if err := json.Unmarshal(data, &initial); err != nil {
		return nil, fmt.Errorf("decode ytInitialData: %w", err)
	}
	return candidatesFromInitialData(initial, maxResults), nil
}

func candidatesFromInitialData(data ytInitialData, maxResults int) []engine.Candidate {
	cands := []engine.Candidate{}
	sections := data.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents
	for _, section := range sections {
		if section.ItemSectionRenderer == nil {
			continue
		}
		for _, item := range section.ItemSectionRenderer.Contents {
			if len(cands) >= maxResults {
				return cands
			}
			vr := item.VideoRenderer
			if vr == nil || vr.VideoID == "" {
				continue
			}
			channel := vr.OwnerText.first()
			if channel == "" {
				channel = vr.LongBylineText.first()
			}
			c := engine.Candidate{
				ID:      vr.VideoID,
				Title:   vr.Title.first(),
				URL:     ytWatchURL + vr.VideoID,
				Channel: channel,
			}
			// live streams carry no length label
			if vr.LengthText != nil {
				if d, ok := parseClockDuration(vr.LengthText.SimpleText); ok && d > 0 {
					c.DurationSeconds = &d
				}
			}
			cands = append(cands, c)
		}
	}
	return cands
}

// getPage fetches a youtube.com HTML page with a browser User-Agent.
func (y *YouTube) getPage(ctx context.Context, pageURL string) ([]byte, error) {
	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return y.client.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, ytPageMaxBytes))
}

// scriptJSON finds the first <script> whose text contains marker and returns
// the JSON object that follows it.
func scriptJSON(page []byte, marker string) ([]byte, error) {
	z := html.NewTokenizer(bytes.NewReader(page))
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return nil, fmt.Errorf("%q not found in page", strings.TrimSpace(marker))
			}
			return nil, z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			text := z.Text()
			idx := bytes.Index(text, []byte(marker))
			if idx < 0 {
				continue
			}
			if obj := extractJSON(text[idx+len(marker):]); obj != nil {
				return bytes.Clone(obj), nil
			}
			return nil, fmt.Errorf("malformed JSON after %q", strings.TrimSpace(marker))
		}
	}
}

// extractJSON returns the complete JSON object starting at b[0] == '{' by
// tracking brace depth outside string literals.
func extractJSON(b []byte) []byte {
	b = bytes.TrimLeft(b, " \t")
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

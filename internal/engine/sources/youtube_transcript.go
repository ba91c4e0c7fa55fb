package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
)

// Transcript fetching.
// Primary:  watch page ytInitialPlayerResponse → captionTracks → timedtext XML
// Fallback: ANDROID Innertube /player → captionTracks

const (
	ytPlayerResponseMarker = "ytInitialPlayerResponse = "
	ytAndroidVersion       = "20.10.38"
	ytAndroidUA            = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
	ytTimedTextMaxBytes    = 512 * 1024
)

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// Transcript returns the plain caption text of videoID.
func (y *YouTube) Transcript(ctx context.Context, videoID string) (string, error) {
	engine.IncrYouTubeTranscript()

	cacheKey := engine.CacheKey("transcript", videoID)
	if text, ok := engine.CacheLoadJSON[string](ctx, y.cache, cacheKey); ok {
		return text, nil
	}

	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	text, err := y.transcriptViaWatchPage(ctx, videoID)
	if err != nil {
		slog.Warn("youtube: watch page transcript failed, trying player",
			slog.String("id", videoID), slog.Any("error", err))
		text, err = y.transcriptViaPlayer(ctx, videoID)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty transcript")
	}

	engine.CacheStoreJSON(ctx, y.cache, cacheKey, text)
	return text, nil
}

func (y *YouTube) transcriptViaWatchPage(ctx context.Context, videoID string) (string, error) {
	body, err := y.getPage(ctx, y.webBase+"/watch?v="+videoID)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}
	data, err := scriptJSON(body, ytPlayerResponseMarker)
	if err != nil {
		return "", err
	}
	var pr playerResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return "", fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return y.transcriptFromPlayer(ctx, pr)
}

func (y *YouTube) transcriptViaPlayer(ctx context.Context, videoID string) (string, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{Client: innertubeClient{
			ClientName:        "ANDROID",
			ClientVersion:     ytAndroidVersion,
			AndroidSdkVersion: 30,
			Hl:                "en",
			Gl:                "US",
		}},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return "", err
	}

	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			y.webBase+"/youtubei/v1/player?prettyPrint=false", bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return y.client.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("android player: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("android player: HTTP %d", resp.StatusCode)
	}

	var pr playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", fmt.Errorf("decode player: %w", err)
	}
	return y.transcriptFromPlayer(ctx, pr)
}

func (y *YouTube) transcriptFromPlayer(ctx context.Context, pr playerResponse) (string, error) {
	if pr.Captions == nil {
		if pr.PlayabilityStatus != nil && pr.PlayabilityStatus.Reason != "" {
			return "", fmt.Errorf("captions unavailable: %s", pr.PlayabilityStatus.Reason)
		}
		return "", errors.New("no captions in player response")
	}
	tracks := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", errors.New("no caption tracks")
	}
	track, ok := pickBestTrack(tracks, y.langs)
	if !ok {
		return "", errors.New("all caption tracks require PoToken")
	}
	return y.fetchTimedText(ctx, track.BaseURL)
}

// needsPoToken reports whether a caption URL only works in a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track, then the first usable one.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

func (y *YouTube) fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return y.client.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, ytTimedTextMaxBytes))
	if err != nil {
		return "", err
	}
	return parseTimedText(body)
}

// parseTimedText joins the caption lines of a timedtext XML document.
func parseTimedText(body []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}
	var sb strings.Builder
	for _, line := range tt.Lines {
		// captions are entity-escaped twice: once for XML, once for HTML
		text := engine.CleanHTML(html.UnescapeString(line.Text))
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

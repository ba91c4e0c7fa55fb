package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const quizTranscriptMaxRunes = 8000

var videoIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ValidVideoID reports whether id looks like an 11-char YouTube video id.
func ValidVideoID(id string) bool {
	return videoIDRE.MatchString(id)
}

// TranscriptFetcher returns the plain-text captions of a video.
type TranscriptFetcher interface {
	Transcript(ctx context.Context, videoID string) (string, error)
}

// QuizGenerator writes multiple-choice questions about a video from its transcript.
type QuizGenerator struct {
	llm         Completer
	transcripts TranscriptFetcher
	cache       *Cache
	questions   int
}

// NewQuizGenerator returns a generator producing n questions per quiz.
func NewQuizGenerator(c Completer, tf TranscriptFetcher, cache *Cache, n int) *QuizGenerator {
	if n <= 0 {
		n = 5
	}
	return &QuizGenerator{llm: c, transcripts: tf, cache: cache, questions: n}
}

// Generate builds the quiz for videoID.
func (g *QuizGenerator) Generate(ctx context.Context, videoID string) ([]QuizQuestion, error) {
	IncrQuizRequests()

	videoID = strings.TrimSpace(videoID)
	if !ValidVideoID(videoID) {
		return nil, Validationf("youtubeId must be an 11-character YouTube video id, got %q", videoID)
	}

	cacheKey := CacheKey("quiz", videoID, fmt.Sprint(g.questions))
	if out, ok := CacheLoadJSON[[]QuizQuestion](ctx, g.cache, cacheKey); ok {
		return out, nil
	}

	transcript, err := g.transcripts.Transcript(ctx, videoID)
	if err != nil {
		return nil, Upstream("transcript", err)
	}
	transcript = TruncateRunes(transcript, quizTranscriptMaxRunes, "...")

	raw, err := callLLM(ctx, g.llm, fmt.Sprintf(quizPrompt, g.questions, transcript))
	if err != nil {
		return nil, Upstream("quiz generation", err)
	}

	questions, err := parseQuiz(raw)
	if err != nil {
		return nil, Upstream("quiz generation", err)
	}
	CacheStoreJSON(ctx, g.cache, cacheKey, questions)
	return questions, nil
}

// parseQuiz decodes the model answer and keeps only well-formed questions.
func parseQuiz(raw string) ([]QuizQuestion, error) {
	var parsed []QuizQuestion
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse quiz: %w", err)
	}

	out := make([]QuizQuestion, 0, len(parsed))
	for _, q := range parsed {
		q.Question = strings.TrimSpace(q.Question)
		q.Answer = strings.ToUpper(strings.TrimSpace(q.Answer))
		if len(q.Answer) > 1 {
			q.Answer = q.Answer[:1]
		}
		if q.Question == "" || len(q.Options) != 4 || !strings.Contains("ABCD", q.Answer) || q.Answer == "" {
			continue
		}
		for i, opt := range q.Options {
			q.Options[i] = optionWithLetter(i, opt)
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, errors.New("no usable quiz questions in model answer")
	}
	return out, nil
}

// optionWithLetter makes sure option i starts with its "A) " style prefix;
// the client takes the first character of an option as its letter.
func optionWithLetter(i int, opt string) string {
	opt = strings.TrimSpace(opt)
	letter := string(rune('A' + i))
	if strings.HasPrefix(opt, letter+")") || strings.HasPrefix(opt, letter+".") {
		return opt
	}
	return letter + ") " + opt
}

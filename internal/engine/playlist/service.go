package playlist

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
)

// KeywordSource extracts search keywords from a study prompt.
type KeywordSource interface {
	Extract(ctx context.Context, prompt string) ([]string, error)
}

// Request is a validated-on-entry playlist request.
type Request struct {
	StudyTopic string
	Duration   string
	FunTheme   string
	Level      int
}

// Options are the per-service result caps.
type Options struct {
	StudyResultsPerKeyword int
	FunResults             int
}

// Service runs the whole pipeline: keywords, study and fun searches, interleave.
type Service struct {
	keywords KeywordSource
	builder  *Builder
	opts     Options
}

// NewService wires a playlist service.
func NewService(keywords KeywordSource, builder *Builder, opts Options) *Service {
	if opts.StudyResultsPerKeyword <= 0 {
		opts.StudyResultsPerKeyword = 5
	}
	if opts.FunResults <= 0 {
		opts.FunResults = 10
	}
	return &Service{keywords: keywords, builder: builder, opts: opts}
}

// validated holds the parsed form of a Request.
type validated struct {
	topic  string
	theme  string
	bucket Bucket
	policy InsertionPolicy
}

func validate(req Request) (validated, error) {
	v := validated{
		topic: strings.TrimSpace(req.StudyTopic),
		theme: strings.TrimSpace(req.FunTheme),
	}
	if v.topic == "" {
		return v, engine.Validationf("studyTopic is required")
	}
	if v.theme == "" {
		return v, engine.Validationf("randomTheme is required")
	}
	var err error
	if v.bucket, err = ParseBucket(req.Duration); err != nil {
		return v, err
	}
	if v.policy, err = ParseLevel(req.Level); err != nil {
		return v, err
	}
	return v, nil
}

// Build validates req before any external call, then produces the playlist.
// Only a keyword extraction failure fails the request; search failures
// shrink the result.
func (s *Service) Build(ctx context.Context, req Request) (engine.PlaylistOutput, error) {
	v, err := validate(req)
	if err != nil {
		return engine.PlaylistOutput{}, err
	}
	engine.IncrPlaylistRequests()

	var out engine.PlaylistOutput
	err = engine.TrackOperation(ctx, "build_playlist", 10*time.Second, func(ctx context.Context) error {
		keywords, err := s.keywords.Extract(ctx, v.topic)
		if err != nil {
			if engine.KindOf(err) == "" {
				err = engine.Upstream("keyword extraction", err)
			}
			return err
		}

		study := s.builder.Build(ctx, keywords, s.opts.StudyResultsPerKeyword, v.bucket, false)
		fun := s.builder.Build(ctx, []string{v.theme}, s.opts.FunResults, BucketNone, true)

		out = engine.PlaylistOutput{
			StudyTopic: v.topic,
			Keywords:   keywords,
			Videos:     Interleave(study, fun, v.policy.InsertAfter()),
		}
		slog.Info("playlist: built",
			slog.String("topic", v.topic),
			slog.Int("keywords", len(keywords)),
			slog.Int("study", len(study)),
			slog.Int("fun", len(fun)),
			slog.Int("insert_after", v.policy.InsertAfter()))
		return nil
	})
	if err != nil {
		engine.IncrPlaylistErrors()
		return engine.PlaylistOutput{}, err
	}
	return out, nil
}

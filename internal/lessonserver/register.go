// Package lessonserver exposes the playlist, keyword and quiz operations as
// MCP tools.
package lessonserver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
	"github.com/anatolykoptev/go_chaoslearn/internal/engine/playlist"
	"github.com/anatolykoptev/go_chaoslearn/internal/toolutil"
)

// PlaylistBuilder builds a study playlist.
type PlaylistBuilder interface {
	Build(ctx context.Context, req playlist.Request) (engine.PlaylistOutput, error)
}

// QuizMaker writes quiz questions for a video.
type QuizMaker interface {
	Generate(ctx context.Context, videoID string) ([]engine.QuizQuestion, error)
}

// Deps are the services behind the tools.
type Deps struct {
	Playlists PlaylistBuilder
	Keywords  playlist.KeywordSource
	Quizzes   QuizMaker
}

// RegisterTools registers build_playlist, extract_keywords and video_quiz.
// It returns the number of tools registered.
func RegisterTools(server *mcp.Server, d Deps) int {
	registerBuildPlaylist(server, d.Playlists)
	registerExtractKeywords(server, d.Keywords)
	registerVideoQuiz(server, d.Quizzes)
	return 3
}

func registerBuildPlaylist(server *mcp.Server, svc PlaylistBuilder) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_playlist",
		Description: "Build a study playlist for a topic. Extracts search keywords with an LLM, searches YouTube per keyword, keeps videos in the requested length bucket (short <4 min, medium 4-20 min, long >20 min), and inserts short fun videos on a theme between study videos. Level 1-5 sets how often fun videos appear (1: after every 5 study videos, 5: after every one).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.PlaylistInput) (*mcp.CallToolResult, engine.PlaylistOutput, error) {
		out, err := svc.Build(ctx, toolutil.PlaylistRequest(input))
		if err != nil {
			slog.Warn("build_playlist failed", slog.String("topic", input.StudyTopic), slog.Any("error", err))
			return nil, engine.PlaylistOutput{}, toolutil.ToolError(err)
		}
		return nil, out, nil
	})
}

func registerExtractKeywords(server *mcp.Server, src playlist.KeywordSource) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_keywords",
		Description: "Extract an ordered, de-duplicated list of YouTube search keywords from free text describing what someone wants to learn.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.KeywordsInput) (*mcp.CallToolResult, engine.KeywordsOutput, error) {
		prompt := strings.TrimSpace(input.Prompt)
		if prompt == "" {
			return nil, engine.KeywordsOutput{}, toolutil.ToolError(engine.Validationf("prompt is required"))
		}
		keywords, err := src.Extract(ctx, prompt)
		if err != nil {
			return nil, engine.KeywordsOutput{}, toolutil.ToolError(err)
		}
		return nil, engine.KeywordsOutput{Keywords: keywords}, nil
	})
}

func registerVideoQuiz(server *mcp.Server, quizzes QuizMaker) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_quiz",
		Description: "Generate multiple-choice questions about a YouTube video from its captions. Each question has four options prefixed A) to D) and the letter of the correct answer.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.QuizInput) (*mcp.CallToolResult, engine.QuizOutput, error) {
		questions, err := quizzes.Generate(ctx, input.YouTubeID)
		if err != nil {
			return nil, engine.QuizOutput{}, toolutil.ToolError(err)
		}
		return nil, engine.QuizOutput{YouTubeID: input.YouTubeID, Questions: questions}, nil
	})
}

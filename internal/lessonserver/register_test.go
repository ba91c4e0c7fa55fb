package lessonserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
	"github.com/anatolykoptev/go_chaoslearn/internal/engine/playlist"
)

type stubPlaylists struct {
	got playlist.Request
	err error
}

func (s *stubPlaylists) Build(_ context.Context, req playlist.Request) (engine.PlaylistOutput, error) {
	s.got = req
	if s.err != nil {
		return engine.PlaylistOutput{}, s.err
	}
	return engine.PlaylistOutput{
		StudyTopic: req.StudyTopic,
		Keywords:   []string{"goroutines"},
		Videos: []engine.VideoRecord{
			{Title: "Goroutines", URL: "https://www.youtube.com/watch?v=aaaaaaaaaaa", Channel: "GoChan", DurationSeconds: 300},
			{Title: "Cats", URL: "https://www.youtube.com/watch?v=bbbbbbbbbbb", Channel: engine.UnknownChannel, IsFun: true},
		},
	}, nil
}

type stubKeywords struct{}

func (stubKeywords) Extract(_ context.Context, prompt string) ([]string, error) {
	return []string{"ml", "ai"}, nil
}

type stubQuizzes struct{}

func (stubQuizzes) Generate(_ context.Context, id string) ([]engine.QuizQuestion, error) {
	if !engine.ValidVideoID(id) {
		return nil, engine.Validationf("bad id %q", id)
	}
	return []engine.QuizQuestion{{Question: "Q?", Options: []string{"A) a", "B) b", "C) c", "D) d"}, Answer: "B"}}, nil
}

func connect(t *testing.T, d Deps) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "chaoslearn", Version: "test"}, nil)
	require.Equal(t, 3, RegisterTools(server, d))

	clientT, serverT := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, serverT, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func decodeStructured[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestListTools(t *testing.T) {
	session := connect(t, Deps{Playlists: &stubPlaylists{}, Keywords: stubKeywords{}, Quizzes: stubQuizzes{}})

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"build_playlist", "extract_keywords", "video_quiz"}, names)
}

func TestBuildPlaylistTool(t *testing.T) {
	svc := &stubPlaylists{}
	session := connect(t, Deps{Playlists: svc, Keywords: stubKeywords{}, Quizzes: stubQuizzes{}})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "build_playlist",
		Arguments: map[string]any{
			"study_topic": "Go concurrency",
			"fun_theme":   "cats",
			"duration":    "short",
			"level":       3,
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	assert.Equal(t, playlist.Request{StudyTopic: "Go concurrency", Duration: "short", FunTheme: "cats", Level: 3}, svc.got)
	out := decodeStructured[engine.PlaylistOutput](t, res)
	require.Len(t, out.Videos, 2)
	assert.True(t, out.Videos[1].IsFun)
}

func TestBuildPlaylistToolError(t *testing.T) {
	svc := &stubPlaylists{err: engine.Upstream("keyword extraction", errors.New("llm down"))}
	session := connect(t, Deps{Playlists: svc, Keywords: stubKeywords{}, Quizzes: stubQuizzes{}})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "build_playlist",
		Arguments: map[string]any{"study_topic": "x", "fun_theme": "y"},
	})
	if err == nil {
		assert.True(t, res.IsError)
	}
}

func TestExtractKeywordsTool(t *testing.T) {
	session := connect(t, Deps{Playlists: &stubPlaylists{}, Keywords: stubKeywords{}, Quizzes: stubQuizzes{}})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "extract_keywords",
		Arguments: map[string]any{"prompt": "machine learning basics"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, []string{"ml", "ai"}, decodeStructured[engine.KeywordsOutput](t, res).Keywords)
}

type countingKeywords struct {
	calls int
}

func (c *countingKeywords) Extract(_ context.Context, _ string) ([]string, error) {
	c.calls++
	return []string{"ml"}, nil
}

func TestExtractKeywordsToolRejectsBlankPrompt(t *testing.T) {
	kw := &countingKeywords{}
	session := connect(t, Deps{Playlists: &stubPlaylists{}, Keywords: kw, Quizzes: stubQuizzes{}})

	for _, prompt := range []string{"", "   \n\t"} {
		res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      "extract_keywords",
			Arguments: map[string]any{"prompt": prompt},
		})
		if err == nil {
			assert.True(t, res.IsError, "prompt %q", prompt)
		}
	}
	assert.Zero(t, kw.calls)
}

func TestVideoQuizTool(t *testing.T) {
	session := connect(t, Deps{Playlists: &stubPlaylists{}, Keywords: stubKeywords{}, Quizzes: stubQuizzes{}})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "video_quiz",
		Arguments: map[string]any{"youtube_id": "dQw4w9WgXcQ"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	out := decodeStructured[engine.QuizOutput](t, res)
	require.Len(t, out.Questions, 1)
	assert.Equal(t, "B", out.Questions[0].Answer)

	res, err = session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "video_quiz",
		Arguments: map[string]any{"youtube_id": "nope"},
	})
	if err == nil {
		assert.True(t, res.IsError)
	}
}

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

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

// processRequest is the payload sent by the web client.
type processRequest struct {
	StudyTopic  string              `json:"studyTopic"`
	Duration    toolutil.FlexString `json:"duration"`
	SliderValue toolutil.FlexInt    `json:"sliderValue"`
	RandomTheme string              `json:"randomTheme"`
}

type quizRequest struct {
	YouTubeID string `json:"youtubeId"`
}

type keywordsRequest struct {
	Prompt string `json:"prompt"`
}

type PlaylistHandler struct {
	svc PlaylistBuilder
}

func NewPlaylistHandler(svc PlaylistBuilder) *PlaylistHandler {
	return &PlaylistHandler{svc: svc}
}

// Process builds a playlist and answers with the bare video list.
func (h *PlaylistHandler) Process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, engine.Validationf("invalid request body: %v", err))
		return
	}
	out, err := h.svc.Build(c.Request.Context(), playlist.Request{
		StudyTopic: req.StudyTopic,
		Duration:   string(req.Duration),
		FunTheme:   req.RandomTheme,
		Level:      int(req.SliderValue),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, out.Videos)
}

type KeywordsHandler struct {
	src playlist.KeywordSource
}

func NewKeywordsHandler(src playlist.KeywordSource) *KeywordsHandler {
	return &KeywordsHandler{src: src}
}

func (h *KeywordsHandler) Extract(c *gin.Context) {
	var req keywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, engine.Validationf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respondServiceError(c, engine.Validationf("prompt is required"))
		return
	}
	keywords, err := h.src.Extract(c.Request.Context(), req.Prompt)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, engine.KeywordsOutput{Keywords: keywords})
}

type QuizHandler struct {
	quizzes QuizMaker
}

func NewQuizHandler(q QuizMaker) *QuizHandler {
	return &QuizHandler{quizzes: q}
}

// Generate answers with the bare question list.
func (h *QuizHandler) Generate(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, engine.Validationf("invalid request body: %v", err))
		return
	}
	questions, err := h.quizzes.Generate(c.Request.Context(), req.YouTubeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, questions)
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Metrics renders the process counters as plain text.
func Metrics(c *gin.Context) {
	c.String(http.StatusOK, engine.FormatMetrics())
}

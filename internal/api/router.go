// Package api serves the playlist, quiz and keyword operations over REST
// for the web client.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine/playlist"
)

type RouterConfig struct {
	Playlists   PlaylistBuilder
	Keywords    playlist.KeywordSource
	Quizzes     QuizMaker
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(CORS(cfg.CORSOrigins))

	r.GET("/healthcheck", HealthCheck)
	r.GET("/metrics", Metrics)

	if cfg.Playlists != nil {
		r.POST("/process", NewPlaylistHandler(cfg.Playlists).Process)
	}
	if cfg.Keywords != nil {
		r.POST("/keywords", NewKeywordsHandler(cfg.Keywords).Extract)
	}
	if cfg.Quizzes != nil {
		r.POST("/quiz", NewQuizHandler(cfg.Quizzes).Generate)
	}
	return r
}

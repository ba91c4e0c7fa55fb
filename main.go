// go_chaoslearn builds study playlists with fun breaks.
//
// Serves the web client over REST (gin) and exposes the same operations as
// MCP tools: build_playlist, extract_keywords, video_quiz.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_chaoslearn/internal/api"
	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
	"github.com/anatolykoptev/go_chaoslearn/internal/engine/playlist"
	"github.com/anatolykoptev/go_chaoslearn/internal/engine/sources"
	"github.com/anatolykoptev/go_chaoslearn/internal/lessonserver"
)

var version = "dev"

func main() {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()
	initLogger(env.Str("LOG_LEVEL", "info"))

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func loadConfig() engine.Config {
	c := engine.Config{
		HTTPPort:               env.Str("HTTP_PORT", "5000"),
		MCPPort:                env.Str("MCP_PORT", "8891"),
		LLMAPIKey:              env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:     env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:             env.Str("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMModel:               env.Str("LLM_MODEL", "gpt-4o-mini"),
		LLMTemperature:         env.Float("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:           env.Int("LLM_MAX_TOKENS", 2048),
		YouTubeAPIKey:          env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback:  env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		MaxKeywords:            env.Int("MAX_KEYWORDS", 8),
		StudyResultsPerKeyword: env.Int("STUDY_RESULTS_PER_KEYWORD", 5),
		FunResults:             env.Int("FUN_RESULTS", 10),
		SearchConcurrency:      env.Int("SEARCH_CONCURRENCY", 4),
		SearchMaxRetries:       env.Int("SEARCH_MAX_RETRIES", 0),
		QuizQuestions:          env.Int("QUIZ_QUESTIONS", 5),
		FetchTimeout:           env.Duration("FETCH_TIMEOUT", 10*time.Second),
		RedisURL:               env.Str("REDIS_URL", ""),
		CacheTTL:               env.Duration("CACHE_TTL", 15*time.Minute),
		CacheMaxEntries:        env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval:   env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		CORSOrigins:            env.List("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	return c.WithDefaults()
}

// app holds the wired services shared by every command.
type app struct {
	cache     *engine.Cache
	playlists *playlist.Service
	keywords  *engine.KeywordExtractor
	quizzes   *engine.QuizGenerator
}

func newApp(ctx context.Context, cfg engine.Config) (*app, error) {
	cache := engine.NewCache(ctx, cfg.RedisURL, cfg.CacheTTL, cfg.CacheMaxEntries, cfg.CacheCleanupInterval)

	yt, err := sources.NewYouTube(ctx, cfg, cache)
	if err != nil {
		return nil, err
	}
	if cfg.YouTubeAPIKey == "" {
		slog.Info("youtube: no API key, searching by page scrape")
	}
	if cfg.LLMAPIKey == "" {
		slog.Warn("llm: LLM_API_KEY is empty, keyword extraction and quizzes will fail")
	}

	completer := engine.NewLLMCompleter(cfg)
	keywords := engine.NewKeywordExtractor(completer, cache, cfg.MaxKeywords)
	playlists := playlist.NewService(keywords, playlist.NewBuilder(yt, cfg.SearchConcurrency), playlist.Options{
		StudyResultsPerKeyword: cfg.StudyResultsPerKeyword,
		FunResults:             cfg.FunResults,
	})
	return &app{
		cache:     cache,
		playlists: playlists,
		keywords:  keywords,
		quizzes:   engine.NewQuizGenerator(completer, yt, cache, cfg.QuizQuestions),
	}, nil
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		slog.Warn("cache close failed", slog.Any("error", err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "chaoslearn",
		Short:        "Study playlists with fun breaks",
		Long:         "chaoslearn builds YouTube study playlists for a topic and splices short fun videos in between.",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("chaoslearn version {{.Version}}\n")

	serve := newServeCmd()
	rootCmd.RunE = serve.RunE
	rootCmd.Flags().AddFlagSet(serve.Flags())

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(newPlaylistCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	var restOnly bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and the MCP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := loadConfig()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			httpSrv := &http.Server{
				Addr: ":" + cfg.HTTPPort,
				Handler: api.NewRouter(api.RouterConfig{
					Playlists:   a.playlists,
					Keywords:    a.keywords,
					Quizzes:     a.quizzes,
					CORSOrigins: cfg.CORSOrigins,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			restErr := make(chan error, 1)
			go func() {
				slog.Info("starting REST API", slog.String("port", cfg.HTTPPort))
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					restErr <- err
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpSrv.Shutdown(shutdownCtx); err != nil {
					slog.Warn("REST shutdown failed", slog.Any("error", err))
				}
			}()

			var mcpErr chan error
			if !restOnly {
				server := mcp.NewServer(&mcp.Implementation{
					Name:    "go_chaoslearn",
					Version: version,
				}, nil)
				n := lessonserver.RegisterTools(server, lessonserver.Deps{
					Playlists: a.playlists,
					Keywords:  a.keywords,
					Quizzes:   a.quizzes,
				})
				slog.Info("tools registered", slog.Int("count", n), slog.String("port", cfg.MCPPort))

				mcpErr = make(chan error, 1)
				go func() {
					mcpErr <- mcpserver.Run(server, mcpserver.Config{
						Name:         "go_chaoslearn",
						Version:      version,
						Port:         cfg.MCPPort,
						WriteTimeout: 300 * time.Second,
						Metrics:      engine.FormatMetrics,
					})
				}()
			}

			// whichever server stops first ends the process
			select {
			case <-ctx.Done():
				return nil
			case err := <-restErr:
				slog.Error("REST API failed", slog.Any("error", err))
				return fmt.Errorf("rest api: %w", err)
			case err := <-mcpErr:
				return err
			}
		},
	}
	cmd.Flags().BoolVar(&restOnly, "rest-only", false, "Serve only the REST API, without the MCP server")
	return cmd
}

func newPlaylistCmd() *cobra.Command {
	var (
		topic    string
		theme    string
		duration string
		level    int
	)

	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Build one playlist and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := playlist.Request{
				StudyTopic: topic,
				Duration:   duration,
				FunTheme:   theme,
				Level:      level,
			}
			return runPlaylist(cmd, loadConfig(), req)
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "What to study (required)")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme of the fun videos (required)")
	cmd.Flags().StringVarP(&duration, "duration", "d", "medium", "Study video length: short, medium or long")
	cmd.Flags().IntVarP(&level, "level", "l", 1, "Random level 1-5; higher means more fun videos")
	return cmd
}

func runPlaylist(cmd *cobra.Command, cfg engine.Config, req playlist.Request) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.playlists.Build(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chaoslearn version %s\n", version)
		},
	}
}

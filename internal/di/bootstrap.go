package di

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/divyampandey/pixel-llm-server-go/internal/chatlog"
	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/domain/profile"
	"github.com/divyampandey/pixel-llm-server-go/internal/gemini"
	"github.com/divyampandey/pixel-llm-server-go/internal/handler"
	"github.com/divyampandey/pixel-llm-server-go/internal/metrics"
	"github.com/divyampandey/pixel-llm-server-go/internal/pipeline"
	"github.com/divyampandey/pixel-llm-server-go/internal/randx"
	"github.com/divyampandey/pixel-llm-server-go/internal/server"
	"github.com/divyampandey/pixel-llm-server-go/internal/telemetry"
	"github.com/divyampandey/pixel-llm-server-go/internal/transcript"
)

// InitializeApp wires the application dependencies and returns the App.
func InitializeApp() (*App, error) {
	cfg, err := config.ProvideConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	telemetryProvider, err := telemetry.NewProvider(context.Background(), cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	metricsStore := metrics.NewStore()

	siteProfile, err := profile.Load()
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	geminiClient, err := gemini.NewClient(cfg, metricsStore)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	rng := randx.New(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	pipe := pipeline.New(cfg, rng, metricsStore, logger)

	transcripts, err := transcript.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("transcript store: %w", err)
	}

	chatLogRepo := chatlog.NewRepository(cfg, logger)
	chatLogRecorder := chatlog.NewRecorder(cfg, chatLogRepo, logger)

	chatHandler := handler.NewChatHandler(cfg, geminiClient, siteProfile, pipe, transcripts, chatLogRecorder, logger)
	pipelineHandler := handler.NewPipelineHandler(cfg, pipe, logger)

	router := handler.NewRouter(cfg, logger, metricsStore, chatHandler, pipelineHandler)
	httpServer := server.NewHTTPServer(cfg, router)

	return NewApp(httpServer, logger, cfg, telemetryProvider, transcripts, chatLogRepo, chatLogRecorder), nil
}

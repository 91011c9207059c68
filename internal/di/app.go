package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/divyampandey/pixel-llm-server-go/internal/chatlog"
	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/telemetry"
	"github.com/divyampandey/pixel-llm-server-go/internal/transcript"
)

// App bundles the application components.
type App struct {
	Server          *http.Server
	Logger          *slog.Logger
	Config          *config.Config
	Telemetry       *telemetry.Provider
	Transcripts     *transcript.Store
	ChatLogRepo     *chatlog.Repository
	ChatLogRecorder *chatlog.Recorder
}

// NewApp creates the App instance.
func NewApp(
	server *http.Server,
	logger *slog.Logger,
	cfg *config.Config,
	telemetryProvider *telemetry.Provider,
	transcripts *transcript.Store,
	chatLogRepo *chatlog.Repository,
	chatLogRecorder *chatlog.Recorder,
) *App {
	return &App{
		Server:          server,
		Logger:          logger,
		Config:          cfg,
		Telemetry:       telemetryProvider,
		Transcripts:     transcripts,
		ChatLogRepo:     chatLogRepo,
		ChatLogRecorder: chatLogRecorder,
	}
}

// Close releases app resources. The recorder flushes before its
// repository goes away.
func (a *App) Close() {
	if a.ChatLogRecorder != nil {
		a.ChatLogRecorder.Close()
	}
	if a.ChatLogRepo != nil {
		a.ChatLogRepo.Close()
	}
	if a.Transcripts != nil {
		a.Transcripts.Close()
	}
	if a.Telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Telemetry.Shutdown(shutdownCtx); err != nil && a.Logger != nil {
			a.Logger.Warn("telemetry_shutdown_failed", "err", err)
		}
	}
}

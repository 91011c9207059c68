package di

import (
	"fmt"
	"log/slog"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/logging"
)

// ProvideLogger builds the application logger.
func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

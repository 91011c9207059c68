package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/llm"
	"github.com/divyampandey/pixel-llm-server-go/internal/metrics"
)

func testClient(t *testing.T, cfg *config.Config) *Client {
	t.Helper()
	client, err := NewClient(cfg, metrics.NewStore())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestChatWithoutAPIKey(t *testing.T) {
	cfg := &config.Config{
		Gemini: config.GeminiConfig{Model: "gemini-2.5-flash"},
	}
	client := testClient(t, cfg)

	_, err := client.Chat(context.Background(), Request{Prompt: "hello"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestResolveModels(t *testing.T) {
	cfg := &config.Config{
		Gemini: config.GeminiConfig{
			Model:          "gemini-2.5-flash",
			FallbackModels: []string{"gemini-2.5-flash-lite"},
		},
	}
	client := testClient(t, cfg)

	models := client.resolveModels("")
	if len(models) != 2 || models[0] != "gemini-2.5-flash" {
		t.Fatalf("unexpected failover order: %+v", models)
	}

	models = client.resolveModels("gemini-2.0-flash")
	if len(models) != 1 || models[0] != "gemini-2.0-flash" {
		t.Fatalf("override must win outright: %+v", models)
	}
}

func TestBuildContentsMapsRoles(t *testing.T) {
	history := []llm.HistoryEntry{
		{Role: "user", Content: "What does he build?"},
		{Role: "assistant", Content: "Backend services."},
	}
	contents := buildContents("Anything else?", history)
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	if contents[1].Role != "model" {
		t.Fatalf("assistant history must map to model role, got %s", contents[1].Role)
	}
	if contents[2].Role != "user" {
		t.Fatalf("prompt must be user role, got %s", contents[2].Role)
	}
}

func TestExtractUsageNilSafe(t *testing.T) {
	usage := extractUsage(nil)
	if usage.TotalTokens != 0 {
		t.Fatalf("expected zero usage for nil response")
	}
}

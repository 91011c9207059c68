package health

import (
	"context"
	"testing"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
)

func TestCollectShallowOK(t *testing.T) {
	cfg := &config.Config{
		Gemini: config.GeminiConfig{
			APIKeys: []string{"key"},
			Model:   "gemini-2.5-flash",
		},
	}

	response := Collect(context.Background(), cfg, false)

	if response.Status != "ok" {
		t.Fatalf("expected ok, got %s", response.Status)
	}
	for _, name := range []string{"app", "transcript_store", "gemini", "chat_log"} {
		if _, ok := response.Components[name]; !ok {
			t.Fatalf("missing component %s", name)
		}
	}
	if response.Components["transcript_store"].Detail["deep_checked"] != false {
		t.Fatalf("shallow probe must not deep-check the store")
	}
}

func TestCollectDegradedWithoutAPIKey(t *testing.T) {
	response := Collect(context.Background(), &config.Config{}, false)

	if response.Status != "degraded" {
		t.Fatalf("missing api key must degrade overall status, got %s", response.Status)
	}
	if response.Components["gemini"].Status != "degraded" {
		t.Fatalf("gemini component must be degraded")
	}
}

func TestCollectDeepMemoryStore(t *testing.T) {
	cfg := &config.Config{
		Gemini: config.GeminiConfig{APIKeys: []string{"key"}},
		Transcript: config.TranscriptConfig{
			Enabled:    true,
			TTLMinutes: 30,
		},
	}

	response := Collect(context.Background(), cfg, true)

	store := response.Components["transcript_store"]
	if store.Status != "ok" {
		t.Fatalf("memory-backed store must report ok, got %s", store.Status)
	}
	if store.Detail["backend"] != "memory" {
		t.Fatalf("expected memory backend, got %v", store.Detail["backend"])
	}
	if store.Detail["store_connected"] != true {
		t.Fatalf("memory store must count as connected")
	}
}

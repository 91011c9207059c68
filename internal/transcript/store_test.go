package transcript

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
)

func newTestStore(t *testing.T, historyMaxPairs int, compress bool) (*Store, *miniredis.Miniredis) {
	mini := miniredis.RunT(t)
	cfg := &config.Config{
		Transcript: config.TranscriptConfig{
			URL:             "redis://" + mini.Addr(),
			Enabled:         true,
			DisableCache:    true,
			TTLMinutes:      1,
			HistoryMaxPairs: historyMaxPairs,
			Compress:        compress,
		},
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		mini.Close()
	})
	return store, mini
}

func TestNewStoreRequiredButDisabled(t *testing.T) {
	cfg := &config.Config{
		Transcript: config.TranscriptConfig{Enabled: false, Required: true},
	}
	if _, err := NewStore(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewStoreFallsBackToMemory(t *testing.T) {
	cfg := &config.Config{
		Transcript: config.TranscriptConfig{
			Enabled:         false,
			TTLMinutes:      1,
			HistoryMaxPairs: 2,
		},
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("expected memory store, got error: %v", err)
	}
	if !store.IsEnabled() {
		t.Fatalf("memory store must be enabled")
	}

	ctx := context.Background()
	if err := store.AppendExchange(ctx, "v1", "What does he build?", "Backend services. 😊"); err != nil {
		t.Fatalf("append exchange: %v", err)
	}

	history, err := store.GetHistory(ctx, "v1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "assistant" {
		t.Fatalf("unexpected roles: %+v", history)
	}

	if err := store.Delete(ctx, "v1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	history, _ = store.GetHistory(ctx, "v1")
	if len(history) != 0 {
		t.Fatalf("expected empty history after delete")
	}
}

func TestStoreAppendAndTrim(t *testing.T) {
	store, _ := newTestStore(t, 1, false)
	ctx := context.Background()

	if err := store.AppendExchange(ctx, "v1", "first question", "first answer"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendExchange(ctx, "v1", "second question", "second answer"); err != nil {
		t.Fatalf("append: %v", err)
	}

	history, err := store.GetHistory(ctx, "v1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected trim to 1 pair, got %d entries", len(history))
	}
	if history[0].Content != "second question" {
		t.Fatalf("unexpected retained entry: %+v", history[0])
	}
}

func TestStoreCompressionRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, 6, true)
	ctx := context.Background()

	longAnswer := strings.Repeat("He works on distributed systems. ", 30)
	if err := store.AppendExchange(ctx, "v1", "Tell me everything", longAnswer); err != nil {
		t.Fatalf("append: %v", err)
	}

	history, err := store.GetHistory(ctx, "v1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[1].Content != longAnswer {
		t.Fatalf("compressed entry did not round-trip")
	}
}

func TestStoreVisitorCountAndPing(t *testing.T) {
	store, _ := newTestStore(t, 2, false)
	ctx := context.Background()

	if err := store.AppendExchange(ctx, "v1", "q", "a"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendExchange(ctx, "v2", "q", "a"); err != nil {
		t.Fatalf("append: %v", err)
	}

	count, err := store.VisitorCount(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 visitors, got %d", count)
	}

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestZstdFrameDetection(t *testing.T) {
	compressed, err := compressZstd([]byte(`{"role":"user","content":"hello"}`))
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if !isZstdFrame(compressed) {
		t.Fatalf("compressed payload must carry the zstd magic")
	}
	if isZstdFrame([]byte(`{"role":"user"}`)) {
		t.Fatalf("plain JSON misdetected as zstd")
	}

	decoded, err := decompressZstd(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Contains(decoded, []byte("hello")) {
		t.Fatalf("round trip lost data")
	}
}

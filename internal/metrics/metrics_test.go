package metrics

import (
	"testing"
	"time"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
	"github.com/divyampandey/pixel-llm-server-go/internal/llm"
)

func TestStoreRecordsCalls(t *testing.T) {
	store := NewStore()
	store.RecordSuccess(100*time.Millisecond, llm.Usage{InputTokens: 10, OutputTokens: 20})
	store.RecordError(50 * time.Millisecond)

	snapshot := store.Snapshot()
	if snapshot["total_calls"] != 2 {
		t.Fatalf("expected 2 calls, got %v", snapshot["total_calls"])
	}
	if snapshot["total_errors"] != 1 {
		t.Fatalf("expected 1 error, got %v", snapshot["total_errors"])
	}
	if snapshot["total_tokens"] != 30 {
		t.Fatalf("expected 30 tokens, got %v", snapshot["total_tokens"])
	}

	usage := store.UsageTotals()
	if usage.TotalTokens != 30 {
		t.Fatalf("expected 30 total tokens, got %d", usage.TotalTokens)
	}
}

func TestStoreRecordsPipelineActivity(t *testing.T) {
	store := NewStore()
	store.RecordSanitize(2, true, true, false)
	store.RecordSanitize(0, false, false, true)
	store.RecordAnimation(animation.TagWave)
	store.RecordAnimation(animation.TagWave)
	store.RecordAnimation(animation.Tag("Backflip"))

	snapshot := store.Snapshot()
	if snapshot["persona_rewrites"] != 2 {
		t.Fatalf("expected 2 rewrites, got %v", snapshot["persona_rewrites"])
	}
	if snapshot["brevity_truncations"] != 1 {
		t.Fatalf("expected 1 truncation, got %v", snapshot["brevity_truncations"])
	}
	if snapshot["emoji_appends"] != 1 {
		t.Fatalf("expected 1 emoji append, got %v", snapshot["emoji_appends"])
	}
	if snapshot["fallback_greetings"] != 1 {
		t.Fatalf("expected 1 fallback, got %v", snapshot["fallback_greetings"])
	}
	if snapshot["animation_Wave"] != 2 {
		t.Fatalf("expected 2 Wave, got %v", snapshot["animation_Wave"])
	}
}

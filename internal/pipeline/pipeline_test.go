package pipeline

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/forPelevin/gomoji"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/metrics"
	"github.com/divyampandey/pixel-llm-server-go/internal/randx"
)

func newTestPipeline(store *metrics.Store) *Pipeline {
	cfg := &config.Config{
		Persona: config.PersonaConfig{
			SentenceCap:      3,
			FallbackGreeting: "Hey! I'm Pixel, Divyam's assistant. Ask me anything about his work! 🤖",
			DefaultEmoji:     "😊",
			CacheMaxSize:     100,
			CacheTTLSeconds:  60,
		},
	}
	return New(cfg, randx.New(rand.New(rand.NewPCG(7, 7))), store, nil)
}

func TestProcessEndToEnd(t *testing.T) {
	pipeline := newTestPipeline(nil)

	raw := "I am a large language model created by Google. Hello! I'm happy to help. Third sentence should be dropped."
	result := pipeline.Process("Hi there!", raw)

	if strings.Contains(strings.ToLower(result.Answer), "language model") {
		t.Fatalf("identity leak: %q", result.Answer)
	}
	if strings.Contains(result.Answer, "should be dropped") {
		t.Fatalf("sentence cap not applied: %q", result.Answer)
	}
	if !gomoji.ContainsEmoji(result.Answer) {
		t.Fatalf("missing emoji: %q", result.Answer)
	}
	if result.Animation != animation.TagWave {
		t.Fatalf("expected Wave for greeting question, got %s", result.Animation)
	}
	if result.Tier != "greeting" {
		t.Fatalf("expected greeting tier, got %s", result.Tier)
	}
}

func TestProcessEmptyAnswerUsesFallback(t *testing.T) {
	pipeline := newTestPipeline(nil)

	result := pipeline.Process("tell me something unusual", "")
	if !result.Sanitized.Fallback {
		t.Fatalf("expected fallback path")
	}
	if !strings.Contains(result.Answer, "Pixel") {
		t.Fatalf("fallback greeting lost: %q", result.Answer)
	}
	if !gomoji.ContainsEmoji(result.Answer) {
		t.Fatalf("fallback greeting must carry an emoji: %q", result.Answer)
	}
}

func TestSanitizeIsCached(t *testing.T) {
	store := metrics.NewStore()
	pipeline := newTestPipeline(store)

	raw := "He is a strong engineer. He ships fast. He mentors juniors. He reads a lot."
	first := pipeline.Sanitize(raw)
	second := pipeline.Sanitize(raw)
	if first != second {
		t.Fatalf("cache must return identical results")
	}

	// Second call is a cache hit: only one truncation recorded.
	if store.Snapshot()["brevity_truncations"] != 1 {
		t.Fatalf("sanitize ran twice for the same input")
	}
}

func TestClassificationIsNotCached(t *testing.T) {
	pipeline := newTestPipeline(nil)

	// Default-tier inputs: over many runs both random outcomes appear
	// even with the answer text fixed.
	sawThumbsUp := false
	sawYes := false
	for i := 0; i < 500; i++ {
		result := pipeline.Process("qqq", "zzz")
		switch result.Animation {
		case animation.TagThumbsUp:
			sawThumbsUp = true
		case animation.TagYes:
			sawYes = true
		default:
			t.Fatalf("unexpected tag %s", result.Animation)
		}
	}
	if !sawThumbsUp || !sawYes {
		t.Fatalf("classification appears cached: thumbsup=%v yes=%v", sawThumbsUp, sawYes)
	}
}

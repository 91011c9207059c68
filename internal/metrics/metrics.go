package metrics

import (
	"sync/atomic"
	"time"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
	"github.com/divyampandey/pixel-llm-server-go/internal/llm"
)

// Store accumulates LLM call and pipeline statistics.
type Store struct {
	totalCalls        int64
	totalErrors       int64
	totalInputTokens  int64
	totalOutputTokens int64
	totalDurationMs   int64

	rewrites     int64
	truncations  int64
	emojiAppends int64
	fallbacks    int64

	tagCounts map[animation.Tag]*int64
}

// NewStore creates the statistics store.
func NewStore() *Store {
	tagCounts := make(map[animation.Tag]*int64, len(animation.Tags()))
	for _, tag := range animation.Tags() {
		tagCounts[tag] = new(int64)
	}
	return &Store{tagCounts: tagCounts}
}

// RecordSuccess records a completed LLM call.
func (s *Store) RecordSuccess(duration time.Duration, usage llm.Usage) {
	atomic.AddInt64(&s.totalCalls, 1)
	atomic.AddInt64(&s.totalInputTokens, int64(usage.InputTokens))
	atomic.AddInt64(&s.totalOutputTokens, int64(usage.OutputTokens))
	atomic.AddInt64(&s.totalDurationMs, duration.Milliseconds())
}

// RecordError records a failed LLM call.
func (s *Store) RecordError(duration time.Duration) {
	atomic.AddInt64(&s.totalCalls, 1)
	atomic.AddInt64(&s.totalErrors, 1)
	atomic.AddInt64(&s.totalDurationMs, duration.Milliseconds())
}

// RecordSanitize records one sanitization pass.
func (s *Store) RecordSanitize(rewrites int, truncated, emojiAdded, fallback bool) {
	atomic.AddInt64(&s.rewrites, int64(rewrites))
	if truncated {
		atomic.AddInt64(&s.truncations, 1)
	}
	if emojiAdded {
		atomic.AddInt64(&s.emojiAppends, 1)
	}
	if fallback {
		atomic.AddInt64(&s.fallbacks, 1)
	}
}

// RecordAnimation counts one served animation cue.
func (s *Store) RecordAnimation(tag animation.Tag) {
	counter, ok := s.tagCounts[tag]
	if !ok {
		return
	}
	atomic.AddInt64(counter, 1)
}

// UsageTotals returns cumulative token usage.
func (s *Store) UsageTotals() llm.Usage {
	input := atomic.LoadInt64(&s.totalInputTokens)
	output := atomic.LoadInt64(&s.totalOutputTokens)
	return llm.Usage{
		InputTokens:  int(input),
		OutputTokens: int(output),
		TotalTokens:  int(input + output),
	}
}

// Snapshot returns a point-in-time view of every counter.
func (s *Store) Snapshot() map[string]float64 {
	totalCalls := atomic.LoadInt64(&s.totalCalls)
	totalErrors := atomic.LoadInt64(&s.totalErrors)
	input := atomic.LoadInt64(&s.totalInputTokens)
	output := atomic.LoadInt64(&s.totalOutputTokens)
	durationMs := atomic.LoadInt64(&s.totalDurationMs)

	avgDuration := 0.0
	if totalCalls > 0 {
		avgDuration = float64(durationMs) / float64(totalCalls)
	}

	snapshot := map[string]float64{
		"total_calls":         float64(totalCalls),
		"total_errors":        float64(totalErrors),
		"total_input_tokens":  float64(input),
		"total_output_tokens": float64(output),
		"total_tokens":        float64(input + output),
		"total_duration_ms":   float64(durationMs),
		"avg_duration_ms":     avgDuration,
		"persona_rewrites":    float64(atomic.LoadInt64(&s.rewrites)),
		"brevity_truncations": float64(atomic.LoadInt64(&s.truncations)),
		"emoji_appends":       float64(atomic.LoadInt64(&s.emojiAppends)),
		"fallback_greetings":  float64(atomic.LoadInt64(&s.fallbacks)),
	}
	for tag, counter := range s.tagCounts {
		snapshot["animation_"+string(tag)] = float64(atomic.LoadInt64(counter))
	}
	return snapshot
}

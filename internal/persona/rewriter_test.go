package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
)

func testConfig() config.PersonaConfig {
	return config.PersonaConfig{
		SentenceCap:      3,
		FallbackGreeting: "Hey! I'm Pixel, Divyam's assistant. Ask me anything about his work! 🤖",
		DefaultEmoji:     "😊",
	}
}

func TestRewriterFallbackOnEmptyInput(t *testing.T) {
	rewriter := NewRewriter(testConfig(), nil)

	for _, input := range []string{"", "   ", "\n\t"} {
		result := rewriter.Apply(input)
		if !result.Fallback {
			t.Fatalf("expected fallback for %q", input)
		}
		if result.Text != testConfig().FallbackGreeting {
			t.Fatalf("unexpected fallback text: %q", result.Text)
		}
	}
}

func TestRewriterPassThroughOnCleanText(t *testing.T) {
	rewriter := NewRewriter(testConfig(), nil)

	input := "Divyam builds backend services and loves distributed systems."
	result := rewriter.Apply(input)
	if result.Text != input {
		t.Fatalf("clean text must pass through unchanged: %q", result.Text)
	}
	if result.Rewrites != 0 || result.Fallback {
		t.Fatalf("unexpected result flags: %+v", result)
	}
}

func TestRewriterRuleCoverage(t *testing.T) {
	rewriter := NewRewriter(testConfig(), nil)

	cases := []struct {
		ruleID string
		input  string
		want   string
	}{
		{"llm_self_id", "I am a large language model.", "I'm Pixel, Divyam's assistant"},
		{"large_language_model", "It runs on a large language model.", "Divyam's digital assistant"},
		{"language_model", "This language model can help.", "digital assistant"},
		{"as_an_ai", "As an AI assistant, I cannot say.", "as Divyam's assistant"},
		{"i_am_an_ai", "I am an AI model.", "I'm Pixel"},
		{"i_am_a_model", "I'm a model, nothing more.", "I'm Pixel"},
		{"no_personal_traits", "I don't have personal feelings.", "I'm Pixel, so I keep things about Divyam"},
		{"google_origin", "I was trained by Google.", "built by Divyam"},
		{"gemini_self_id", "Gemini is answering you.", "Pixel"},
	}

	for _, tc := range cases {
		result := rewriter.Apply(tc.input)
		if !strings.Contains(result.Text, tc.want) {
			t.Fatalf("rule %s: expected %q in output, got %q", tc.ruleID, tc.want, result.Text)
		}
		if result.Rewrites == 0 {
			t.Fatalf("rule %s: expected at least one rewrite", tc.ruleID)
		}
	}

	// No rule's pattern may survive its own rewrite.
	for _, rule := range rewriter.rules {
		for _, tc := range cases {
			if tc.ruleID != rule.id {
				continue
			}
			result := rewriter.Apply(tc.input)
			if rule.pattern.MatchString(result.Text) {
				t.Fatalf("rule %s: pattern still matches output %q", rule.id, result.Text)
			}
		}
	}
}

func TestRewriterChainsRulesInOrder(t *testing.T) {
	rewriter := NewRewriter(testConfig(), nil)

	result := rewriter.Apply("I am a large language model created by Google.")
	if result.Rewrites != 2 {
		t.Fatalf("expected 2 rewrites, got %d (%q)", result.Rewrites, result.Text)
	}
	if !strings.Contains(result.Text, "I'm Pixel, Divyam's assistant") {
		t.Fatalf("self-id rule did not fire: %q", result.Text)
	}
	if !strings.Contains(result.Text, "built by Divyam") {
		t.Fatalf("origin rule did not fire on accumulated text: %q", result.Text)
	}
	if strings.Contains(strings.ToLower(result.Text), "google") {
		t.Fatalf("origin phrase survived: %q", result.Text)
	}
}

func TestRewriterLoadsYAMLPacks(t *testing.T) {
	dir := t.TempDir()
	pack := `version: 1
rules:
  - id: competitor
    pattern: 'some other bot'
    replacement: 'Pixel'
`
	if err := os.WriteFile(filepath.Join(dir, "extra.yml"), []byte(pack), 0644); err != nil {
		t.Fatalf("write pack: %v", err)
	}

	cfg := testConfig()
	cfg.RulesDir = dir
	rewriter := NewRewriter(cfg, nil)

	if rewriter.RuleCount() != len(defaultRules)+1 {
		t.Fatalf("expected %d rules, got %d", len(defaultRules)+1, rewriter.RuleCount())
	}

	result := rewriter.Apply("Some Other Bot says hi.")
	if !strings.Contains(result.Text, "Pixel") {
		t.Fatalf("pack rule did not fire: %q", result.Text)
	}
}

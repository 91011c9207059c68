package config

import (
	"strings"
	"testing"
)

func TestParseAPIKeys(t *testing.T) {
	t.Setenv("GOOGLE_API_KEYS", "k1, k2")
	keys := parseAPIKeys()
	if len(keys) != 2 || keys[0] != "k1" || keys[1] != "k2" {
		t.Fatalf("unexpected keys: %+v", keys)
	}

	t.Setenv("GOOGLE_API_KEYS", "")
	t.Setenv("GOOGLE_API_KEY", "single")
	keys = parseAPIKeys()
	if len(keys) != 1 || keys[0] != "single" {
		t.Fatalf("unexpected single key: %+v", keys)
	}
}

func TestSplitList(t *testing.T) {
	items := splitList("a,b c\td\n")
	if len(items) != 4 {
		t.Fatalf("unexpected items length: %d", len(items))
	}
}

func TestModelCandidates(t *testing.T) {
	cfg := GeminiConfig{
		Model:          "gemini-2.5-flash",
		FallbackModels: []string{"gemini-2.5-flash-lite", "gemini-2.5-flash"},
	}
	candidates := cfg.ModelCandidates()
	if len(candidates) != 2 {
		t.Fatalf("expected duplicate fallback to be dropped: %+v", candidates)
	}
	if candidates[0] != "gemini-2.5-flash" || candidates[1] != "gemini-2.5-flash-lite" {
		t.Fatalf("unexpected candidate order: %+v", candidates)
	}
}

func TestGeminiConfigPrimaryKey(t *testing.T) {
	cfg := GeminiConfig{APIKeys: []string{"key1", "key2"}}
	if cfg.PrimaryKey() != "key1" {
		t.Fatalf("expected 'key1', got: %s", cfg.PrimaryKey())
	}

	cfg = GeminiConfig{APIKeys: nil}
	if cfg.PrimaryKey() != "" {
		t.Fatalf("expected empty string for nil keys")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		Gemini: GeminiConfig{Model: "gemini-2.5-flash"},
		Persona: PersonaConfig{
			SentenceCap:      3,
			FallbackGreeting: "Hey! 🤖",
			DefaultEmoji:     "😊",
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	cfg.Persona.SentenceCap = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero sentence cap")
	}

	cfg.Persona.SentenceCap = 2
	cfg.Gemini.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing model")
	}
}

func TestChatLogConfigDSN(t *testing.T) {
	cfg := ChatLogConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "pixel",
		User:     "pixel",
		Password: "pass",
	}
	dsn := cfg.DSN()
	if !strings.HasPrefix(dsn, "postgresql://") {
		t.Fatalf("DSN should start with postgresql://: %s", dsn)
	}
	if !strings.Contains(dsn, "localhost:5432") {
		t.Fatalf("DSN should contain host:port: %s", dsn)
	}
	if !strings.Contains(dsn, "/pixel") {
		t.Fatalf("DSN should contain dbname: %s", dsn)
	}
}

func TestMaskSecret(t *testing.T) {
	if maskSecret("") != "<missing>" {
		t.Fatalf("expected <missing> for empty secret")
	}
	if maskSecret("abc") != "***" {
		t.Fatalf("short secret should be fully masked")
	}
	masked := maskSecret("supersecretkey")
	if masked != "su***ey" {
		t.Fatalf("unexpected mask: %s", masked)
	}
}

package shared

import (
	"testing"
)

func TestDecodeWeaklyTyped(t *testing.T) {
	type options struct {
		SentenceCap int    `json:"sentence_cap"`
		Seed        uint64 `json:"seed"`
		Text        string `json:"text"`
	}

	var decoded options
	input := map[string]any{
		"sentence_cap": "4",
		"seed":         float64(99),
		"text":         "hello",
	}
	if err := Decode(input, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.SentenceCap != 4 || decoded.Seed != 99 || decoded.Text != "hello" {
		t.Fatalf("unexpected result: %+v", decoded)
	}
}

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	type options struct {
		Text string `json:"text"`
	}

	var decoded options
	input := map[string]any{
		"text":    "hello",
		"unknown": true,
	}
	if err := DecodeStrict(input, &decoded); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if err := Decode(input, &decoded); err != nil {
		t.Fatalf("non-strict decode must tolerate extras: %v", err)
	}
}

func TestTrimRunes(t *testing.T) {
	if got := TrimRunes("안녕하세요", 2); got != "안녕" {
		t.Fatalf("rune trim broke multibyte text: %q", got)
	}
	if got := TrimRunes("short", 10); got != "short" {
		t.Fatalf("under-limit text must pass through: %q", got)
	}
	if got := TrimRunes("anything", 0); got != "" {
		t.Fatalf("zero limit must empty the string: %q", got)
	}
}

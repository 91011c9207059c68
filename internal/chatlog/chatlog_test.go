package chatlog

import (
	"errors"
	"net"
	"testing"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
	"github.com/divyampandey/pixel-llm-server-go/internal/llm"
)

func TestDeltaAddAndEmpty(t *testing.T) {
	var delta Delta
	if !delta.empty() {
		t.Fatalf("zero delta must be empty")
	}

	delta.add(Delta{Chats: 1, InputTokens: 10, OutputTokens: 5, Tags: map[animation.Tag]int64{animation.TagWave: 1}})
	delta.add(Delta{Chats: 1, Tags: map[animation.Tag]int64{animation.TagWave: 1, animation.TagNo: 1}})

	if delta.Chats != 2 || delta.InputTokens != 10 || delta.OutputTokens != 5 {
		t.Fatalf("unexpected totals: %+v", delta)
	}
	if delta.Tags[animation.TagWave] != 2 || delta.Tags[animation.TagNo] != 1 {
		t.Fatalf("unexpected tag counts: %+v", delta.Tags)
	}
	if delta.empty() {
		t.Fatalf("populated delta must not be empty")
	}
}

func TestStatToDaily(t *testing.T) {
	daily := statToDaily(ChatStat{
		Chats:        3,
		InputTokens:  100,
		OutputTokens: 50,
		Waves:        2,
		Punches:      1,
	})
	if daily.TotalTokens() != 150 {
		t.Fatalf("unexpected total tokens: %d", daily.TotalTokens())
	}
	if daily.Animations[animation.TagWave] != 2 {
		t.Fatalf("unexpected wave count: %d", daily.Animations[animation.TagWave])
	}
	if daily.Animations[animation.TagPunch] != 1 {
		t.Fatalf("unexpected punch count: %d", daily.Animations[animation.TagPunch])
	}
}

func TestShouldFallbackToLocalhost(t *testing.T) {
	dnsErr := &net.DNSError{Name: "postgres", Err: "no such host"}
	if !shouldFallbackToLocalhost(dnsErr, "postgres") {
		t.Fatalf("expected fallback for unresolvable postgres host")
	}
	if shouldFallbackToLocalhost(dnsErr, "localhost") {
		t.Fatalf("no fallback for localhost")
	}
	if shouldFallbackToLocalhost(errors.New("connection refused"), "postgres") {
		t.Fatalf("no fallback for non-DNS errors")
	}
	if shouldFallbackToLocalhost(nil, "postgres") {
		t.Fatalf("no fallback without error")
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var recorder *Recorder
	recorder.Record(animation.TagYes, llm.Usage{InputTokens: 1})
	recorder.Close()
}

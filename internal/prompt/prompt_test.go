package prompt

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestFormatTemplate(t *testing.T) {
	result, err := FormatTemplate("Hello {name}, ask about {topic}.", map[string]string{
		"name":  "Pixel",
		"topic": "projects",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "Hello Pixel, ask about projects." {
		t.Fatalf("unexpected result: %q", result)
	}
}

func TestFormatTemplateEscapedBraces(t *testing.T) {
	result, err := FormatTemplate("{{literal}} {key}", map[string]string{"key": "v"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "{literal} v" {
		t.Fatalf("unexpected result: %q", result)
	}
}

func TestFormatTemplateMissingValue(t *testing.T) {
	if _, err := FormatTemplate("{missing}", nil); err == nil {
		t.Fatalf("expected error for missing value")
	}
}

func TestWrapXMLEscapes(t *testing.T) {
	wrapped := WrapXML("question", `a <b> & "c"`)
	if strings.Contains(wrapped, "<b>") {
		t.Fatalf("inner markup must be escaped: %q", wrapped)
	}
	if !strings.HasPrefix(wrapped, "<question>") || !strings.HasSuffix(wrapped, "</question>") {
		t.Fatalf("unexpected wrapping: %q", wrapped)
	}
}

func TestLoadBundle(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/chat.yml": &fstest.MapFile{Data: []byte(
			"system: You are Pixel.\nuser_template: '{question}'\n",
		)},
	}

	bundle, err := LoadBundle(fsys, "prompts", "chat")
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}

	chat, err := bundle.Prompt("chat")
	if err != nil {
		t.Fatalf("prompt lookup: %v", err)
	}
	system, err := bundle.Field(chat, "system", "chat.system")
	if err != nil || system != "You are Pixel." {
		t.Fatalf("unexpected system field: %q err=%v", system, err)
	}

	if _, err := bundle.Prompt("missing"); err == nil {
		t.Fatalf("expected error for unknown prompt")
	}
}

func TestLoadYAMLRejectsTemplatedSystem(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/bad.yml": &fstest.MapFile{Data: []byte(
			"system: 'Hello {name}'\n",
		)},
	}
	if _, err := LoadBundle(fsys, "prompts", "bad"); err == nil {
		t.Fatalf("expected error for templated system prompt")
	}
}

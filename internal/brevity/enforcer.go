package brevity

import (
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
)

// maskByte stands in for abbreviation periods during sentence splitting.
// NUL never appears in model output, so unmasking is unambiguous.
const maskByte = "\x00"

// sentencePattern: a sentence is the longest run of non-terminator
// characters followed by one or more terminators. Trailing unterminated
// fragments are dropped once at least one full sentence exists.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// abbreviationPatterns lists period-bearing tokens that must not end a
// sentence. Degree forms mask only their internal periods so a genuine
// sentence-final period still terminates.
var abbreviationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:mr|mrs|ms|dr|prof|sr|jr|st|fr|vs|etc|dept|inc|ltd|approx)\.`),
	regexp.MustCompile(`(?i)\be\.g\.|\bi\.e\.`),
	regexp.MustCompile(`(?i)\b(?:b\.tech|m\.tech|b\.sc|m\.sc|b\.e|m\.e|ph\.d|u\.s|u\.k)\b`),
	regexp.MustCompile(`\b[A-Z]\.`),
}

// Result of one Brevity Enforcer pass.
type Result struct {
	Text       string
	Sentences  int
	Truncated  bool
	EmojiAdded bool
}

// Enforcer caps text at a sentence limit and guarantees an emoji.
type Enforcer struct {
	cap          int
	defaultEmoji string
}

func NewEnforcer(cfg config.PersonaConfig) *Enforcer {
	sentenceCap := cfg.SentenceCap
	if sentenceCap <= 0 {
		sentenceCap = 3
	}
	emoji := cfg.DefaultEmoji
	if emoji == "" {
		emoji = "😊"
	}
	return &Enforcer{cap: sentenceCap, defaultEmoji: emoji}
}

// Enforce masks abbreviations, splits into sentences, keeps the first
// cap sentences rejoined with single spaces, unmasks, and appends the
// default emoji when none is present. Empty input is returned unchanged.
func (e *Enforcer) Enforce(text string) Result {
	if text == "" {
		return Result{Text: text}
	}

	masked := maskAbbreviations(text)
	sentences := sentencePattern.FindAllString(masked, -1)
	if sentences == nil {
		sentences = []string{masked}
	}

	truncated := len(sentences) > e.cap
	if truncated {
		sentences = sentences[:e.cap]
	}

	for i, sentence := range sentences {
		sentences[i] = strings.TrimSpace(sentence)
	}
	result := unmask(strings.Join(sentences, " "))

	emojiAdded := false
	if !gomoji.ContainsEmoji(result) {
		result = strings.TrimSpace(result) + " " + e.defaultEmoji
		emojiAdded = true
	}

	return Result{
		Text:       result,
		Sentences:  len(sentences),
		Truncated:  truncated,
		EmojiAdded: emojiAdded,
	}
}

// Cap reports the active sentence limit.
func (e *Enforcer) Cap() int {
	return e.cap
}

func maskAbbreviations(text string) string {
	for _, pattern := range abbreviationPatterns {
		text = pattern.ReplaceAllStringFunc(text, func(match string) string {
			return strings.ReplaceAll(match, ".", maskByte)
		})
	}
	return text
}

func unmask(text string) string {
	return strings.ReplaceAll(text, maskByte, ".")
}

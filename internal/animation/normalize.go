package animation

import (
	"strings"
	"unicode"

	"github.com/mtibben/confusables"
	"golang.org/x/text/unicode/norm"
)

// normalizeText folds homoglyph/width tricks before keyword matching so
// "ｓｔｕｐｉｄ" or "ѕtupid" still hits the insult tier. ASCII input skips
// the skeleton pass entirely.
func normalizeText(text string) string {
	if isASCIIOnly(text) {
		return strings.ToLower(stripControlChars(text))
	}

	skeleton := confusables.Skeleton(text)
	normalized := norm.NFKC.String(skeleton)
	return strings.ToLower(stripControlChars(normalized))
}

func isASCIIOnly(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func stripControlChars(text string) string {
	hasControl := false
	for _, r := range text {
		if unicode.Is(unicode.Cf, r) || unicode.Is(unicode.Cc, r) {
			hasControl = true
			break
		}
	}
	if !hasControl {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range text {
		if unicode.Is(unicode.Cf, r) || unicode.Is(unicode.Cc, r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

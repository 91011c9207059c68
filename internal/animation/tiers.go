package animation

import (
	"regexp"

	"github.com/cloudflare/ahocorasick"
)

// textSource selects which side of the exchange a tier inspects.
type textSource int

const (
	fromQuestion textSource = iota
	fromAnswer
	fromEither
)

// tierSpec is one priority level of the cascade. Keywords use plain
// substring containment on the normalized lower-cased text, never
// word boundaries. A single outcome is deterministic; two outcomes
// mean a uniform random pick.
type tierSpec struct {
	name     string
	source   textSource
	keywords []string
	patterns []string
	outcomes []Tag
}

// defaultTiers is evaluated strictly in order; the first tier with any
// keyword or pattern hit wins and later tiers are never consulted.
var defaultTiers = []tierSpec{
	{
		name:   "insult",
		source: fromQuestion,
		keywords: []string{
			"stupid", "dumb", "idiot", "useless", "hate you",
			"trash", "pathetic", "worthless", "shut up", "garbage",
		},
		outcomes: []Tag{TagPunch},
	},
	{
		name:   "not_qualified",
		source: fromAnswer,
		keywords: []string{
			"not appear", "not qualified", "no mention", "doesn't have",
			"does not have", "not his field", "no experience in",
			"not a lawyer", "isn't qualified", "outside his expertise",
		},
		outcomes: []Tag{TagNo},
	},
	{
		name:   "negative",
		source: fromAnswer,
		keywords: []string{
			"unfortunately", "sorry, but", "sorry but", "cannot",
			"can't help", "no information", "not found", "couldn't find",
			"unable to", "i'm afraid",
		},
		outcomes: []Tag{TagNo},
	},
	{
		name:   "achievement",
		source: fromEither,
		keywords: []string{
			"cgpa", "gpa", "percentile", "academic", "grade",
			"marks", "scored", "topper", "rank",
		},
		patterns: []string{
			// GPA-like token: 9.2, 8.75, 10.0
			`\b\d{1,2}\.\d{1,2}\b`,
		},
		outcomes: []Tag{TagJump},
	},
	{
		name:   "greeting",
		source: fromQuestion,
		keywords: []string{
			"hello", "hi", "hey", "good morning", "good afternoon",
			"good evening", "greetings", "howdy", "what's up",
		},
		outcomes: []Tag{TagWave},
	},
	{
		name:   "celebration",
		source: fromAnswer,
		keywords: []string{
			"secretary", "award", "outstanding", "recommendation",
			"promoted", "winner", "champion", "led the", "president",
		},
		outcomes: []Tag{TagThumbsUp},
	},
	{
		name:   "positive",
		source: fromAnswer,
		keywords: []string{
			"yes", "absolutely", "great", "skilled", "strong",
			"excellent", "definitely", "proficient", "experienced",
		},
		outcomes: []Tag{TagThumbsUp, TagYes},
	},
}

// defaultOutcomes is the bottom tier: nothing matched anywhere.
var defaultOutcomes = []Tag{TagThumbsUp, TagYes}

type compiledTier struct {
	name     string
	source   textSource
	matcher  *ahocorasick.Matcher
	patterns []*regexp.Regexp
	outcomes []Tag
}

func compileTiers(specs []tierSpec) []compiledTier {
	compiled := make([]compiledTier, 0, len(specs))
	for _, spec := range specs {
		tier := compiledTier{
			name:     spec.name,
			source:   spec.source,
			outcomes: spec.outcomes,
		}
		if len(spec.keywords) > 0 {
			patterns := make([][]byte, 0, len(spec.keywords))
			for _, keyword := range spec.keywords {
				patterns = append(patterns, []byte(keyword))
			}
			tier.matcher = ahocorasick.NewMatcher(patterns)
		}
		for _, pattern := range spec.patterns {
			tier.patterns = append(tier.patterns, regexp.MustCompile(pattern))
		}
		compiled = append(compiled, tier)
	}
	return compiled
}

func (t *compiledTier) matches(text string) bool {
	if text == "" {
		return false
	}
	if t.matcher != nil && len(t.matcher.MatchThreadSafe([]byte(text))) > 0 {
		return true
	}
	for _, pattern := range t.patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

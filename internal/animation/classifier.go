package animation

import (
	"log/slog"

	"github.com/divyampandey/pixel-llm-server-go/internal/randx"
)

// Classifier picks one animation cue per exchange via the ordered
// keyword cascade. It is a total function: empty inputs fall through
// every tier to the random default.
type Classifier struct {
	tiers  []compiledTier
	rng    *randx.LockedRand
	logger *slog.Logger
}

// NewClassifier compiles the built-in tier table. rng must not be nil;
// tests pass a seeded source to pin the random tiers.
func NewClassifier(rng *randx.LockedRand, logger *slog.Logger) *Classifier {
	if rng == nil {
		rng = randx.New(nil)
	}
	classifier := &Classifier{
		tiers:  compileTiers(defaultTiers),
		rng:    rng,
		logger: logger,
	}
	if logger != nil {
		logger.Info("classifier_ready", "tiers", len(classifier.tiers))
	}
	return classifier
}

// Classify returns the cue for a question/answer pair.
func (c *Classifier) Classify(question, answer string) Tag {
	tag, _ := c.Explain(question, answer)
	return tag
}

// Explain returns the cue together with the name of the tier that
// produced it ("default" when nothing matched).
func (c *Classifier) Explain(question, answer string) (Tag, string) {
	normalizedQuestion := normalizeText(question)
	normalizedAnswer := normalizeText(answer)

	for i := range c.tiers {
		tier := &c.tiers[i]
		if !c.tierHit(tier, normalizedQuestion, normalizedAnswer) {
			continue
		}
		return c.pick(tier.outcomes), tier.name
	}
	return c.pick(defaultOutcomes), "default"
}

func (c *Classifier) tierHit(tier *compiledTier, question, answer string) bool {
	switch tier.source {
	case fromQuestion:
		return tier.matches(question)
	case fromAnswer:
		return tier.matches(answer)
	default:
		return tier.matches(question) || tier.matches(answer)
	}
}

func (c *Classifier) pick(outcomes []Tag) Tag {
	if len(outcomes) == 1 {
		return outcomes[0]
	}
	return outcomes[c.rng.IntN(len(outcomes))]
}

package pipeline

import (
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
	"github.com/divyampandey/pixel-llm-server-go/internal/brevity"
	"github.com/divyampandey/pixel-llm-server-go/internal/cache"
	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/metrics"
	"github.com/divyampandey/pixel-llm-server-go/internal/persona"
	"github.com/divyampandey/pixel-llm-server-go/internal/randx"
)

// Sanitized is the deterministic half of one pipeline pass.
type Sanitized struct {
	Text       string
	Rewrites   int
	Truncated  bool
	EmojiAdded bool
	Fallback   bool
}

// Result is one finished exchange: the render-ready answer plus the
// avatar cue and the tier that produced it.
type Result struct {
	Answer    string
	Animation animation.Tag
	Tier      string
	Sanitized Sanitized
}

// Pipeline chains Identity Guard, Brevity Enforcer and the Animation
// Classifier. Sanitization is deterministic and cached behind
// singleflight; classification is randomized and never cached.
type Pipeline struct {
	rewriter   *persona.Rewriter
	enforcer   *brevity.Enforcer
	classifier *animation.Classifier
	store      *metrics.Store
	logger     *slog.Logger
	cache      *cache.TTLCache[string, Sanitized]
	group      singleflight.Group
}

func New(cfg *config.Config, rng *randx.LockedRand, store *metrics.Store, logger *slog.Logger) *Pipeline {
	cacheTTL := time.Duration(cfg.Persona.CacheTTLSeconds) * time.Second
	return &Pipeline{
		rewriter:   persona.NewRewriter(cfg.Persona, logger),
		enforcer:   brevity.NewEnforcer(cfg.Persona),
		classifier: animation.NewClassifier(rng, logger),
		store:      store,
		logger:     logger,
		cache:      cache.NewTTLCache[string, Sanitized](cfg.Persona.CacheMaxSize, cacheTTL),
	}
}

// Process runs the full pipeline for one exchange.
func (p *Pipeline) Process(question, raw string) Result {
	sanitized := p.Sanitize(raw)
	tag, tier := p.classifier.Explain(question, sanitized.Text)

	if p.store != nil {
		p.store.RecordAnimation(tag)
	}
	if p.logger != nil {
		p.logger.Debug(
			"pipeline_processed",
			"rewrites", sanitized.Rewrites,
			"truncated", sanitized.Truncated,
			"emoji_added", sanitized.EmojiAdded,
			"fallback", sanitized.Fallback,
			"animation", tag,
			"tier", tier,
		)
	}

	return Result{
		Answer:    sanitized.Text,
		Animation: tag,
		Tier:      tier,
		Sanitized: sanitized,
	}
}

// Sanitize runs Identity Guard then Brevity Enforcer. The fallback
// greeting path skips brevity: the greeting already satisfies the
// final-answer invariants.
func (p *Pipeline) Sanitize(raw string) Sanitized {
	if cached, ok := p.cache.Get(raw); ok {
		return cached
	}

	value, _, _ := p.group.Do(raw, func() (any, error) {
		result := p.sanitizeInternal(raw)
		p.cache.Set(raw, result)
		return result, nil
	})

	if sanitized, ok := value.(Sanitized); ok {
		return sanitized
	}
	return p.sanitizeInternal(raw)
}

// Classify exposes the classifier for the debug surface.
func (p *Pipeline) Classify(question, answer string) (animation.Tag, string) {
	return p.classifier.Explain(question, answer)
}

func (p *Pipeline) sanitizeInternal(raw string) Sanitized {
	rewritten := p.rewriter.Apply(raw)
	if rewritten.Fallback {
		result := Sanitized{Text: rewritten.Text, Fallback: true}
		p.recordSanitize(result)
		return result
	}

	enforced := p.enforcer.Enforce(rewritten.Text)
	result := Sanitized{
		Text:       enforced.Text,
		Rewrites:   rewritten.Rewrites,
		Truncated:  enforced.Truncated,
		EmojiAdded: enforced.EmojiAdded,
	}
	p.recordSanitize(result)
	return result
}

func (p *Pipeline) recordSanitize(result Sanitized) {
	if p.store == nil {
		return
	}
	p.store.RecordSanitize(result.Rewrites, result.Truncated, result.EmojiAdded, result.Fallback)
}

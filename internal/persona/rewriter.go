package persona

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
)

// Rule rewrites one self-disclosure phrase to persona voice.
// Patterns are compiled case-insensitive and applied globally.
type Rule struct {
	ID          string `yaml:"id"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

type compiledRule struct {
	id          string
	pattern     *regexp.Regexp
	replacement string
}

// defaultRules is the built-in rewrite table. Order matters: each rule
// runs on the cumulative output of the previous one, so broader phrases
// come after the specific ones that contain them.
var defaultRules = []Rule{
	{
		ID:          "llm_self_id",
		Pattern:     `i(?:'m| am) a large language model`,
		Replacement: "I'm Pixel, Divyam's assistant",
	},
	{
		ID:          "large_language_model",
		Pattern:     `a large language model`,
		Replacement: "Divyam's digital assistant",
	},
	{
		ID:          "language_model",
		Pattern:     `language model`,
		Replacement: "digital assistant",
	},
	{
		ID:          "as_an_ai",
		Pattern:     `as an ai(?: assistant| model)?`,
		Replacement: "as Divyam's assistant",
	},
	{
		ID:          "i_am_an_ai",
		Pattern:     `i(?:'m| am) an ai(?: assistant| model)?`,
		Replacement: "I'm Pixel",
	},
	{
		ID:          "i_am_a_model",
		Pattern:     `i(?:'m| am) a model`,
		Replacement: "I'm Pixel",
	},
	{
		ID:          "no_personal_traits",
		Pattern:     `i (?:do not|don't) have personal (?:feelings|attributes|experiences|opinions|capacity)`,
		Replacement: "I'm Pixel, so I keep things about Divyam",
	},
	{
		ID:          "google_origin",
		Pattern:     `(?:created|trained|developed|built|made) by google`,
		Replacement: "built by Divyam",
	},
	{
		ID:          "gemini_self_id",
		Pattern:     `\bgemini\b`,
		Replacement: "Pixel",
	},
}

// Result of one Identity Guard pass.
type Result struct {
	Text     string
	Rewrites int
	Fallback bool
}

// Rewriter applies the persona rewrite table to raw model output.
type Rewriter struct {
	logger   *slog.Logger
	rules    []compiledRule
	fallback string
}

// NewRewriter compiles the built-in table plus any YAML packs under
// cfg.RulesDir. Invalid extra rules are skipped with a warning.
func NewRewriter(cfg config.PersonaConfig, logger *slog.Logger) *Rewriter {
	rules := make([]Rule, 0, len(defaultRules))
	rules = append(rules, defaultRules...)
	if dir := strings.TrimSpace(cfg.RulesDir); dir != "" {
		rules = append(rules, loadRulePacks(resolveRulesDir(dir), logger)...)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		pattern, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			if logger != nil {
				logger.Warn("persona_rule_invalid", "rule_id", rule.ID, "err", err)
			}
			continue
		}
		compiled = append(compiled, compiledRule{
			id:          rule.ID,
			pattern:     pattern,
			replacement: rule.Replacement,
		})
	}

	if logger != nil {
		logger.Info("persona_ready", "rules", len(compiled))
	}
	return &Rewriter{
		logger:   logger,
		rules:    compiled,
		fallback: cfg.FallbackGreeting,
	}
}

// Apply runs the rewrite chain over raw. Empty or whitespace-only input
// short-circuits to the fallback greeting.
func (r *Rewriter) Apply(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{Text: r.fallback, Fallback: true}
	}

	text := raw
	rewrites := 0
	for _, rule := range r.rules {
		if !rule.pattern.MatchString(text) {
			continue
		}
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
		rewrites++
	}
	return Result{Text: text, Rewrites: rewrites}
}

// RuleCount reports how many rules are active (built-in plus packs).
func (r *Rewriter) RuleCount() int {
	return len(r.rules)
}

func resolveRulesDir(dir string) string {
	if hasRuleFiles(dir) {
		return dir
	}
	executable, err := os.Executable()
	if err != nil {
		return dir
	}
	fallback := filepath.Join(filepath.Dir(executable), filepath.Base(dir))
	if hasRuleFiles(fallback) {
		return fallback
	}
	return dir
}

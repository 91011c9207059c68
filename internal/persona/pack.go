package persona

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type rawRulePack struct {
	Version int    `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

func loadRulePacks(dir string, logger *slog.Logger) []Rule {
	paths := findRuleFiles(dir)
	if len(paths) == 0 {
		if logger != nil {
			logger.Warn("persona_packs_not_found", "dir", dir)
		}
		return nil
	}

	var rules []Rule
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if logger != nil {
				logger.Warn("persona_pack_read_failed", "path", path, "err", err)
			}
			continue
		}

		var raw rawRulePack
		if err := yaml.Unmarshal(data, &raw); err != nil {
			if logger != nil {
				logger.Warn("persona_pack_parse_failed", "path", path, "err", err)
			}
			continue
		}

		for _, rule := range raw.Rules {
			if rule.ID == "" || rule.Pattern == "" {
				if logger != nil {
					logger.Warn("persona_pack_rule_invalid", "path", path)
				}
				continue
			}
			rules = append(rules, rule)
		}
	}
	return rules
}

func findRuleFiles(dir string) []string {
	var files []string
	patterns := []string{"*.yml", "*.yaml"}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	return files
}

func hasRuleFiles(dir string) bool {
	return len(findRuleFiles(dir)) > 0
}

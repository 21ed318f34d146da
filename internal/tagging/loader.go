package tagging

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/store"
)

// ruleFile is the YAML authoring format for rules: a map of tag name to the
// list of description prefixes that should receive it.
//
//	groceries:
//	  - COUNTDOWN
//	  - NEW WORLD
//	utilities:
//	  - POWER CO
type ruleFile map[string][]string

// LoadRuleFile reads a YAML rule file and seeds its tags and rules into the
// store. Existing tags and rules are reused, so loading the same file twice
// is harmless. It returns the number of rules written.
func LoadRuleFile(ctx context.Context, s *store.Store, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read rule file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return 0, fmt.Errorf("parse rule file %s: %w", path, err)
	}

	count := 0
	for tagName, patterns := range rf {
		tag, err := s.GetOrCreateTag(ctx, tagName)
		if err != nil {
			return count, err
		}
		for _, pattern := range patterns {
			rule, err := domain.NewRule(pattern, tag.ID)
			if err != nil {
				return count, fmt.Errorf("rule file %s, tag %q: %w", path, tagName, err)
			}
			if err := s.CreateRule(ctx, rule); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

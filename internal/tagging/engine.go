// Package tagging matches stored transactions against prefix rules and
// records the winning tag on each match.
package tagging

import (
	"context"
	"fmt"
	"strings"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/store"
)

// TaggingError reports a failure while applying rules. Ingestion callers
// treat it as a warning: the transactions are already committed when
// tagging runs.
type TaggingError struct {
	Err error
}

func (e *TaggingError) Error() string { return fmt.Sprintf("tagging: %v", e.Err) }

func (e *TaggingError) Unwrap() error { return e.Err }

// Result summarizes one tagging pass.
type Result struct {
	// Affected is the number of transactions that received a tag.
	Affected int
	// TagsApplied counts how many transactions each tag was applied to,
	// keyed by tag id.
	TagsApplied map[int64]int
	// NoRules is true when the rule set was empty and nothing ran.
	NoRules bool
}

// Engine applies the stored rule set to transactions.
type Engine struct {
	store *store.Store
}

// NewEngine returns an engine backed by the given store.
func NewEngine(s *store.Store) (*Engine, error) {
	if s == nil {
		return nil, fmt.Errorf("tagging engine requires a store")
	}
	return &Engine{store: s}, nil
}

// Match returns the rule whose pattern is a case-insensitive prefix of the
// description. When several rules match, the longest pattern wins so the
// most specific rule takes precedence; ties are broken by rule order. The
// second return is false when no rule matches. An empty pattern matches
// every description but loses to any longer match.
func Match(description string, rules []domain.Rule) (domain.Rule, bool) {
	desc := strings.ToLower(strings.TrimSpace(description))

	var (
		best    domain.Rule
		bestLen int
		found   bool
	)
	for _, r := range rules {
		pattern := strings.ToLower(strings.TrimSpace(r.Pattern))
		if !strings.HasPrefix(desc, pattern) {
			continue
		}
		if !found || len(pattern) > bestLen {
			best = r
			bestLen = len(pattern)
			found = true
		}
	}
	return best, found
}

// Apply runs the stored rules over the given transactions and persists the
// matches in one batch. An update is staged only when the winning tag
// differs from the transaction's current tag (or it has none); a
// transaction already carrying its winning tag is not counted as affected.
func (e *Engine) Apply(ctx context.Context, transactions []domain.Transaction) (*Result, error) {
	rules, err := e.store.ListRules(ctx)
	if err != nil {
		return nil, &TaggingError{Err: err}
	}
	if len(rules) == 0 {
		return &Result{NoRules: true, TagsApplied: map[int64]int{}}, nil
	}

	res := &Result{TagsApplied: map[int64]int{}}
	var updates []store.TagUpdate
	for _, tr := range transactions {
		rule, ok := Match(tr.Description, rules)
		if !ok {
			continue
		}
		if tr.TagID != nil && *tr.TagID == rule.TagID {
			continue
		}
		updates = append(updates, store.TagUpdate{TransactionID: tr.ID, TagID: rule.TagID})
		res.Affected++
		res.TagsApplied[rule.TagID]++
	}

	if err := e.store.UpdateTags(ctx, updates); err != nil {
		return nil, &TaggingError{Err: err}
	}
	return res, nil
}

// ApplyUntagged runs the stored rules over every transaction that has no
// tag yet.
func (e *Engine) ApplyUntagged(ctx context.Context) (*Result, error) {
	transactions, err := e.store.ListUntagged(ctx)
	if err != nil {
		return nil, &TaggingError{Err: err}
	}
	return e.Apply(ctx, transactions)
}

// ApplyAll re-runs the stored rules over every transaction, including ones
// already tagged by an earlier pass. Transactions whose tag is already the
// winning one are left alone, so a repeated pass reports zero changes.
func (e *Engine) ApplyAll(ctx context.Context) (*Result, error) {
	transactions, err := e.store.ListTransactions(ctx)
	if err != nil {
		return nil, &TaggingError{Err: err}
	}
	return e.Apply(ctx, transactions)
}

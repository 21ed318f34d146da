// Package domain defines the core types shared by the import pipeline.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar-date format used for storage and
// fingerprinting. Transactions carry no time of day.
const DateLayout = "2006-01-02"

// Tag is a user-defined classification label. Read-only to the pipeline.
type Tag struct {
	ID   int64
	Name string
}

// Rule maps a description prefix to a tag. User-authored; read-only to the
// pipeline once created.
type Rule struct {
	ID      int64
	Pattern string
	TagID   int64
}

// NewRule creates a validated rule. An empty (or all-whitespace) pattern is
// rejected here because creation is the only enforcement point: the matching
// engine treats an empty pattern as matching every description.
func NewRule(pattern string, tagID int64) (*Rule, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("rule pattern cannot be empty")
	}
	if tagID <= 0 {
		return nil, fmt.Errorf("rule tag reference must be positive, got %d", tagID)
	}
	return &Rule{Pattern: pattern, TagID: tagID}, nil
}

// Draft is a parsed-but-not-yet-persisted transaction. Immutable once
// created; the store assigns a persistent identity on successful insert.
type Draft struct {
	// Date is the transaction's calendar date at midnight UTC.
	Date        time.Time
	Description string
	// Sign convention:
	//   Positive = money in (deposits, refunds, credit card payments)
	//   Negative = money out (purchases, withdrawals, fees)
	// Decoders must normalize to this convention regardless of how the
	// source export represents debits.
	Amount decimal.Decimal
	// Fingerprint is the 64-bit import identity used for deduplication.
	// Nil for drafts created outside the import path.
	Fingerprint *int64
}

// NewDraft creates a validated draft.
func NewDraft(date time.Time, description string, amount decimal.Decimal) (*Draft, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("draft date cannot be zero")
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("draft description cannot be empty")
	}
	return &Draft{
		Date:        date.UTC().Truncate(24 * time.Hour),
		Description: description,
		Amount:      amount,
	}, nil
}

// WithFingerprint returns a copy of the draft carrying the given import
// identity.
func (d Draft) WithFingerprint(fp int64) Draft {
	d.Fingerprint = &fp
	return d
}

// Transaction is a Draft that the store has persisted. TagID is the only
// field the pipeline mutates after insert (via the tagging engine).
type Transaction struct {
	ID          int64
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Fingerprint *int64
	TagID       *int64
}

// BalanceSnapshot is the single current balance record held per account.
// AccountID is the bank-specific identifier as it appears in the export; it
// may embed branch, suffix, or product-name segments.
type BalanceSnapshot struct {
	AccountID string
	Balance   decimal.Decimal
	AsOf      time.Time
}

// NewBalanceSnapshot creates a validated snapshot.
func NewBalanceSnapshot(accountID string, balance decimal.Decimal, asOf time.Time) (*BalanceSnapshot, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("snapshot account identifier cannot be empty")
	}
	if asOf.IsZero() {
		return nil, fmt.Errorf("snapshot as-of date cannot be zero")
	}
	return &BalanceSnapshot{
		AccountID: accountID,
		Balance:   balance,
		AsOf:      asOf.UTC().Truncate(24 * time.Hour),
	}, nil
}

package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRule(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		tagID   int64
		wantErr bool
	}{
		{"valid rule", "starbucks", 1, false},
		{"empty pattern", "", 1, true},
		{"whitespace pattern", "   ", 1, true},
		{"zero tag", "starbucks", 0, true},
		{"negative tag", "starbucks", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRule(tt.pattern, tt.tagID)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRule(%q, %d) error = %v, wantErr %v", tt.pattern, tt.tagID, err, tt.wantErr)
			}
		})
	}
}

func TestNewDraft(t *testing.T) {
	amt := decimal.RequireFromString("-45.67")

	tests := []struct {
		name        string
		date        time.Time
		description string
		wantErr     bool
	}{
		{"valid draft", date(2026, 8, 1), "COUNTDOWN AUCKLAND", false},
		{"zero date", time.Time{}, "COUNTDOWN AUCKLAND", true},
		{"empty description", date(2026, 8, 1), "", true},
		{"whitespace description", date(2026, 8, 1), "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDraft(tt.date, tt.description, amt)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDraft() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDraft_TruncatesTimeOfDay(t *testing.T) {
	withTime := time.Date(2026, 8, 1, 14, 30, 12, 0, time.UTC)
	d, err := NewDraft(withTime, "desc", decimal.Zero)
	if err != nil {
		t.Fatalf("NewDraft() error = %v", err)
	}
	if !d.Date.Equal(date(2026, 8, 1)) {
		t.Errorf("NewDraft() date = %v, want midnight UTC", d.Date)
	}
}

func TestDraft_WithFingerprint(t *testing.T) {
	d, err := NewDraft(date(2026, 8, 1), "desc", decimal.Zero)
	if err != nil {
		t.Fatalf("NewDraft() error = %v", err)
	}
	if d.Fingerprint != nil {
		t.Fatalf("new draft should have no fingerprint")
	}

	fp := d.WithFingerprint(42)
	if fp.Fingerprint == nil || *fp.Fingerprint != 42 {
		t.Errorf("WithFingerprint(42) = %v", fp.Fingerprint)
	}
	if d.Fingerprint != nil {
		t.Errorf("WithFingerprint must not mutate the receiver")
	}
}

func TestNewBalanceSnapshot(t *testing.T) {
	bal := decimal.RequireFromString("1234.56")

	tests := []struct {
		name    string
		account string
		asOf    time.Time
		wantErr bool
	}{
		{"valid snapshot", "01-0123-0123456-00", date(2026, 8, 28), false},
		{"empty account", "", date(2026, 8, 28), true},
		{"zero date", "01-0123-0123456-00", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBalanceSnapshot(tt.account, bal, tt.asOf)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBalanceSnapshot() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package fingerprint

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCompute_Deterministic(t *testing.T) {
	tests := []struct {
		name        string
		date        time.Time
		amount      string
		description string
	}{
		{"debit", day(2026, 8, 1), "-45.67", "COUNTDOWN AUCKLAND"},
		{"credit", day(2026, 8, 15), "1000.00", "Salary"},
		{"lowercase equivalent", day(2026, 8, 1), "-45.67", "countdown auckland"},
		{"padded equivalent", day(2026, 8, 1), "-45.67", "  COUNTDOWN AUCKLAND  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amt := decimal.RequireFromString(tt.amount)
			got := Compute(tt.date, amt, tt.description)
			again := Compute(tt.date, amt, tt.description)
			if got != again {
				t.Errorf("Compute() not deterministic: %d != %d", got, again)
			}
		})
	}
}

func TestCompute_NormalizesDescription(t *testing.T) {
	amt := decimal.RequireFromString("-45.67")
	base := Compute(day(2026, 8, 1), amt, "COUNTDOWN AUCKLAND")

	if got := Compute(day(2026, 8, 1), amt, "countdown auckland"); got != base {
		t.Errorf("case should not change the fingerprint: %d != %d", got, base)
	}
	if got := Compute(day(2026, 8, 1), amt, "  COUNTDOWN AUCKLAND "); got != base {
		t.Errorf("surrounding whitespace should not change the fingerprint: %d != %d", got, base)
	}
}

func TestCompute_FieldChangesChangeFingerprint(t *testing.T) {
	amt := decimal.RequireFromString("-45.67")
	base := Compute(day(2026, 8, 1), amt, "COUNTDOWN AUCKLAND")

	tests := []struct {
		name string
		got  int64
	}{
		{"different date", Compute(day(2026, 8, 2), amt, "COUNTDOWN AUCKLAND")},
		{"different amount", Compute(day(2026, 8, 1), decimal.RequireFromString("-45.68"), "COUNTDOWN AUCKLAND")},
		{"different description", Compute(day(2026, 8, 1), amt, "COUNTDOWN WELLINGTON")},
		{"flipped sign", Compute(day(2026, 8, 1), amt.Neg(), "COUNTDOWN AUCKLAND")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got == base {
				t.Errorf("fingerprint unchanged (%d)", base)
			}
		})
	}
}

func TestCompute_AmountScaleIsCanonical(t *testing.T) {
	// 45.6 and 45.60 are the same money; the two-decimal canonical form must
	// make their fingerprints equal.
	a := Compute(day(2026, 8, 1), decimal.RequireFromString("45.6"), "desc")
	b := Compute(day(2026, 8, 1), decimal.RequireFromString("45.60"), "desc")
	if a != b {
		t.Errorf("Compute() differs across equal amounts: %d != %d", a, b)
	}
}

func TestAttach(t *testing.T) {
	d1, err := domain.NewDraft(day(2026, 8, 1), "COUNTDOWN AUCKLAND", decimal.RequireFromString("-45.67"))
	if err != nil {
		t.Fatalf("NewDraft() error = %v", err)
	}
	d2 := d1.WithFingerprint(99)

	out := Attach([]domain.Draft{*d1, d2})
	if len(out) != 2 {
		t.Fatalf("Attach() returned %d drafts, want 2", len(out))
	}
	if out[0].Fingerprint == nil {
		t.Fatal("Attach() left the first draft without a fingerprint")
	}
	if want := Compute(d1.Date, d1.Amount, d1.Description); *out[0].Fingerprint != want {
		t.Errorf("Attach() fingerprint = %d, want %d", *out[0].Fingerprint, want)
	}
	if *out[1].Fingerprint != 99 {
		t.Errorf("Attach() overwrote an existing fingerprint: %d", *out[1].Fingerprint)
	}
}

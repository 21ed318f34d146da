// Package fingerprint derives the 64-bit import identity used to suppress
// duplicate imports of the same statement row.
package fingerprint

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// Version identifies the mixing function. The fingerprint is the sole
// idempotency key for re-imports, so the function is a versioned contract:
// changing it invalidates deduplication against previously imported rows and
// requires recomputing the fingerprints already stored.
const Version = 1

// Compute returns the fingerprint for one statement row.
//
// Canonical input: "{date}|{amount}|{description}" where the date is
// YYYY-MM-DD, the amount is fixed to two decimal places, and the description
// is lowercased and trimmed. The value is the first 8 bytes of the MD5
// digest of that input, read little-endian. Not cryptographic; collision
// avoidance is best-effort across the full 64-bit width.
func Compute(date time.Time, amount decimal.Decimal, description string) int64 {
	desc := strings.ToLower(strings.TrimSpace(description))
	input := fmt.Sprintf("%s|%s|%s", date.Format(domain.DateLayout), amount.StringFixed(2), desc)

	sum := md5.Sum([]byte(input))
	return int64(binary.LittleEndian.Uint64(sum[:8]))
}

// Attach returns the drafts with their fingerprints filled in. Drafts that
// already carry a fingerprint are left untouched.
func Attach(drafts []domain.Draft) []domain.Draft {
	out := make([]domain.Draft, 0, len(drafts))
	for _, d := range drafts {
		if d.Fingerprint != nil {
			out = append(out, d)
			continue
		}
		out = append(out, d.WithFingerprint(Compute(d.Date, d.Amount, d.Description)))
	}
	return out
}

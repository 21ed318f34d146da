// Package statement parses bank-exported CSV statements. Each known export
// layout has a decoder that validates a fixed header shape before reading
// any data rows; a dispatcher tries the decoders in priority order and
// returns the first success.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// Statement is the result of parsing one uploaded file: the transaction
// drafts it contained and, for formats that carry one, the account balance
// snapshot extracted from it.
type Statement struct {
	Drafts  []domain.Draft
	Balance *domain.BalanceSnapshot
}

// Decoder is a format-specific parser. Decode returns a *FormatError when
// the header does not match its layout, so the dispatcher can try the next
// format; any other error means the format was identified but a data row
// was malformed.
type Decoder interface {
	Name() string
	Decode(text string) (*Statement, error)
}

// FormatError reports that file content did not match a known statement
// layout.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string { return e.msg }

func formatErrorf(format string, args ...any) *FormatError {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

// FieldParseError reports a data row whose date, amount, or shape could not
// be parsed. Line is the 1-based line number within the whole file and
// Value the literal unparsable text, so the user can spot the bad row.
type FieldParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *FieldParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("line %d: invalid %s %q", e.Line, e.Field, e.Value)
}

func (e *FieldParseError) Unwrap() error { return e.Err }

// Decoders returns the known decoders in dispatch priority order: the
// bank-account export, then the credit-card export, then the simple
// Kiwibank columnar export.
func Decoders() []Decoder {
	return []Decoder{bankExport{}, cardExport{}, kiwibank{}}
}

// Parse attempts each known format in order and returns the first success.
// Header mismatches are logged per decoder but not surfaced; if no decoder
// recognizes the file a single aggregated *FormatError is returned. A
// decoder that accepted the header but choked on a data row has identified
// the format, so its *FieldParseError is returned directly.
func Parse(text string) (*Statement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &FormatError{msg: "statement file is empty"}
	}

	for _, d := range Decoders() {
		st, err := d.Decode(text)
		if err == nil {
			return st, nil
		}

		var fe *FormatError
		if errors.As(err, &fe) {
			log.Printf("statement: %s decoder rejected input: %v", d.Name(), err)
			continue
		}
		return nil, err
	}

	return nil, &FormatError{msg: "could not parse CSV data from any known format"}
}

// splitLines normalizes line endings and splits the file into lines. A
// trailing newline does not produce a phantom empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// splitFields splits one data line on commas, honoring RFC-4180 quoting and
// embedded commas/quotes.
func splitFields(line string, lineNo int) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	record, err := r.Read()
	if err != nil {
		return nil, &FieldParseError{Line: lineNo, Field: "row", Value: line, Err: err}
	}
	return record, nil
}

func parseRowDate(layout, value string, lineNo int) (time.Time, error) {
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &FieldParseError{Line: lineNo, Field: "date", Value: value, Err: err}
	}
	return t, nil
}

func parseRowAmount(value string, lineNo int) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	amt, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, &FieldParseError{Line: lineNo, Field: "amount", Value: value, Err: err}
	}
	return amt, nil
}

// newRowDraft builds a draft from parsed row fields, mapping validation
// failures (e.g. an empty description) onto the row's line number.
func newRowDraft(date time.Time, description string, amount decimal.Decimal, lineNo int) (domain.Draft, error) {
	d, err := domain.NewDraft(date, normalizeDescription(description), amount)
	if err != nil {
		return domain.Draft{}, &FieldParseError{Line: lineNo, Field: "description", Value: description, Err: err}
	}
	return *d, nil
}

// normalizeDescription trims surrounding whitespace and NFC-normalizes the
// text so equivalent unicode sequences fingerprint identically.
func normalizeDescription(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// valueAfterColon extracts the value part of a "Label : value" header line.
func valueAfterColon(line string) string {
	_, value, ok := strings.Cut(line, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

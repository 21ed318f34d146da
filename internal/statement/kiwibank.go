package statement

import (
	"fmt"
	"strings"

	"github.com/pennywise-app/pennywise/internal/domain"
)

const (
	kiwibankDateLayout   = "02-01-2006"
	kiwibankColumnHeader = "Account number,Date,Description,Amount,Balance"
)

// kiwibank decodes the columnar Kiwibank export: a single header line, then
// rows that each repeat the account number and running balance. Because
// every row carries that metadata, a short row cannot be skipped as noise
// and is reported as a parse failure. The final row's account, balance, and
// date form the statement's balance snapshot.
type kiwibank struct{}

func (kiwibank) Name() string { return "kiwibank" }

func (kiwibank) Decode(text string) (*Statement, error) {
	lines := splitLines(text)
	if strings.TrimSpace(lines[0]) != kiwibankColumnHeader {
		return nil, formatErrorf("kiwibank export: first line %q is not the column header %q", lines[0], kiwibankColumnHeader)
	}

	var (
		drafts  []domain.Draft
		lastRow []string
		lastNo  int
	)
	for i, line := range lines[1:] {
		lineNo := i + 2
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitFields(line, lineNo)
		if err != nil {
			return nil, err
		}
		if len(fields) < 5 {
			return nil, &FieldParseError{
				Line:  lineNo,
				Field: "row",
				Value: line,
				Err:   fmt.Errorf("want 5 columns, got %d", len(fields)),
			}
		}

		date, err := parseRowDate(kiwibankDateLayout, fields[1], lineNo)
		if err != nil {
			return nil, err
		}
		amount, err := parseRowAmount(fields[3], lineNo)
		if err != nil {
			return nil, err
		}
		draft, err := newRowDraft(date, fields[2], amount, lineNo)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
		lastRow = fields
		lastNo = lineNo
	}

	st := &Statement{Drafts: drafts}
	if lastRow != nil {
		account := strings.TrimSpace(lastRow[0])
		balance, err := parseRowAmount(lastRow[4], lastNo)
		if err != nil {
			return nil, err
		}
		asOf, err := parseRowDate(kiwibankDateLayout, lastRow[1], lastNo)
		if err != nil {
			return nil, err
		}
		snapshot, err := domain.NewBalanceSnapshot(account, balance, asOf)
		if err != nil {
			return nil, &FieldParseError{Line: lastNo, Field: "row", Value: strings.Join(lastRow, ","), Err: err}
		}
		st.Balance = snapshot
	}
	return st, nil
}

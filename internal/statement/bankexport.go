package statement

import (
	"regexp"
	"strings"

	"github.com/pennywise-app/pennywise/internal/domain"
)

const (
	bankDateLayout   = "2006/01/02"
	bankColumnHeader = "Date,Description,Amount"

	// bankHeaderLines is the fixed preamble: created-at line, account
	// number line, ledger balance line, blank separator, column header.
	bankHeaderLines = 5
)

// ledgerBalancePattern matches the third preamble line, e.g.
// "Ledger Balance : 1234.56 as of 2026/08/30".
var ledgerBalancePattern = regexp.MustCompile(`^Ledger Balance : (-?[0-9,]+(?:\.[0-9]+)?) as of ([0-9]{4}/[0-9]{2}/[0-9]{2})\s*$`)

// bankExport decodes the bank account CSV export: a five-line preamble
// carrying the account number and ledger balance, followed by
// date/description/amount rows with slash-separated year-first dates.
type bankExport struct{}

func (bankExport) Name() string { return "bank-export" }

func (bankExport) Decode(text string) (*Statement, error) {
	lines := splitLines(text)
	if len(lines) < bankHeaderLines {
		return nil, formatErrorf("bank export: want at least %d header lines, got %d", bankHeaderLines, len(lines))
	}
	if !strings.HasPrefix(lines[0], "Created date / time") {
		return nil, formatErrorf("bank export: first line %q is not a created-date line", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Account number") {
		return nil, formatErrorf("bank export: second line %q is not an account-number line", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Ledger Balance") {
		return nil, formatErrorf("bank export: third line %q is not a ledger-balance line", lines[2])
	}
	if strings.TrimSpace(lines[3]) != "" {
		return nil, formatErrorf("bank export: fourth line %q is not the blank separator", lines[3])
	}
	if strings.TrimSpace(lines[4]) != bankColumnHeader {
		return nil, formatErrorf("bank export: fifth line %q is not the column header %q", lines[4], bankColumnHeader)
	}

	snapshot, err := parseBankPreamble(lines)
	if err != nil {
		return nil, err
	}

	drafts := make([]domain.Draft, 0, len(lines)-bankHeaderLines)
	for i, line := range lines[bankHeaderLines:] {
		lineNo := i + bankHeaderLines + 1
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitFields(line, lineNo)
		if err != nil {
			return nil, err
		}
		// Footer and summary lines in this export carry fewer than
		// three columns; they are not transactions.
		if len(fields) < 3 {
			continue
		}

		date, err := parseRowDate(bankDateLayout, fields[0], lineNo)
		if err != nil {
			return nil, err
		}
		amount, err := parseRowAmount(fields[2], lineNo)
		if err != nil {
			return nil, err
		}
		draft, err := newRowDraft(date, fields[1], amount, lineNo)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}

	return &Statement{Drafts: drafts, Balance: snapshot}, nil
}

// parseBankPreamble extracts the balance snapshot from the already
// shape-checked preamble lines.
func parseBankPreamble(lines []string) (*domain.BalanceSnapshot, error) {
	account := valueAfterColon(lines[1])
	if account == "" {
		return nil, formatErrorf("bank export: account-number line %q carries no account", lines[1])
	}

	m := ledgerBalancePattern.FindStringSubmatch(lines[2])
	if m == nil {
		return nil, formatErrorf("bank export: malformed ledger-balance line %q", lines[2])
	}
	balance, err := parseRowAmount(m[1], 3)
	if err != nil {
		return nil, err
	}
	asOf, err := parseRowDate(bankDateLayout, m[2], 3)
	if err != nil {
		return nil, err
	}
	return domain.NewBalanceSnapshot(account, balance, asOf)
}

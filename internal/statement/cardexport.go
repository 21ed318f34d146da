package statement

import (
	"strings"

	"github.com/pennywise-app/pennywise/internal/domain"
)

const (
	cardDateLayout   = "02/01/2006"
	cardColumnHeader = "Date,Description,Amount"

	// cardHeaderLines is the fixed preamble: card number line, column header.
	cardHeaderLines = 2
)

// cardExport decodes the credit card CSV export: a card-number line and a
// column header, followed by date/description/amount rows with
// day-first slash dates. The export records charges as positive figures,
// so amounts are negated to match the ledger's sign convention. Card
// exports never carry a balance.
type cardExport struct{}

func (cardExport) Name() string { return "card-export" }

func (cardExport) Decode(text string) (*Statement, error) {
	lines := splitLines(text)
	if len(lines) < cardHeaderLines {
		return nil, formatErrorf("card export: want at least %d header lines, got %d", cardHeaderLines, len(lines))
	}
	if !strings.HasPrefix(lines[0], "Card number") {
		return nil, formatErrorf("card export: first line %q is not a card-number line", lines[0])
	}
	if strings.TrimSpace(lines[1]) != cardColumnHeader {
		return nil, formatErrorf("card export: second line %q is not the column header %q", lines[1], cardColumnHeader)
	}

	drafts := make([]domain.Draft, 0, len(lines)-cardHeaderLines)
	for i, line := range lines[cardHeaderLines:] {
		lineNo := i + cardHeaderLines + 1
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitFields(line, lineNo)
		if err != nil {
			return nil, err
		}
		if len(fields) < 3 {
			continue
		}

		date, err := parseRowDate(cardDateLayout, fields[0], lineNo)
		if err != nil {
			return nil, err
		}
		amount, err := parseRowAmount(fields[2], lineNo)
		if err != nil {
			return nil, err
		}
		draft, err := newRowDraft(date, fields[1], amount.Neg(), lineNo)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}

	return &Statement{Drafts: drafts}, nil
}

package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/statement"
	"github.com/pennywise-app/pennywise/internal/store"
)

const bankCSV = `Created date / time : 30 August 2026 / 10:12:45
Account number : 01-0123-0123456-00
Ledger Balance : 1542.97 as of 2026/08/29

Date,Description,Amount
2026/08/24,COUNTDOWN AUCKLAND,-45.60
2026/08/24,REVERSAL COUNTDOWN AUCKLAND,45.60
2026/08/26,POWER CO AUGUST,-120.33
2026/08/26,REVERSAL POWER CO AUGUST,120.33
2026/08/28,RENT,-450.00
2026/08/29,NEW WORLD,-88.20
`

const cardCSV = `Card number : XXXX-XXXX-XXXX-4821
Date,Description,Amount
27/08/2026,PETROL STATION,60.00
`

func csvFile(name, data string) File {
	return File{Name: name, ContentType: "text/csv", Data: []byte(data)}
}

func newTestImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open(:memory:): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	im, err := New(s)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return im, s
}

func TestImport_EndToEnd(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	res, err := im.Import(ctx, []File{csvFile("august.csv", bankCSV)})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if got, want := res.Parsed, 6; got != want {
		t.Errorf("Parsed = %d, want %d", got, want)
	}
	if got, want := len(res.Inserted), 6; got != want {
		t.Errorf("len(Inserted) = %d, want %d", got, want)
	}
	if res.Duplicates != 0 {
		t.Errorf("Duplicates = %d, want 0", res.Duplicates)
	}
	if res.TaggingErr != nil {
		t.Errorf("TaggingErr = %v, want nil", res.TaggingErr)
	}
	if res.Tagging == nil || !res.Tagging.NoRules {
		t.Errorf("Tagging = %+v, want NoRules pass", res.Tagging)
	}
	if got, want := len(res.Balances), 1; got != want {
		t.Fatalf("len(Balances) = %d, want %d", got, want)
	}
	if got, want := res.Balances[0].AccountID, "01-0123-0123456-00"; got != want {
		t.Errorf("Balances[0].AccountID = %q, want %q", got, want)
	}
	if !res.Balances[0].Balance.Equal(decimal.RequireFromString("1542.97")) {
		t.Errorf("Balances[0].Balance = %s, want 1542.97", res.Balances[0].Balance)
	}

	all, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if got, want := len(all), 6; got != want {
		t.Errorf("stored %d transactions, want %d", got, want)
	}
}

func TestImport_ReimportIsIdempotent(t *testing.T) {
	im, _ := newTestImporter(t)
	ctx := context.Background()

	if _, err := im.Import(ctx, []File{csvFile("august.csv", bankCSV)}); err != nil {
		t.Fatalf("first Import() error = %v", err)
	}

	res, err := im.Import(ctx, []File{csvFile("august.csv", bankCSV)})
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if got, want := len(res.Inserted), 0; got != want {
		t.Errorf("re-import inserted %d rows, want %d", got, want)
	}
	if got, want := res.Duplicates, 6; got != want {
		t.Errorf("re-import Duplicates = %d, want %d", got, want)
	}
}

func TestImport_MultipleFiles(t *testing.T) {
	im, _ := newTestImporter(t)

	res, err := im.Import(context.Background(), []File{
		csvFile("bank.csv", bankCSV),
		csvFile("card.csv", cardCSV),
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got, want := res.Parsed, 7; got != want {
		t.Errorf("Parsed = %d, want %d", got, want)
	}
	// Only the bank statement carries a balance.
	if got, want := len(res.Balances), 1; got != want {
		t.Errorf("len(Balances) = %d, want %d", got, want)
	}
}

func TestImport_BadFileAbortsRun(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	badCSV := `Card number : XXXX
Date,Description,Amount
bad-date,BROKEN,1.00
`
	_, err := im.Import(ctx, []File{
		csvFile("good.csv", bankCSV),
		csvFile("bad.csv", badCSV),
	})
	var fieldErr *statement.FieldParseError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("Import() error = %v, want *statement.FieldParseError", err)
	}

	// The good file must not have been committed.
	all, listErr := s.ListTransactions(ctx)
	if listErr != nil {
		t.Fatalf("ListTransactions: %v", listErr)
	}
	if len(all) != 0 {
		t.Errorf("stored %d transactions after aborted run, want 0", len(all))
	}
}

func TestImport_RejectsContentType(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.Import(context.Background(), []File{
		{Name: "statement.pdf", ContentType: "application/pdf", Data: []byte(bankCSV)},
	})
	var ctErr *ContentTypeError
	if !errors.As(err, &ctErr) {
		t.Fatalf("Import() error = %v, want *ContentTypeError", err)
	}
	if ctErr.Name != "statement.pdf" {
		t.Errorf("ContentTypeError.Name = %q, want %q", ctErr.Name, "statement.pdf")
	}
}

func TestImport_ContentTypeWithParameters(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.Import(context.Background(), []File{
		{Name: "august.csv", ContentType: "text/csv; charset=utf-8", Data: []byte(bankCSV)},
	})
	if err != nil {
		t.Errorf("Import() with parameterized content type error = %v", err)
	}
}

func TestImport_ContentTypeCaseInsensitive(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.Import(context.Background(), []File{
		{Name: "august.csv", ContentType: "TEXT/CSV", Data: []byte(bankCSV)},
	})
	if err != nil {
		t.Errorf("Import() with uppercase content type error = %v", err)
	}
}

func TestImport_TagsInsertedRows(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	tag, err := s.GetOrCreateTag(ctx, "groceries")
	if err != nil {
		t.Fatalf("GetOrCreateTag: %v", err)
	}
	if err := s.CreateRule(ctx, &domain.Rule{Pattern: "COUNTDOWN", TagID: tag.ID}); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	res, err := im.Import(ctx, []File{csvFile("august.csv", bankCSV)})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Tagging == nil {
		t.Fatal("Tagging = nil, want result")
	}
	if got, want := res.Tagging.Affected, 1; got != want {
		t.Errorf("Tagging.Affected = %d, want %d", got, want)
	}
	untagged, err := s.ListUntagged(ctx)
	if err != nil {
		t.Fatalf("ListUntagged: %v", err)
	}
	if got, want := len(untagged), 5; got != want {
		t.Errorf("len(untagged) = %d, want %d", got, want)
	}
}

func TestImport_NoFiles(t *testing.T) {
	im, _ := newTestImporter(t)
	if _, err := im.Import(context.Background(), nil); err == nil {
		t.Error("Import() with no files succeeded, want error")
	}
}

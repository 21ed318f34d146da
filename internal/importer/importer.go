// Package importer runs the statement import pipeline: content-type
// checks, format detection, fingerprinting, persistence, tagging, and
// balance reconciliation.
package importer

import (
	"context"
	"fmt"
	"log"
	"mime"

	"github.com/google/uuid"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/fingerprint"
	"github.com/pennywise-app/pennywise/internal/statement"
	"github.com/pennywise-app/pennywise/internal/store"
	"github.com/pennywise-app/pennywise/internal/tagging"
)

// File is one uploaded statement.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ContentTypeError reports a file whose declared media type is not a CSV
// type the pipeline accepts.
type ContentTypeError struct {
	Name        string
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("file %q has unsupported content type %q", e.Name, e.ContentType)
}

// Result summarizes one import run.
type Result struct {
	// RunID identifies this run in logs.
	RunID string
	// Parsed is the total number of transaction rows read from the files.
	Parsed int
	// Inserted holds the rows that were new to the ledger. Rows already
	// present (matched by fingerprint) are counted in Duplicates instead.
	Inserted   []domain.Transaction
	Duplicates int
	// Tagging is the outcome of the auto-tagging pass over the inserted
	// rows, nil when TaggingErr is set.
	Tagging *tagging.Result
	// TaggingErr is set when tagging failed. The import itself has
	// succeeded; the rows are committed and can be re-tagged later.
	TaggingErr error
	// Balances holds the stored snapshot per account after reconciliation.
	Balances []domain.BalanceSnapshot
}

// Importer wires the pipeline stages together.
type Importer struct {
	store  *store.Store
	engine *tagging.Engine
}

// New returns an importer over the given store.
func New(s *store.Store) (*Importer, error) {
	if s == nil {
		return nil, fmt.Errorf("importer requires a store")
	}
	engine, err := tagging.NewEngine(s)
	if err != nil {
		return nil, err
	}
	return &Importer{store: s, engine: engine}, nil
}

// acceptedContentTypes are the media types the pipeline treats as CSV. The
// bare file-extension sniffing some browsers do is not trusted.
var acceptedContentTypes = map[string]bool{
	"text/csv":        true,
	"application/csv": true,
}

func checkContentType(f File) error {
	ct, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil || !acceptedContentTypes[ct] {
		return &ContentTypeError{Name: f.Name, ContentType: f.ContentType}
	}
	return nil
}

// Import runs the full pipeline over the given files. All files are parsed
// before anything is written, so a malformed file aborts the run without
// touching the database. A tagging failure after insert does not fail the
// import; it is reported in Result.TaggingErr.
func (im *Importer) Import(ctx context.Context, files []File) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to import")
	}

	res := &Result{RunID: uuid.NewString()}

	for _, f := range files {
		if err := checkContentType(f); err != nil {
			return nil, err
		}
	}

	var (
		drafts    []domain.Draft
		snapshots []domain.BalanceSnapshot
	)
	for _, f := range files {
		st, err := statement.Parse(string(f.Data))
		if err != nil {
			return nil, fmt.Errorf("file %q: %w", f.Name, err)
		}
		drafts = append(drafts, st.Drafts...)
		if st.Balance != nil {
			snapshots = append(snapshots, *st.Balance)
		}
		log.Printf("import %s: file %q parsed, %d rows", res.RunID, f.Name, len(st.Drafts))
	}
	res.Parsed = len(drafts)

	inserted, err := im.store.InsertTransactions(ctx, fingerprint.Attach(drafts))
	if err != nil {
		return nil, err
	}
	res.Inserted = inserted
	res.Duplicates = len(drafts) - len(inserted)
	log.Printf("import %s: %d inserted, %d duplicates skipped", res.RunID, len(inserted), res.Duplicates)

	tagRes, err := im.engine.Apply(ctx, inserted)
	if err != nil {
		// The rows are committed; surface the failure as a warning.
		res.TaggingErr = err
		log.Printf("import %s: tagging failed: %v", res.RunID, err)
	} else {
		res.Tagging = tagRes
	}

	for _, snap := range snapshots {
		stored, err := im.store.UpsertBalance(ctx, snap)
		if err != nil {
			return res, err
		}
		res.Balances = append(res.Balances, *stored)
	}

	return res, nil
}

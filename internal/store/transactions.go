package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// InsertTransactions persists the drafts in one transaction and returns
// only the rows that were actually inserted. A draft whose fingerprint
// already exists is silently skipped, so re-importing a statement is a
// no-op for the overlapping rows. Any failure rolls the whole batch back.
func (s *Store) InsertTransactions(ctx context.Context, drafts []domain.Draft) ([]domain.Transaction, error) {
	tx, err := s.begin(ctx, "insert transactions")
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (date, description, amount, import_fingerprint)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (import_fingerprint) DO NOTHING
		RETURNING id`)
	if err != nil {
		return nil, storageErr("insert transactions", err)
	}
	defer stmt.Close()

	inserted := make([]domain.Transaction, 0, len(drafts))
	for _, d := range drafts {
		var id int64
		err := stmt.QueryRowContext(ctx,
			d.Date.Format(domain.DateLayout),
			d.Description,
			d.Amount.String(),
			d.Fingerprint,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			// Conflict: this row was imported before.
			continue
		}
		if err != nil {
			return nil, storageErr("insert transactions", err)
		}
		inserted = append(inserted, domain.Transaction{
			ID:          id,
			Date:        d.Date,
			Description: d.Description,
			Amount:      d.Amount,
			Fingerprint: d.Fingerprint,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("insert transactions", err)
	}
	return inserted, nil
}

// ListTransactions returns every stored transaction ordered by date, then id.
func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT id, date, description, amount, import_fingerprint, tag_id
		FROM transactions ORDER BY date, id`)
}

// ListUntagged returns the stored transactions that no tag has been applied
// to yet, ordered by date, then id.
func (s *Store) ListUntagged(ctx context.Context) ([]domain.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT id, date, description, amount, import_fingerprint, tag_id
		FROM transactions WHERE tag_id IS NULL ORDER BY date, id`)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list transactions", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list transactions", err)
	}
	return out, nil
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var (
		t       domain.Transaction
		dateStr string
		amtStr  string
	)
	if err := rows.Scan(&t.ID, &dateStr, &t.Description, &amtStr, &t.Fingerprint, &t.TagID); err != nil {
		return domain.Transaction{}, storageErr("scan transaction", err)
	}
	date, err := time.Parse(domain.DateLayout, dateStr)
	if err != nil {
		return domain.Transaction{}, storageErr("scan transaction", err)
	}
	amt, err := decimal.NewFromString(amtStr)
	if err != nil {
		return domain.Transaction{}, storageErr("scan transaction", err)
	}
	t.Date = date
	t.Amount = amt
	return t, nil
}

// TagUpdate assigns one tag to one stored transaction.
type TagUpdate struct {
	TransactionID int64
	TagID         int64
}

// UpdateTags applies the tag assignments in a single transaction. Either
// every update lands or none do.
func (s *Store) UpdateTags(ctx context.Context, updates []TagUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := s.begin(ctx, "update tags")
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE transactions SET tag_id = ? WHERE id = ?`)
	if err != nil {
		return storageErr("update tags", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.TagID, u.TransactionID); err != nil {
			return storageErr("update tags", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("update tags", err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// UpsertBalance records the snapshot unless the stored row for the same
// account is already at least as recent, in which case the stored row wins
// and is returned unchanged. The returned snapshot is always the row the
// database holds after the call.
func (s *Store) UpsertBalance(ctx context.Context, snap domain.BalanceSnapshot) (*domain.BalanceSnapshot, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO account_balances (account_id, balance, as_of)
		VALUES (?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE
		SET balance = excluded.balance, as_of = excluded.as_of
		WHERE excluded.as_of > account_balances.as_of`,
		snap.AccountID,
		snap.Balance.String(),
		snap.AsOf.Format(domain.DateLayout),
	)
	if err != nil {
		return nil, storageErr("upsert balance", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, storageErr("upsert balance", err)
	}
	if n > 0 {
		stored := snap
		return &stored, nil
	}
	// The stored snapshot was newer; report what the account holds now.
	return s.GetBalance(ctx, snap.AccountID)
}

// GetBalance returns the stored snapshot for the account, or nil if the
// account has never reported one.
func (s *Store) GetBalance(ctx context.Context, accountID string) (*domain.BalanceSnapshot, error) {
	var (
		snap   domain.BalanceSnapshot
		balStr string
		asOf   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT account_id, balance, as_of FROM account_balances
		WHERE account_id = ?`, accountID).
		Scan(&snap.AccountID, &balStr, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get balance", err)
	}

	snap.Balance, err = decimal.NewFromString(balStr)
	if err != nil {
		return nil, storageErr("get balance", err)
	}
	snap.AsOf, err = time.Parse(domain.DateLayout, asOf)
	if err != nil {
		return nil, storageErr("get balance", err)
	}
	return &snap, nil
}

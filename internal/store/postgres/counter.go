package postgres

import (
	"context"
	"database/sql"
	"errors"
)

// AllocateCounter runs one serializable read-modify-write of the counter row.
// The row is locked with FOR UPDATE; a concurrent first insert or a
// serialization failure surfaces as store.ErrConflict.
func (s *Store) AllocateCounter(ctx context.Context, name string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT next FROM counters WHERE name = $1 FOR UPDATE`, name).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = 1
	case err != nil:
		return 0, conflictError(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO counters (name, next, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET next = EXCLUDED.next, updated_at = NOW()
	`, name, current+1)
	if err != nil {
		return 0, conflictError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, conflictError(err)
	}
	return current, nil
}

// PeekCounter returns the value the next allocation would return.
func (s *Store) PeekCounter(ctx context.Context, name string) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, `SELECT next FROM counters WHERE name = $1`, name).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

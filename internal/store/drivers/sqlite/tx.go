package sqlite

import (
	"context"
	"database/sql"

	"github.com/RafatAiub/AmarBin-Backend/internal/store"
)

// txStore is a Store view scoped to a single transaction. Repos returned
// from it run their statements on the transaction connection.
type txStore struct {
	tx *sql.Tx
}

var _ store.Tx = (*txStore)(nil)

func (t *txStore) Accounts() store.Accounts           { return &accountsRepo{db: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{db: t.tx} }
func (t *txStore) LoginHistory() store.LoginHistory   { return &loginHistoryRepo{db: t.tx} }
func (t *txStore) Pickups() store.Pickups             { return &pickupsRepo{db: t.tx} }

// Tx on an open transaction is a programming error; SQLite does not
// support nested transactions.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Already inside a transaction; run fn against the same scope.
	return fn(t)
}

func (t *txStore) ApplyMigrations() error { return sql.ErrTxDone }

func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Commit() error { return t.tx.Commit() }

func (t *txStore) Rollback() error { return t.tx.Rollback() }

package sqlite

import (
	"context"
	"database/sql"

	"github.com/atriumhq/atrium/internal/api/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTxStore(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Close() error { return nil } // nothing to close; the outer DB stays open

// Ping is a no-op for transactions. The connection is already established
// when the transaction is created, so we just return nil.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) WithTx(ctx context.Context, fn func(store.Store) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users               { return &usersRepo{q: t.tx} }
func (t *txStore) Tenants() store.Tenants           { return &tenantsRepo{q: t.tx} }
func (t *txStore) JoinRequests() store.JoinRequests { return &joinRequestsRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations run before any tx starts

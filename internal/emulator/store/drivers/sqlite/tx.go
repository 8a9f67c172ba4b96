package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
)

var errNestedTx = errors.New("sqlite: nested transactions are not supported")

type txStore struct {
	repos
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close leaves the database open; the owner of the Store closes it.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return errNestedTx }

func (t *txStore) ApplyMigrations() error {
	return errors.New("sqlite: migrations cannot run inside a transaction")
}

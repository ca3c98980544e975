package testutil

import (
	"context"
	"database/sql"

	"github.com/budeshi/budeshi/internal/db"
)

// FailNthExec is a UnitOfWork whose Nth write inside the transaction returns
// Err. Writes before it really execute, so a rollback test can check that
// they disappear again. Reads are never counted.
type FailNthExec struct {
	DB  *sql.DB
	N   int
	Err error
}

func (f *FailNthExec) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(f.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &faultyTx{DBTX: tx, remaining: f.N, err: f.Err})
	})
}

type faultyTx struct {
	db.DBTX
	remaining int
	err       error
}

func (t *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.remaining--
	if t.remaining == 0 {
		return nil, t.err
	}
	return t.DBTX.ExecContext(ctx, query, args...)
}

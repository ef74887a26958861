package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/punchclock/internal/db"
)

// FailingUoW is a test UoW that injects Err into every ExecContext call
// for which Match returns true. Reads pass through. It lets tests make one
// user's writes fail while the rest of a batch proceeds.
type FailingUoW struct {
	DB    *sql.DB
	Match func(query string, args []any) bool
	Err   error
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	hookCtx, runHooks := db.WithCommitHooks(ctx)
	wrapped := &failingExec{DBTX: tx, match: u.Match, err: u.Err}
	if fnErr := fn(hookCtx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	runHooks()
	return nil
}

type failingExec struct {
	db.DBTX
	match func(query string, args []any) bool
	err   error
}

func (f *failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.match != nil && f.match(query, args) {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// ArgsContain reports whether any argument equals v.
func ArgsContain(args []any, v any) bool {
	for _, a := range args {
		if a == v {
			return true
		}
	}
	return false
}

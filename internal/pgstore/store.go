// Package pgstore provides a worktime data storage layer using PostgreSQL.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexanderramin/punchclock/internal/db"
	"github.com/alexanderramin/punchclock/internal/repository"
)

// Schema is applied on every Open. All statements are idempotent.
const Schema = `
create table if not exists users (
	id                    TEXT PRIMARY KEY,
	name                  TEXT NOT NULL,
	normal_working_hours  DOUBLE PRECISION NOT NULL DEFAULT 8 CHECK (normal_working_hours > 0),
	bank_details          TEXT NOT NULL DEFAULT '',
	notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	organization_id       TEXT,
	created_at            TIMESTAMP WITH TIME ZONE NOT NULL,
	updated_at            TIMESTAMP WITH TIME ZONE NOT NULL
);
create table if not exists branches (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL
);
create table if not exists work_sessions (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	branch_id       TEXT NOT NULL REFERENCES branches(id),
	start_time      TIMESTAMP WITH TIME ZONE NOT NULL,
	end_time        TIMESTAMP WITH TIME ZONE,
	timezone        TEXT NOT NULL DEFAULT '', -- zone of start_time, filled on stop for legacy rows
	organization_id TEXT,
	created_at      TIMESTAMP WITH TIME ZONE NOT NULL,
	updated_at      TIMESTAMP WITH TIME ZONE NOT NULL
);
create index if not exists idx_work_sessions_user_start ON work_sessions(user_id, start_time);
create unique index if not exists ux_work_sessions_active ON work_sessions(user_id) WHERE end_time IS NULL;
create table if not exists notifications (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title             TEXT NOT NULL,
	message           TEXT NOT NULL,
	type              TEXT NOT NULL,
	kind              TEXT NOT NULL CHECK (kind IN ('start', 'stop', 'auto_stop')),
	related_entity_id TEXT NOT NULL DEFAULT '',
	read              BOOLEAN NOT NULL DEFAULT FALSE,
	created_at        TIMESTAMP WITH TIME ZONE NOT NULL
);
create index if not exists idx_notifications_user ON notifications(user_id, created_at);
`

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements repository.Store on a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database at url and applies Schema. See
// [pgxpool.ParseConfig] for url handling details.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	_, err = pool.Exec(ctx, Schema)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func repos(q querier) repository.Repos {
	return repository.Repos{
		Sessions:      &sessionRepo{q: q},
		Users:         &userRepo{q: q},
		Branches:      &branchRepo{q: q},
		Notifications: &notificationRepo{q: q},
	}
}

func (s *Store) Repos() repository.Repos {
	return repos(s.pool)
}

// WithinTx runs fn in a transaction. Callbacks registered with db.OnCommit
// run after a successful commit only.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	hookCtx, runHooks := db.WithCommitHooks(ctx)
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		txDone(ctx, tx, &err)
		if err == nil {
			runHooks()
		}
	}()
	return fn(hookCtx, repos(tx))
}

func txDone(ctx context.Context, tx pgx.Tx, err *error) {
	if *err == nil {
		*err = tx.Commit(ctx)
	} else {
		*err = errors.Join(*err, tx.Rollback(ctx))
	}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func expectOneRow(tag pgconn.CommandTag, what string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
	}
	return nil
}

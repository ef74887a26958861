package repository

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/punchclock/internal/db"
)

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	uow db.UnitOfWork
}

// NewSQLiteStore wraps an open, migrated database.
func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: database, uow: db.NewSQLiteUnitOfWork(database)}
}

// NewSQLiteStoreWithUoW is NewSQLiteStore with a caller-supplied unit of
// work. The UoW must honour db.OnCommit.
func NewSQLiteStoreWithUoW(database *sql.DB, uow db.UnitOfWork) *SQLiteStore {
	return &SQLiteStore{db: database, uow: uow}
}

// OpenSQLiteStore opens the database at path, migrating it if needed.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	database, err := db.OpenDB(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(database), nil
}

func sqliteRepos(conn db.DBTX) Repos {
	return Repos{
		Sessions:      NewSQLiteSessionRepo(conn),
		Users:         NewSQLiteUserRepo(conn),
		Branches:      NewSQLiteBranchRepo(conn),
		Notifications: NewSQLiteNotificationRepo(conn),
	}
}

func (s *SQLiteStore) Repos() Repos {
	return sqliteRepos(s.db)
}

func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, sqliteRepos(tx))
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/punchclock/internal/db"
	"github.com/alexanderramin/punchclock/internal/domain"
)

// SQLiteBranchRepo implements BranchRepo using a SQLite database.
type SQLiteBranchRepo struct {
	db db.DBTX
}

func NewSQLiteBranchRepo(conn db.DBTX) *SQLiteBranchRepo {
	return &SQLiteBranchRepo{db: conn}
}

func (r *SQLiteBranchRepo) Create(ctx context.Context, b *domain.Branch) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO branches (id, name, created_at) VALUES (?, ?, ?)`,
		b.ID, b.Name, formatTime(b.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("branch %q: %w", b.Name, ErrDuplicate)
		}
		return fmt.Errorf("inserting branch: %w", err)
	}
	return nil
}

func (r *SQLiteBranchRepo) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	var b domain.Branch
	var createdStr string
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM branches WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &createdStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("branch: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning branch: %w", err)
	}
	if b.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &b, nil
}

func (r *SQLiteBranchRepo) List(ctx context.Context) ([]*domain.Branch, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM branches ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer rows.Close()

	var branches []*domain.Branch
	for rows.Next() {
		var b domain.Branch
		var createdStr string
		if err := rows.Scan(&b.ID, &b.Name, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning branch row: %w", err)
		}
		if b.CreatedAt, err = parseTime(createdStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		branches = append(branches, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating branches: %w", err)
	}
	return branches, nil
}

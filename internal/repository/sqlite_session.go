package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/punchclock/internal/db"
	"github.com/alexanderramin/punchclock/internal/domain"
)

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
type SQLiteSessionRepo struct {
	db db.DBTX
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo.
func NewSQLiteSessionRepo(conn db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: conn}
}

const sessionColumns = `s.id, s.user_id, s.branch_id, COALESCE(b.name, ''), s.start_time, s.end_time,
	s.timezone, s.organization_id, s.created_at, s.updated_at`

const sessionFrom = `FROM work_sessions s LEFT JOIN branches b ON b.id = s.branch_id`

func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.WorkSession) error {
	query := `INSERT INTO work_sessions (id, user_id, branch_id, start_time, end_time, timezone,
		organization_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.BranchID,
		formatTime(s.StartTime),
		nullableTimeToString(s.EndTime),
		s.Timezone,
		nullableString(s.OrganizationID),
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting work session: %w", ErrActiveSessionExists)
		}
		return fmt.Errorf("inserting work session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, id string) (*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` ` + sessionFrom + ` WHERE s.id = ?`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteSessionRepo) FindActiveByUser(ctx context.Context, userID string) (*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` ` + sessionFrom + `
		WHERE s.user_id = ? AND s.end_time IS NULL
		ORDER BY s.start_time DESC LIMIT 1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, userID))
}

func (r *SQLiteSessionRepo) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` ` + sessionFrom + `
		WHERE s.user_id = ? AND s.start_time >= ? AND s.start_time < ?
		ORDER BY s.start_time`
	rows, err := r.db.QueryContext(ctx, query, userID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("listing sessions in range: %w", err)
	}
	defer rows.Close()
	return r.scanSessions(rows)
}

func (r *SQLiteSessionRepo) ListOverlapping(ctx context.Context, userID string, from, to time.Time) ([]*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` ` + sessionFrom + `
		WHERE s.user_id = ? AND s.start_time < ? AND (s.end_time IS NULL OR s.end_time > ?)
		ORDER BY s.start_time`
	rows, err := r.db.QueryContext(ctx, query, userID, formatTime(to), formatTime(from))
	if err != nil {
		return nil, fmt.Errorf("listing overlapping sessions: %w", err)
	}
	defer rows.Close()
	return r.scanSessions(rows)
}

func (r *SQLiteSessionRepo) ListByUser(ctx context.Context, userID string) ([]*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` ` + sessionFrom + `
		WHERE s.user_id = ? ORDER BY s.start_time`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions by user: %w", err)
	}
	defer rows.Close()
	return r.scanSessions(rows)
}

func (r *SQLiteSessionRepo) ListActive(ctx context.Context) ([]*domain.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` ` + sessionFrom + `
		WHERE s.end_time IS NULL ORDER BY s.start_time`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing active sessions: %w", err)
	}
	defer rows.Close()
	return r.scanSessions(rows)
}

func (r *SQLiteSessionRepo) Update(ctx context.Context, s *domain.WorkSession) error {
	s.UpdatedAt = time.Now().UTC()
	query := `UPDATE work_sessions SET branch_id = ?, start_time = ?, end_time = ?, timezone = ?,
		organization_id = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		s.BranchID,
		formatTime(s.StartTime),
		nullableTimeToString(s.EndTime),
		s.Timezone,
		nullableString(s.OrganizationID),
		formatTime(s.UpdatedAt),
		s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("updating work session: %w", ErrActiveSessionExists)
		}
		return fmt.Errorf("updating work session: %w", err)
	}
	return expectOneRow(res, "work session")
}

func (r *SQLiteSessionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting work session: %w", err)
	}
	return expectOneRow(res, "work session")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteSessionRepo) scanSession(row *sql.Row) (*domain.WorkSession, error) {
	s, err := r.scanInto(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("work session: %w", ErrNotFound)
		}
		return nil, err
	}
	return s, nil
}

func (r *SQLiteSessionRepo) scanSessions(rows *sql.Rows) ([]*domain.WorkSession, error) {
	var sessions []*domain.WorkSession
	for rows.Next() {
		s, err := r.scanInto(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

func (r *SQLiteSessionRepo) scanInto(row rowScanner) (*domain.WorkSession, error) {
	var s domain.WorkSession
	var startStr, createdStr, updatedStr string
	var endStr, orgID sql.NullString

	err := row.Scan(
		&s.ID, &s.UserID, &s.BranchID, &s.BranchName, &startStr, &endStr,
		&s.Timezone, &orgID, &createdStr, &updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning work session: %w", err)
	}

	if s.StartTime, err = parseTime(startStr); err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	if s.EndTime, err = parseNullableTime(endStr); err != nil {
		return nil, fmt.Errorf("parsing end_time: %w", err)
	}
	if s.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	s.OrganizationID = stringPtr(orgID)
	return &s, nil
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/repository"
)

type sessionRepo struct {
	q querier
}

const selectSessions = `select s.id, s.user_id, s.branch_id, coalesce(b.name, ''), s.start_time, s.end_time,
	s.timezone, s.organization_id, s.created_at, s.updated_at
from work_sessions s left join branches b on b.id = s.branch_id`

func (r *sessionRepo) Create(ctx context.Context, s *domain.WorkSession) error {
	_, err := r.q.Exec(ctx, `insert into work_sessions
		(id, user_id, branch_id, start_time, end_time, timezone, organization_id, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.UserID, s.BranchID, s.StartTime.UTC(), utcPtr(s.EndTime), s.Timezone,
		s.OrganizationID, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting work session: %w", repository.ErrActiveSessionExists)
		}
		return fmt.Errorf("inserting work session: %w", err)
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*domain.WorkSession, error) {
	return r.one(ctx, selectSessions+` where s.id = $1`, id)
}

func (r *sessionRepo) FindActiveByUser(ctx context.Context, userID string) (*domain.WorkSession, error) {
	return r.one(ctx, selectSessions+` where s.user_id = $1 and s.end_time is null
		order by s.start_time desc limit 1`, userID)
}

func (r *sessionRepo) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.WorkSession, error) {
	return r.many(ctx, selectSessions+` where s.user_id = $1 and s.start_time >= $2 and s.start_time < $3
		order by s.start_time`, userID, from.UTC(), to.UTC())
}

func (r *sessionRepo) ListOverlapping(ctx context.Context, userID string, from, to time.Time) ([]*domain.WorkSession, error) {
	return r.many(ctx, selectSessions+` where s.user_id = $1 and s.start_time < $2
		and (s.end_time is null or s.end_time > $3) order by s.start_time`, userID, to.UTC(), from.UTC())
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID string) ([]*domain.WorkSession, error) {
	return r.many(ctx, selectSessions+` where s.user_id = $1 order by s.start_time`, userID)
}

func (r *sessionRepo) ListActive(ctx context.Context) ([]*domain.WorkSession, error) {
	return r.many(ctx, selectSessions+` where s.end_time is null order by s.start_time`)
}

func (r *sessionRepo) Update(ctx context.Context, s *domain.WorkSession) error {
	s.UpdatedAt = time.Now().UTC()
	tag, err := r.q.Exec(ctx, `update work_sessions set branch_id = $1, start_time = $2, end_time = $3,
		timezone = $4, organization_id = $5, updated_at = $6 where id = $7`,
		s.BranchID, s.StartTime.UTC(), utcPtr(s.EndTime), s.Timezone, s.OrganizationID, s.UpdatedAt, s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("updating work session: %w", repository.ErrActiveSessionExists)
		}
		return fmt.Errorf("updating work session: %w", err)
	}
	return expectOneRow(tag, "work session")
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `delete from work_sessions where id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting work session: %w", err)
	}
	return expectOneRow(tag, "work session")
}

func (r *sessionRepo) one(ctx context.Context, query string, args ...any) (*domain.WorkSession, error) {
	s, err := scanSession(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("work session: %w", repository.ErrNotFound)
	}
	return s, err
}

func (r *sessionRepo) many(ctx context.Context, query string, args ...any) ([]*domain.WorkSession, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()
	var sessions []*domain.WorkSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*domain.WorkSession, error) {
	var s domain.WorkSession
	err := row.Scan(&s.ID, &s.UserID, &s.BranchID, &s.BranchName, &s.StartTime, &s.EndTime,
		&s.Timezone, &s.OrganizationID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning work session: %w", err)
	}
	s.StartTime = s.StartTime.UTC()
	s.EndTime = utcPtr(s.EndTime)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

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

type userRepo struct {
	q querier
}

const selectUsers = `select id, name, normal_working_hours, bank_details, notifications_enabled,
	organization_id, created_at, updated_at from users`

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.q.Exec(ctx, `insert into users (id, name, normal_working_hours, bank_details,
		notifications_enabled, organization_id, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Name, u.NormalWorkingHours, u.BankDetails, u.NotificationsEnabled,
		u.OrganizationID, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, selectUsers+` where id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	return u, err
}

func (r *userRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.q.Query(ctx, selectUsers+` order by name`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()
	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	tag, err := r.q.Exec(ctx, `update users set name = $1, normal_working_hours = $2, bank_details = $3,
		notifications_enabled = $4, organization_id = $5, updated_at = $6 where id = $7`,
		u.Name, u.NormalWorkingHours, u.BankDetails, u.NotificationsEnabled, u.OrganizationID, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return expectOneRow(tag, "user")
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.NormalWorkingHours, &u.BankDetails, &u.NotificationsEnabled,
		&u.OrganizationID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

type branchRepo struct {
	q querier
}

func (r *branchRepo) Create(ctx context.Context, b *domain.Branch) error {
	_, err := r.q.Exec(ctx, `insert into branches (id, name, created_at) values ($1, $2, $3)`,
		b.ID, b.Name, b.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("branch %q: %w", b.Name, repository.ErrDuplicate)
		}
		return fmt.Errorf("inserting branch: %w", err)
	}
	return nil
}

func (r *branchRepo) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	var b domain.Branch
	err := r.q.QueryRow(ctx, `select id, name, created_at from branches where id = $1`, id).
		Scan(&b.ID, &b.Name, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("branch: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning branch: %w", err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}

func (r *branchRepo) List(ctx context.Context) ([]*domain.Branch, error) {
	rows, err := r.q.Query(ctx, `select id, name, created_at from branches order by name`)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer rows.Close()
	var branches []*domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning branch row: %w", err)
		}
		b.CreatedAt = b.CreatedAt.UTC()
		branches = append(branches, &b)
	}
	return branches, rows.Err()
}

type notificationRepo struct {
	q querier
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.q.Exec(ctx, `insert into notifications
		(id, user_id, title, message, type, kind, related_entity_id, read, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.UserID, n.Title, n.Message, string(n.Type), string(n.Kind),
		n.RelatedEntityID, n.Read, n.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// ListByUser returns the newest notifications first. A non-positive limit
// returns all of them.
func (r *notificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := r.q.Query(ctx, `select id, user_id, title, message, type, kind, related_entity_id, read, created_at
		from notifications where user_id = $1 order by created_at desc limit $2`, userID, lim)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()
	var out []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typ, kind string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &kind,
			&n.RelatedEntityID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Type = domain.NotificationType(typ)
		n.Kind = domain.NotificationKind(kind)
		n.CreatedAt = n.CreatedAt.UTC()
		out = append(out, &n)
	}
	return out, rows.Err()
}

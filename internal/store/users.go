package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hirematch/hirematch-api/internal/auth"
)

// EnsureUserRecords idempotently upserts the users row and the role-specific
// profile row for an identity. Called from the auth resolver on every
// successful resolution; failures are the caller's to swallow.
func (s *Store) EnsureUserRecords(ctx context.Context, userID string, role auth.Role) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("user id is not a UUID: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (id, role) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET role = $2`,
		id, string(role),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	switch role {
	case auth.RoleCandidate:
		_, err = s.pool.Exec(ctx,
			`INSERT INTO candidates (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id)
	case auth.RoleRecruiter:
		_, err = s.pool.Exec(ctx,
			`INSERT INTO recruiters (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert %s profile: %w", role, err)
	}
	return nil
}

// ListUsers retrieves all user accounts.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, role, COALESCE(status, 'active'), created_at FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListUsersByIDs retrieves id/email pairs for the given users.
func (s *Store) ListUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, role, COALESCE(status, 'active'), created_at FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserStatus sets a user's account status.
func (s *Store) UpdateUserStatus(ctx context.Context, id uuid.UUID, status string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET status = $1 WHERE id = $2
		 RETURNING id, email, role, COALESCE(status, 'active'), created_at`,
		status, id,
	).Scan(&u.ID, &u.Email, &u.Role, &u.Status, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{Kind: "user", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	return &u, nil
}

// CountUsersByRole returns account counts per role. Missing table degrades
// to an empty map so the admin overview stays usable before migration.
func (s *Store) CountUsersByRole(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		if isMissingTable(err) {
			return map[string]int{}, nil
		}
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

// ListCompanies retrieves all employer records.
func (s *Store) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, website, industry, location, COALESCE(plan, 'free') FROM companies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Website, &c.Industry, &c.Location, &c.Plan); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Staff is a back-office account. Customers never log in here; only agency
// staff reviewing reservations do.
type Staff struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, s Staff) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO staff (id, name, email, password_hash)
		VALUES (?, ?, ?, ?)
	`, s.ID, s.Name, s.Email, s.PasswordHash)

	if err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, token_version, created_at
		FROM staff
		WHERE LOWER(email) = ?
	`, email)
	return scanStaff(row)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Staff, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, token_version, created_at
		FROM staff
		WHERE id = ?
	`, id)
	return scanStaff(row)
}

func scanStaff(row *sql.Row) (*Staff, error) {
	var s Staff
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.TokenVersion, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan staff: %w", err)
	}
	return &s, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM staff`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count staff: %w", err)
	}
	return n, nil
}

func (r *Repo) GetTokenVersion(ctx context.Context, id string) (int, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT token_version
		FROM staff
		WHERE id = ?
	`, id)

	var version int
	if err := row.Scan(&version); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("staff not found")
		}
		return 0, fmt.Errorf("get token version: %w", err)
	}
	return version, nil
}

func (r *Repo) UpdatePasswordAndBumpTokenVersion(ctx context.Context, id string, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE staff
		SET password_hash = ?, token_version = token_version + 1
		WHERE id = ?
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update password: staff not found")
	}
	return nil
}

func (r *Repo) BumpTokenVersion(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE staff
		SET token_version = token_version + 1
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump token version rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bump token version: staff not found")
	}
	return nil
}

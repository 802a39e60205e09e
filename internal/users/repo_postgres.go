package users

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo assumes the following table exists:
//
//	users (
//	  id TEXT PRIMARY KEY,
//	  name TEXT NOT NULL,
//	  email TEXT NOT NULL UNIQUE,
//	  role TEXT NOT NULL,
//	  avatar_url TEXT,
//	  password_hash TEXT NOT NULL,
//	  max_minutes INT NOT NULL DEFAULT 0,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const userColumns = `id, name, email, role, COALESCE(avatar_url, ''), password_hash, max_minutes, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.AvatarURL,
		&u.PasswordHash,
		&u.MaxMinutes,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *PostgresRepo) Insert(ctx context.Context, u User) error {
	const q = `
INSERT INTO users (id, name, email, role, avatar_url, password_hash, max_minutes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Name, u.Email, u.Role, u.AvatarURL, u.PasswordHash, u.MaxMinutes, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, u User) error {
	const q = `
UPDATE users
SET name = $2, avatar_url = $3, password_hash = $4, max_minutes = $5, updated_at = $6
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, u.ID, u.Name, u.AvatarURL, u.PasswordHash, u.MaxMinutes, u.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (User, bool, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return u, true, nil
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, bool, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return u, true, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

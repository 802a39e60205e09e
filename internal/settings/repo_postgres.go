package settings

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo assumes the following table exists:
//
//	system_settings (
//	  key TEXT PRIMARY KEY,
//	  value TEXT NOT NULL,          -- encrypted, ivhex:cipherhex
//	  category TEXT NOT NULL,
//	  is_public BOOLEAN NOT NULL DEFAULT FALSE,
//	  updated_by TEXT,
//	  updated_at TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Get(ctx context.Context, key string) (Setting, bool, error) {
	const q = `
SELECT key, value, category, is_public, COALESCE(updated_by, ''), updated_at
FROM system_settings
WHERE key = $1
`
	var s Setting
	err := r.db.QueryRowContext(ctx, q, key).Scan(
		&s.Key,
		&s.Value,
		&s.Category,
		&s.IsPublic,
		&s.UpdatedBy,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Setting{}, false, nil
		}
		return Setting{}, false, err
	}
	return s, true, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, s Setting) error {
	const q = `
INSERT INTO system_settings (key, value, category, is_public, updated_by, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value,
              category = EXCLUDED.category,
              is_public = EXCLUDED.is_public,
              updated_by = EXCLUDED.updated_by,
              updated_at = EXCLUDED.updated_at
`
	_, err := r.db.ExecContext(ctx, q, s.Key, s.Value, s.Category, s.IsPublic, s.UpdatedBy, s.UpdatedAt)
	return err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Setting, error) {
	const q = `
SELECT key, value, category, is_public, COALESCE(updated_by, ''), updated_at
FROM system_settings
ORDER BY key
`
	return r.scanRows(ctx, q)
}

func (r *PostgresRepo) ListPublic(ctx context.Context) ([]Setting, error) {
	const q = `
SELECT key, value, category, is_public, COALESCE(updated_by, ''), updated_at
FROM system_settings
WHERE is_public = TRUE
ORDER BY key
`
	return r.scanRows(ctx, q)
}

func (r *PostgresRepo) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM system_settings WHERE key = $1`
	_, err := r.db.ExecContext(ctx, q, key)
	return err
}

func (r *PostgresRepo) scanRows(ctx context.Context, q string) ([]Setting, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Category, &s.IsPublic, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

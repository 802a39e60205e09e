package templates

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo assumes the following table exists:
//
//	templates (
//	  id TEXT PRIMARY KEY,
//	  name TEXT NOT NULL,
//	  description TEXT NOT NULL,
//	  category TEXT NOT NULL,
//	  provider TEXT NOT NULL,
//	  model_provider TEXT NOT NULL,
//	  system_prompt TEXT NOT NULL,
//	  first_message TEXT NOT NULL,
//	  is_public BOOLEAN NOT NULL DEFAULT TRUE,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const templateColumns = `id, name, description, category, provider, model_provider, system_prompt, first_message, is_public, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (Template, error) {
	var t Template
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Category,
		&t.Provider,
		&t.ModelProvider,
		&t.SystemPrompt,
		&t.FirstMessage,
		&t.IsPublic,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (r *PostgresRepo) Insert(ctx context.Context, t Template) error {
	const q = `
INSERT INTO templates (id, name, description, category, provider, model_provider, system_prompt, first_message, is_public, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
	_, err := r.db.ExecContext(ctx, q,
		t.ID, t.Name, t.Description, t.Category, t.Provider, t.ModelProvider,
		t.SystemPrompt, t.FirstMessage, t.IsPublic, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, t Template) error {
	const q = `
UPDATE templates
SET name = $2, description = $3, category = $4, provider = $5, model_provider = $6,
    system_prompt = $7, first_message = $8, is_public = $9, updated_at = $10
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		t.ID, t.Name, t.Description, t.Category, t.Provider, t.ModelProvider,
		t.SystemPrompt, t.FirstMessage, t.IsPublic, t.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Template, bool, error) {
	t, err := scanTemplate(r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, false, nil
		}
		return Template{}, false, err
	}
	return t, true, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Template, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

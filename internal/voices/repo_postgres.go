package voices

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PostgresRepo assumes the following table exists:
//
//	voices (
//	  id TEXT PRIMARY KEY,
//	  name TEXT NOT NULL,
//	  provider TEXT NOT NULL,
//	  provider_voice_id TEXT NOT NULL,
//	  preview_url TEXT,
//	  is_public BOOLEAN NOT NULL DEFAULT FALSE,
//	  assigned_to JSONB NOT NULL DEFAULT '[]',
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const voiceColumns = `id, name, provider, provider_voice_id, COALESCE(preview_url, ''), is_public, assigned_to, created_at, updated_at`

func scanVoice(row interface{ Scan(...any) error }) (Voice, error) {
	var v Voice
	var assigned []byte
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Provider,
		&v.ProviderVoiceID,
		&v.PreviewURL,
		&v.IsPublic,
		&assigned,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return Voice{}, err
	}
	if len(assigned) > 0 {
		if err := json.Unmarshal(assigned, &v.AssignedTo); err != nil {
			return Voice{}, err
		}
	}
	return v, nil
}

func marshalAssigned(assigned []string) ([]byte, error) {
	if assigned == nil {
		assigned = []string{}
	}
	return json.Marshal(assigned)
}

func (r *PostgresRepo) Insert(ctx context.Context, v Voice) error {
	assigned, err := marshalAssigned(v.AssignedTo)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO voices (id, name, provider, provider_voice_id, preview_url, is_public, assigned_to, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	_, err = r.db.ExecContext(ctx, q, v.ID, v.Name, v.Provider, v.ProviderVoiceID, v.PreviewURL, v.IsPublic, assigned, v.CreatedAt, v.UpdatedAt)
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, v Voice) error {
	assigned, err := marshalAssigned(v.AssignedTo)
	if err != nil {
		return err
	}
	const q = `
UPDATE voices
SET name = $2, preview_url = $3, is_public = $4, assigned_to = $5, updated_at = $6
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, v.ID, v.Name, v.PreviewURL, v.IsPublic, assigned, v.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM voices WHERE id = $1`, id)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Voice, bool, error) {
	v, err := scanVoice(r.db.QueryRowContext(ctx, `SELECT `+voiceColumns+` FROM voices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Voice{}, false, nil
		}
		return Voice{}, false, err
	}
	return v, true, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Voice, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+voiceColumns+` FROM voices ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Voice
	for rows.Next() {
		v, err := scanVoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

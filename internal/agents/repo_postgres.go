package agents

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo assumes the following table exists:
//
//	agents (
//	  id TEXT PRIMARY KEY,
//	  user_id TEXT NOT NULL REFERENCES users(id),
//	  name TEXT NOT NULL,
//	  provider TEXT NOT NULL,
//	  model_provider TEXT NOT NULL,
//	  system_prompt TEXT NOT NULL,
//	  first_message TEXT NOT NULL,
//	  voice_id TEXT,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const agentColumns = `id, user_id, name, provider, model_provider, system_prompt, first_message, COALESCE(voice_id, ''), created_at, updated_at`

func scanAgent(row interface{ Scan(...any) error }) (Agent, error) {
	var a Agent
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.Provider,
		&a.ModelProvider,
		&a.SystemPrompt,
		&a.FirstMessage,
		&a.VoiceID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *PostgresRepo) Insert(ctx context.Context, a Agent) error {
	const q = `
INSERT INTO agents (id, user_id, name, provider, model_provider, system_prompt, first_message, voice_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.UserID, a.Name, a.Provider, a.ModelProvider, a.SystemPrompt, a.FirstMessage, a.VoiceID, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, a Agent) error {
	const q = `
UPDATE agents
SET name = $2, model_provider = $3, system_prompt = $4, first_message = $5, voice_id = $6, updated_at = $7
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, a.ID, a.Name, a.ModelProvider, a.SystemPrompt, a.FirstMessage, a.VoiceID, a.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM agents WHERE id = $1`, id)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Agent, bool, error) {
	a, err := scanAgent(r.db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Agent{}, false, nil
		}
		return Agent{}, false, err
	}
	return a, true, nil
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Agent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

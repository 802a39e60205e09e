package recordings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
)

// PostgresRepo assumes the following table exists:
//
//	call_recordings (
//	  id TEXT PRIMARY KEY,
//	  user_id TEXT NOT NULL REFERENCES users(id),
//	  phone_number TEXT NOT NULL,
//	  duration INTEGER NOT NULL,
//	  transcript TEXT NOT NULL DEFAULT '',
//	  sentiment TEXT NOT NULL DEFAULT 'neutral',
//	  audio_url TEXT,
//	  highlights JSONB,
//	  created_at TIMESTAMPTZ NOT NULL
//	)
//
// with an index on (user_id, created_at DESC).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const recordingColumns = `id, user_id, phone_number, duration, transcript, sentiment, COALESCE(audio_url, ''), highlights, created_at`

func scanRecording(row interface{ Scan(...any) error }) (CallRecording, error) {
	var rec CallRecording
	var highlights []byte
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.PhoneNumber,
		&rec.Duration,
		&rec.Transcript,
		&rec.Sentiment,
		&rec.AudioURL,
		&highlights,
		&rec.CreatedAt,
	)
	if err != nil {
		return CallRecording{}, err
	}
	if len(highlights) > 0 {
		if err := json.Unmarshal(highlights, &rec.Highlights); err != nil {
			return CallRecording{}, err
		}
	}
	return rec, nil
}

func (r *PostgresRepo) Append(ctx context.Context, rec CallRecording) error {
	var highlights []byte
	if rec.Highlights != nil {
		var err error
		highlights, err = json.Marshal(rec.Highlights)
		if err != nil {
			return err
		}
	}
	const q = `
INSERT INTO call_recordings (id, user_id, phone_number, duration, transcript, sentiment, audio_url, highlights, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.UserID, rec.PhoneNumber, rec.Duration, rec.Transcript,
		rec.Sentiment, rec.AudioURL, highlights, rec.CreatedAt)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, userID, id string) (CallRecording, bool, error) {
	rec, err := scanRecording(r.db.QueryRowContext(ctx,
		`SELECT `+recordingColumns+` FROM call_recordings WHERE user_id = $1 AND id = $2`, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallRecording{}, false, nil
		}
		return CallRecording{}, false, err
	}
	return rec, true, nil
}

// List pages newest-first. The cursor is the last seen recording id; rows at
// or before that recording's created_at (tie-broken by id) are skipped.
func (r *PostgresRepo) List(ctx context.Context, q ListQuery) ([]CallRecording, error) {
	sqlQ := `SELECT ` + recordingColumns + ` FROM call_recordings WHERE user_id = $1`
	args := []any{q.UserID}

	if q.Cursor != "" {
		args = append(args, q.Cursor)
		sqlQ += ` AND (created_at, id) < (SELECT created_at, id FROM call_recordings WHERE id = $` + strconv.Itoa(len(args)) + `)`
	}
	if q.Sentiment != "" {
		args = append(args, q.Sentiment)
		sqlQ += ` AND sentiment = $` + strconv.Itoa(len(args))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := strconv.Itoa(len(args))
		sqlQ += ` AND (phone_number LIKE $` + n + ` OR transcript ILIKE $` + n + `)`
	}

	sqlQ += ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sqlQ += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, sqlQ, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecordings(rows)
}

func (r *PostgresRepo) ListAllByUser(ctx context.Context, userID string) ([]CallRecording, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordingColumns+` FROM call_recordings WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecordings(rows)
}

func collectRecordings(rows *sql.Rows) ([]CallRecording, error) {
	var out []CallRecording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

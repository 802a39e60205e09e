package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/webNext25/zoom-smart-dialer/pkg/utils"
)

var ErrInvalidArgument = errors.New("usage: invalid argument")

// Unlimited is returned by RemainingSeconds for users with no minute quota.
const Unlimited = -1

// Service maintains the usage ledger and its balance projection.
//
// Schema:
//
//	usage_ledger (
//	  id TEXT PRIMARY KEY,
//	  user_id TEXT NOT NULL REFERENCES users(id),
//	  call_id TEXT NOT NULL,
//	  seconds INTEGER NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  UNIQUE (user_id, call_id)
//	)
//
//	usage_balances (
//	  user_id TEXT PRIMARY KEY REFERENCES users(id),
//	  used_seconds INTEGER NOT NULL DEFAULT 0,
//	  updated_at TIMESTAMPTZ NOT NULL
//	)
type Service struct {
	db    *sql.DB
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

// RecordCall charges a finished call against the user's quota. Safe to retry:
// a duplicate (userID, callID) pair leaves the ledger and balance untouched.
func (s *Service) RecordCall(ctx context.Context, userID, callID string, seconds int) error {
	if userID == "" || callID == "" {
		return ErrInvalidArgument
	}
	if seconds < 0 {
		return ErrInvalidArgument
	}
	now := s.clock().UTC()

	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO usage_ledger (id, user_id, call_id, seconds, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (user_id, call_id) DO NOTHING
`, uuid.NewString(), userID, callID, seconds, now)
		if err != nil {
			return err
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			// Already charged.
			return nil
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO usage_balances (user_id, used_seconds, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (user_id) DO UPDATE
SET used_seconds = usage_balances.used_seconds + EXCLUDED.used_seconds,
    updated_at = EXCLUDED.updated_at
`, userID, seconds, now)
		return err
	})
}

func (s *Service) UsedSeconds(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrInvalidArgument
	}
	var used int
	err := s.db.QueryRowContext(ctx,
		`SELECT used_seconds FROM usage_balances WHERE user_id = $1`, userID).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return used, err
}

// RemainingSeconds compares usage against the user's max_minutes quota. A
// quota of zero means the user is unmetered and Unlimited is returned.
func (s *Service) RemainingSeconds(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrInvalidArgument
	}
	var maxMinutes, used int
	err := s.db.QueryRowContext(ctx, `
SELECT u.max_minutes, COALESCE(b.used_seconds, 0)
FROM users u
LEFT JOIN usage_balances b ON b.user_id = u.id
WHERE u.id = $1
`, userID).Scan(&maxMinutes, &used)
	if err != nil {
		return 0, err
	}
	if maxMinutes <= 0 {
		return Unlimited, nil
	}
	remaining := maxMinutes*60 - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// History returns the user's ledger entries, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, call_id, seconds, created_at
FROM usage_ledger
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.CallID, &e.Seconds, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

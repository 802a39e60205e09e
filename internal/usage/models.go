package usage

import "time"

// Entry is one row in the append-only usage ledger. Each completed call
// writes exactly one entry; the (user_id, call_id) pair is unique so retried
// writes are no-ops.
type Entry struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CallID    string    `json:"call_id" db:"call_id"`
	Seconds   int       `json:"seconds" db:"seconds"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Balance is the projected total for a user, maintained transactionally with
// the ledger so reads never scan history.
type Balance struct {
	UserID      string    `json:"user_id" db:"user_id"`
	UsedSeconds int       `json:"used_seconds" db:"used_seconds"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

package recordings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for call recordings.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, r CallRecording) error
	Get(ctx context.Context, userID, id string) (CallRecording, bool, error)
	// List returns recordings for a user, newest first, starting after the
	// cursor id (exclusive) when cursor is non-empty.
	List(ctx context.Context, q ListQuery) ([]CallRecording, error)
	ListAllByUser(ctx context.Context, userID string) ([]CallRecording, error)
}

type ListQuery struct {
	UserID    string
	Limit     int
	Cursor    string
	Search    string
	Sentiment Sentiment
}

var (
	ErrInvalidArgument = errors.New("recordings: invalid argument")
	ErrNotFound        = errors.New("recordings: not found")
)

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	PhoneNumber string            `json:"phone_number"`
	Duration    int               `json:"duration"`
	Transcript  string            `json:"transcript"`
	Sentiment   Sentiment         `json:"sentiment,omitempty"`
	AudioURL    string            `json:"audio_url,omitempty"`
	Highlights  map[string]string `json:"highlights,omitempty"`
}

// Create appends a recording. Defaults mirror the external API contract:
// empty phone number becomes "Unknown", missing sentiment becomes neutral.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (CallRecording, error) {
	if userID == "" {
		return CallRecording{}, ErrInvalidArgument
	}
	if req.Duration < 0 {
		return CallRecording{}, ErrInvalidArgument
	}
	if req.PhoneNumber == "" {
		req.PhoneNumber = "Unknown"
	}
	if req.Sentiment == "" {
		req.Sentiment = SentimentNeutral
	}
	if !isValidSentiment(req.Sentiment) {
		return CallRecording{}, ErrInvalidArgument
	}

	rec := CallRecording{
		ID:          uuid.NewString(),
		UserID:      userID,
		PhoneNumber: req.PhoneNumber,
		Duration:    req.Duration,
		Transcript:  req.Transcript,
		Sentiment:   req.Sentiment,
		AudioURL:    req.AudioURL,
		Highlights:  req.Highlights,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.repo.Append(ctx, rec); err != nil {
		return CallRecording{}, err
	}
	return rec, nil
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Page struct {
	Recordings []CallRecording `json:"recordings"`
	HasMore    bool            `json:"has_more"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// List returns a page of recordings, newest first. The repository fetches
// limit+1 rows so HasMore costs no extra query.
func (s *Service) List(ctx context.Context, q ListQuery) (Page, error) {
	if q.UserID == "" {
		return Page{}, ErrInvalidArgument
	}
	if q.Sentiment != "" && !isValidSentiment(q.Sentiment) {
		return Page{}, ErrInvalidArgument
	}
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}

	fetch := q
	fetch.Limit = q.Limit + 1
	rows, err := s.repo.List(ctx, fetch)
	if err != nil {
		return Page{}, err
	}

	page := Page{Recordings: rows}
	if len(rows) > q.Limit {
		page.Recordings = rows[:q.Limit]
		page.HasMore = true
		page.NextCursor = page.Recordings[len(page.Recordings)-1].ID
	}
	return page, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (CallRecording, error) {
	if userID == "" || id == "" {
		return CallRecording{}, ErrInvalidArgument
	}
	rec, ok, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return CallRecording{}, err
	}
	if !ok {
		return CallRecording{}, ErrNotFound
	}
	return rec, nil
}

// Summary aggregates a user's call history for the analytics dashboard.
type Summary struct {
	TotalCalls      int               `json:"total_calls"`
	TotalMinutes    int               `json:"total_minutes"`
	AverageDuration int               `json:"average_duration"`
	SentimentCounts map[Sentiment]int `json:"sentiment_counts"`
	RecentCalls     []CallRecording   `json:"recent_calls"`
}

const recentCallsCount = 5

func (s *Service) Summarize(ctx context.Context, userID string) (Summary, error) {
	if userID == "" {
		return Summary{}, ErrInvalidArgument
	}
	rows, err := s.repo.ListAllByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{SentimentCounts: make(map[Sentiment]int)}
	totalSeconds := 0
	for _, r := range rows {
		out.TotalCalls++
		totalSeconds += r.Duration
		out.SentimentCounts[r.Sentiment]++
	}
	out.TotalMinutes = totalSeconds / 60
	if out.TotalCalls > 0 {
		out.AverageDuration = totalSeconds / out.TotalCalls
	}
	if len(rows) > recentCallsCount {
		rows = rows[:recentCallsCount]
	}
	out.RecentCalls = rows
	return out, nil
}

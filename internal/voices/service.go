package voices

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for voices.
type Repository interface {
	Insert(ctx context.Context, v Voice) error
	Update(ctx context.Context, v Voice) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Voice, bool, error)
	List(ctx context.Context) ([]Voice, error)
}

var (
	ErrInvalidArgument = errors.New("voices: invalid argument")
	ErrNotFound        = errors.New("voices: not found")
)

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	Name            string `json:"name"`
	Provider        string `json:"provider"`
	ProviderVoiceID string `json:"provider_voice_id"`
	PreviewURL      string `json:"preview_url,omitempty"`
	IsPublic        bool   `json:"is_public"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Voice, error) {
	if req.Name == "" || req.ProviderVoiceID == "" || !isValidProvider(req.Provider) {
		return Voice{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	v := Voice{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Provider:        req.Provider,
		ProviderVoiceID: req.ProviderVoiceID,
		PreviewURL:      req.PreviewURL,
		IsPublic:        req.IsPublic,
		AssignedTo:      []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, v); err != nil {
		return Voice{}, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (Voice, error) {
	if id == "" {
		return Voice{}, ErrInvalidArgument
	}
	v, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Voice{}, err
	}
	if !ok {
		return Voice{}, ErrNotFound
	}
	return v, nil
}

// GetVisible returns the voice only if the user may use it.
func (s *Service) GetVisible(ctx context.Context, userID, id string) (Voice, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return Voice{}, err
	}
	if !v.VisibleTo(userID) {
		return Voice{}, ErrNotFound
	}
	return v, nil
}

// ListVisible returns public voices plus voices assigned to the user.
func (s *Service) ListVisible(ctx context.Context, userID string) ([]Voice, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Voice, 0, len(all))
	for _, v := range all {
		if v.VisibleTo(userID) {
			out = append(out, v)
		}
	}
	return out, nil
}

// ListAll returns the whole library. Admin-only.
func (s *Service) ListAll(ctx context.Context) ([]Voice, error) {
	return s.repo.List(ctx)
}

type UpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	PreviewURL *string `json:"preview_url,omitempty"`
	IsPublic   *bool   `json:"is_public,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Voice, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return Voice{}, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return Voice{}, ErrInvalidArgument
		}
		v.Name = *req.Name
	}
	if req.PreviewURL != nil {
		v.PreviewURL = *req.PreviewURL
	}
	if req.IsPublic != nil {
		v.IsPublic = *req.IsPublic
	}

	v.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, v); err != nil {
		return Voice{}, err
	}
	return v, nil
}

// Assign grants a user access to a private voice. Idempotent.
func (s *Service) Assign(ctx context.Context, id, userID string) (Voice, error) {
	if userID == "" {
		return Voice{}, ErrInvalidArgument
	}
	v, err := s.Get(ctx, id)
	if err != nil {
		return Voice{}, err
	}
	for _, u := range v.AssignedTo {
		if u == userID {
			return v, nil
		}
	}
	v.AssignedTo = append(v.AssignedTo, userID)
	v.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, v); err != nil {
		return Voice{}, err
	}
	return v, nil
}

// Unassign revokes a user's access. Idempotent.
func (s *Service) Unassign(ctx context.Context, id, userID string) (Voice, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return Voice{}, err
	}
	kept := v.AssignedTo[:0]
	for _, u := range v.AssignedTo {
		if u != userID {
			kept = append(kept, u)
		}
	}
	v.AssignedTo = kept
	v.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, v); err != nil {
		return Voice{}, err
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, id)
}

package agents

import (
	"context"
	"errors"
	"time"

	"github.com/webNext25/zoom-smart-dialer/internal/rbac"

	"github.com/google/uuid"
)

// Repository is the persistence contract for agents.
type Repository interface {
	Insert(ctx context.Context, a Agent) error
	Update(ctx context.Context, a Agent) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Agent, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Agent, error)
}

var (
	ErrInvalidArgument = errors.New("agents: invalid argument")
	ErrNotFound        = errors.New("agents: not found")
	ErrForbidden       = errors.New("agents: forbidden")
)

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	ModelProvider string `json:"model_provider"`
	SystemPrompt  string `json:"system_prompt"`
	FirstMessage  string `json:"first_message"`
	VoiceID       string `json:"voice_id,omitempty"`
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (Agent, error) {
	if userID == "" {
		return Agent{}, ErrInvalidArgument
	}
	if req.Name == "" || req.SystemPrompt == "" || req.FirstMessage == "" {
		return Agent{}, ErrInvalidArgument
	}
	if !isValidProvider(req.Provider) || !isValidModelProvider(req.ModelProvider) {
		return Agent{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	a := Agent{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          req.Name,
		Provider:      req.Provider,
		ModelProvider: req.ModelProvider,
		SystemPrompt:  req.SystemPrompt,
		FirstMessage:  req.FirstMessage,
		VoiceID:       req.VoiceID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return Agent{}, err
	}
	return a, nil
}

// Get returns an agent if the caller owns it or is an admin.
func (s *Service) Get(ctx context.Context, callerID, callerRole, id string) (Agent, error) {
	if id == "" {
		return Agent{}, ErrInvalidArgument
	}
	a, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Agent{}, err
	}
	if !ok {
		return Agent{}, ErrNotFound
	}
	if a.UserID != callerID && !rbac.IsAdmin(callerRole) {
		return Agent{}, ErrForbidden
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Agent, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByUser(ctx, userID)
}

type UpdateRequest struct {
	Name          *string `json:"name,omitempty"`
	ModelProvider *string `json:"model_provider,omitempty"`
	SystemPrompt  *string `json:"system_prompt,omitempty"`
	FirstMessage  *string `json:"first_message,omitempty"`
	VoiceID       *string `json:"voice_id,omitempty"`
}

func (s *Service) Update(ctx context.Context, callerID, callerRole, id string, req UpdateRequest) (Agent, error) {
	a, err := s.Get(ctx, callerID, callerRole, id)
	if err != nil {
		return Agent{}, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return Agent{}, ErrInvalidArgument
		}
		a.Name = *req.Name
	}
	if req.ModelProvider != nil {
		if !isValidModelProvider(*req.ModelProvider) {
			return Agent{}, ErrInvalidArgument
		}
		a.ModelProvider = *req.ModelProvider
	}
	if req.SystemPrompt != nil {
		if *req.SystemPrompt == "" {
			return Agent{}, ErrInvalidArgument
		}
		a.SystemPrompt = *req.SystemPrompt
	}
	if req.FirstMessage != nil {
		if *req.FirstMessage == "" {
			return Agent{}, ErrInvalidArgument
		}
		a.FirstMessage = *req.FirstMessage
	}
	if req.VoiceID != nil {
		a.VoiceID = *req.VoiceID
	}

	a.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return Agent{}, err
	}
	return a, nil
}

// Delete removes an agent. Deletion cascades to no other entity.
func (s *Service) Delete(ctx context.Context, callerID, callerRole, id string) error {
	if _, err := s.Get(ctx, callerID, callerRole, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

package templates

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for the template gallery.
type Repository interface {
	Insert(ctx context.Context, t Template) error
	Update(ctx context.Context, t Template) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Template, bool, error)
	List(ctx context.Context) ([]Template, error)
}

var (
	ErrInvalidArgument = errors.New("templates: invalid argument")
	ErrNotFound        = errors.New("templates: not found")
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
	Description   string `json:"description"`
	Category      string `json:"category"`
	Provider      string `json:"provider,omitempty"`
	ModelProvider string `json:"model_provider,omitempty"`
	SystemPrompt  string `json:"system_prompt"`
	FirstMessage  string `json:"first_message"`
	IsPublic      *bool  `json:"is_public,omitempty"`
}

// Create adds a template. Name, description, category and both prompt fields
// are required; provider and model provider default, and templates are
// public unless explicitly staged private.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Template, error) {
	if req.Name == "" || req.Description == "" || req.Category == "" ||
		req.SystemPrompt == "" || req.FirstMessage == "" {
		return Template{}, ErrInvalidArgument
	}
	if req.Provider == "" {
		req.Provider = "vapi"
	}
	if req.ModelProvider == "" {
		req.ModelProvider = "openai"
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	now := s.clock().UTC()
	t := Template{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Provider:      req.Provider,
		ModelProvider: req.ModelProvider,
		SystemPrompt:  req.SystemPrompt,
		FirstMessage:  req.FirstMessage,
		IsPublic:      isPublic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return Template{}, err
	}
	return t, nil
}

// List returns the gallery, newest first. Without includePrivate only public
// templates are returned; that is the only shape customers ever see.
func (s *Service) List(ctx context.Context, includePrivate bool) ([]Template, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if includePrivate {
		return all, nil
	}
	out := make([]Template, 0, len(all))
	for _, t := range all {
		if t.IsPublic {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get returns one template; private templates are hidden from non-admins as
// if they did not exist.
func (s *Service) Get(ctx context.Context, id string, includePrivate bool) (Template, error) {
	if id == "" {
		return Template{}, ErrInvalidArgument
	}
	t, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Template{}, err
	}
	if !ok || (!t.IsPublic && !includePrivate) {
		return Template{}, ErrNotFound
	}
	return t, nil
}

type UpdateRequest struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	Provider      *string `json:"provider,omitempty"`
	ModelProvider *string `json:"model_provider,omitempty"`
	SystemPrompt  *string `json:"system_prompt,omitempty"`
	FirstMessage  *string `json:"first_message,omitempty"`
	IsPublic      *bool   `json:"is_public,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Template, error) {
	t, err := s.Get(ctx, id, true)
	if err != nil {
		return Template{}, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return Template{}, ErrInvalidArgument
		}
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Provider != nil {
		t.Provider = *req.Provider
	}
	if req.ModelProvider != nil {
		t.ModelProvider = *req.ModelProvider
	}
	if req.SystemPrompt != nil {
		if *req.SystemPrompt == "" {
			return Template{}, ErrInvalidArgument
		}
		t.SystemPrompt = *req.SystemPrompt
	}
	if req.FirstMessage != nil {
		if *req.FirstMessage == "" {
			return Template{}, ErrInvalidArgument
		}
		t.FirstMessage = *req.FirstMessage
	}
	if req.IsPublic != nil {
		t.IsPublic = *req.IsPublic
	}

	t.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return Template{}, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, id)
}

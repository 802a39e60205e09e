package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/webNext25/zoom-smart-dialer/internal/rbac"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the persistence contract for users.
type Repository interface {
	Insert(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (User, bool, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	List(ctx context.Context) ([]User, error)
}

var (
	ErrInvalidArgument    = errors.New("users: invalid argument")
	ErrNotFound           = errors.New("users: not found")
	ErrEmailTaken         = errors.New("users: email already registered")
	ErrInvalidCredentials = errors.New("users: invalid credentials")
)

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	MaxMinutes int    `json:"max_minutes"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		return User{}, ErrInvalidArgument
	}
	if !rbac.IsKnownRole(req.Role) {
		return User{}, ErrInvalidArgument
	}
	if req.MaxMinutes < 0 {
		return User{}, ErrInvalidArgument
	}

	if _, exists, err := s.repo.GetByEmail(ctx, req.Email); err != nil {
		return User{}, err
	} else if exists {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		AvatarURL:    req.AvatarURL,
		PasswordHash: string(hash),
		MaxMinutes:   req.MaxMinutes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate verifies an email/password pair and returns the user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	u, ok, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	u, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

type UpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
	Password   *string `json:"password,omitempty"`
	MaxMinutes *int    `json:"max_minutes,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return User{}, ErrInvalidArgument
		}
		u.Name = *req.Name
	}
	if req.AvatarURL != nil {
		u.AvatarURL = *req.AvatarURL
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return User{}, ErrInvalidArgument
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		u.PasswordHash = string(hash)
	}
	if req.MaxMinutes != nil {
		if *req.MaxMinutes < 0 {
			return User{}, ErrInvalidArgument
		}
		u.MaxMinutes = *req.MaxMinutes
	}

	u.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, id)
}

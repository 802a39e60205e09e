package users

import (
	"context"
	"errors"
	"testing"
)

func TestCreateAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateRequest{
		Name:       "Dana",
		Email:      "Dana@Example.com",
		Password:   "correct horse",
		Role:       "customer",
		MaxMinutes: 120,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "dana@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash == "correct horse" {
		t.Fatalf("password stored in plaintext")
	}

	got, err := svc.Authenticate(ctx, "dana@example.com", "correct horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected same user")
	}

	if _, err := svc.Authenticate(ctx, "dana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	req := CreateRequest{Name: "A", Email: "a@example.com", Password: "password1", Role: "customer"}
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	cases := []CreateRequest{
		{Email: "a@example.com", Password: "password1", Role: "customer"}, // no name
		{Name: "A", Password: "password1", Role: "customer"},              // no email
		{Name: "A", Email: "a@example.com", Password: "short", Role: "customer"},
		{Name: "A", Email: "a@example.com", Password: "password1", Role: "root"},
		{Name: "A", Email: "a@example.com", Password: "password1", Role: "customer", MaxMinutes: -1},
	}
	for i, req := range cases {
		if _, err := svc.Create(ctx, req); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
}

func TestUpdateQuota(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateRequest{Name: "A", Email: "a@example.com", Password: "password1", Role: "customer", MaxMinutes: 60})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newMax := 240
	got, err := svc.Update(ctx, u.ID, UpdateRequest{MaxMinutes: &newMax})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.MaxMinutes != 240 {
		t.Fatalf("expected 240, got %d", got.MaxMinutes)
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dreamxec/backend/internal/model"
	"github.com/dreamxec/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// Mock user repository
// ---------------------------------------------------------------------------

type mockAuthUserRepo struct {
	findByGoogleIDFunc func(ctx context.Context, googleID string) (*model.User, error)
	createFunc         func(ctx context.Context, u *model.User) error
	created            []*model.User
}

func (m *mockAuthUserRepo) FindByID(context.Context, string) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (m *mockAuthUserRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	if m.findByGoogleIDFunc != nil {
		return m.findByGoogleIDFunc(ctx, googleID)
	}
	return nil, repository.ErrNotFound
}
func (m *mockAuthUserRepo) Create(ctx context.Context, u *model.User) error {
	m.created = append(m.created, u)
	if m.createFunc != nil {
		return m.createFunc(ctx, u)
	}
	return nil
}

// ---------------------------------------------------------------------------
// GetOrCreateUserFromGoogle tests
// ---------------------------------------------------------------------------

func TestAuthService_ExistingUserReturned(t *testing.T) {
	repo := &mockAuthUserRepo{
		findByGoogleIDFunc: func(_ context.Context, googleID string) (*model.User, error) {
			if googleID != "google-123" {
				t.Errorf("expected google-123, got %q", googleID)
			}
			return &model.User{ID: "user-1", GoogleID: googleID, Email: "student@example.com"}, nil
		},
	}
	s := NewAuthService(repo)

	u, err := s.GetOrCreateUserFromGoogle(context.Background(), &GoogleUserInfo{
		Sub: "google-123", Email: "student@example.com", Name: "Student",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "user-1" {
		t.Errorf("expected user-1, got %q", u.ID)
	}
	if len(repo.created) != 0 {
		t.Error("existing user must not be recreated")
	}
}

func TestAuthService_NewUserCreated(t *testing.T) {
	repo := &mockAuthUserRepo{}
	s := NewAuthService(repo)

	u, err := s.GetOrCreateUserFromGoogle(context.Background(), &GoogleUserInfo{
		Sub: "google-456", Email: "new@example.com", Name: "New User",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 created user, got %d", len(repo.created))
	}
	if u.GoogleID != "google-456" || u.Email != "new@example.com" || u.Name != "New User" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestAuthService_CreateFailure(t *testing.T) {
	repo := &mockAuthUserRepo{
		createFunc: func(context.Context, *model.User) error {
			return errors.New("duplicate email")
		},
	}
	s := NewAuthService(repo)

	if _, err := s.GetOrCreateUserFromGoogle(context.Background(), &GoogleUserInfo{Sub: "g", Email: "e"}); err == nil {
		t.Fatal("expected error when user creation fails")
	}
}

package repository

import (
	"context"

	"github.com/dreamxec/backend/internal/model"
)

// UserRepository handles persistence for users.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

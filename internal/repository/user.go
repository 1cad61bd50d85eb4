package repository

import (
	"context"

	"aboard/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetActiveByEmail(ctx context.Context, email string) (*domain.User, error)
	ListActiveByEmail(ctx context.Context, email string) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, filter Filter) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id int64, subscribing bool, passwordHash string) error
	SetMaster(ctx context.Context, id int64, isMaster bool) error
	SoftDelete(ctx context.Context, id int64) error
}

package repository

import (
	"context"

	"aboard/internal/domain"
)

// CategoryRepository persists categories. Deletion is physical.
type CategoryRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, category *domain.Category) (int64, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	ListByNames(ctx context.Context, names []string) ([]domain.Category, error)
	List(ctx context.Context, filter Filter) ([]domain.Category, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

// TagRepository persists tags. Deletion flips is_deleted.
type TagRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, tag *domain.Tag) (int64, error)
	GetByName(ctx context.Context, name string) (*domain.Tag, error)
	List(ctx context.Context, filter Filter) ([]domain.Tag, error)
	Rename(ctx context.Context, id int64, name string) error
	SoftDelete(ctx context.Context, id int64) error
}

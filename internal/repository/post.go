package repository

import (
	"context"

	"aboard/internal/domain"
)

// PostRepository persists posts, their likes set and category references.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64, viewerID int64) (*domain.Post, error)
	List(ctx context.Context, filter Filter, viewerID int64) ([]domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	SoftDelete(ctx context.Context, id int64) error
	AddLike(ctx context.Context, id, userID int64) error
	RemoveLike(ctx context.Context, id, userID int64) error
	ListIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error)
	DetachCategory(ctx context.Context, id, categoryID int64) error
}

// CommentRepository persists comments, replies and their likes set.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	Get(ctx context.Context, id int64, viewerID int64) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID int64, filter Filter, viewerID int64) ([]domain.Comment, error)
	ListReplies(ctx context.Context, parentID int64, filter Filter, viewerID int64) ([]domain.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	SoftDelete(ctx context.Context, id int64) error
	AddLike(ctx context.Context, id, userID int64) error
	RemoveLike(ctx context.Context, id, userID int64) error
}

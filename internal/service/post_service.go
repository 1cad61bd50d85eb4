package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"aboard/internal/domain"
	"aboard/internal/repository"
)

const maxPostTitleLength = 100

type PostInput struct {
	Title      string
	Content    string
	Categories []string
}

type PostQuery struct {
	Title    string
	Category string
	Page     domain.Page
}

// PurgeQueue receives posts whose stored attachments should be removed.
type PurgeQueue interface {
	Enqueue(ctx context.Context, postID int64) error
}

// PostService coordinates post level operations; mutations are reserved to the author.
type PostService interface {
	Create(ctx context.Context, actor domain.User, in PostInput) (*domain.Post, error)
	Get(ctx context.Context, actor domain.User, id int64) (*domain.Post, error)
	List(ctx context.Context, actor domain.User, q PostQuery) ([]domain.Post, error)
	Update(ctx context.Context, actor domain.User, id int64, in PostInput) (*domain.Post, error)
	Delete(ctx context.Context, actor domain.User, id int64) error
	Like(ctx context.Context, actor domain.User, id int64) error
	Unlike(ctx context.Context, actor domain.User, id int64) error
}

type postService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	purge      PurgeQueue
	logger     *logrus.Logger
}

// NewPostService builds the service. purge may be nil when attachments are disabled.
func NewPostService(posts repository.PostRepository, categories repository.CategoryRepository, purge PurgeQueue, logger *logrus.Logger) PostService {
	if logger == nil {
		logger = logrus.New()
	}
	return &postService{
		posts:      posts,
		categories: categories,
		purge:      purge,
		logger:     logger,
	}
}

func (s *postService) Create(ctx context.Context, actor domain.User, in PostInput) (*domain.Post, error) {
	post, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	post.CreatedBy = actor.Ref()

	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, domain.Internal("failed to create post", err)
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, actor domain.User, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id, actor.ID)
	if err != nil {
		return nil, classify(err, "post")
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, actor domain.User, q PostQuery) ([]domain.Post, error) {
	filter := pageFilter(q.Title, q.Page)
	filter.Category = strings.TrimSpace(q.Category)

	posts, err := s.posts.List(ctx, filter, actor.ID)
	if err != nil {
		return nil, domain.Internal("failed to list posts", err)
	}
	return posts, nil
}

func (s *postService) Update(ctx context.Context, actor domain.User, id int64, in PostInput) (*domain.Post, error) {
	current, err := s.posts.Get(ctx, id, actor.ID)
	if err != nil {
		return nil, classify(err, "post")
	}
	if err := requireOwner(actor, current.CreatedBy, "post"); err != nil {
		return nil, err
	}

	next, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	current.Title = next.Title
	current.Content = next.Content
	current.Categories = next.Categories

	if err := s.posts.Update(ctx, current); err != nil {
		return nil, classify(err, "post")
	}
	return s.Get(ctx, actor, id)
}

func (s *postService) Delete(ctx context.Context, actor domain.User, id int64) error {
	post, err := s.posts.Get(ctx, id, actor.ID)
	if err != nil {
		return classify(err, "post")
	}
	if err := requireOwner(actor, post.CreatedBy, "post"); err != nil {
		return err
	}
	if err := s.posts.SoftDelete(ctx, id); err != nil {
		return classify(err, "post")
	}
	if s.purge != nil {
		// the post is already gone; a missed purge only leaves orphaned files
		if err := s.purge.Enqueue(ctx, id); err != nil {
			s.logger.WithError(err).WithField("post_id", id).Warn("Failed to schedule attachment purge")
		}
	}
	return nil
}

func (s *postService) Like(ctx context.Context, actor domain.User, id int64) error {
	return classify(s.posts.AddLike(ctx, id, actor.ID), "post")
}

func (s *postService) Unlike(ctx context.Context, actor domain.User, id int64) error {
	return classify(s.posts.RemoveLike(ctx, id, actor.ID), "post")
}

// validate trims input and resolves category names; unknown categories are a 404.
func (s *postService) validate(ctx context.Context, in PostInput) (*domain.Post, error) {
	title, err := validateText(in.Title, "title", maxPostTitleLength)
	if err != nil {
		return nil, err
	}
	content, err := validateText(in.Content, "content", 0)
	if err != nil {
		return nil, err
	}

	names := uniqueNames(in.Categories)
	found, err := s.categories.ListByNames(ctx, names)
	if err != nil {
		return nil, domain.Internal("failed to load categories", err)
	}
	if len(found) != len(names) {
		known := make(map[string]struct{}, len(found))
		for _, c := range found {
			known[c.Name] = struct{}{}
		}
		for _, name := range names {
			if _, ok := known[name]; !ok {
				return nil, domain.NotFound("category '" + name + "' not found")
			}
		}
	}

	return &domain.Post{Title: title, Content: content, Categories: names}, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

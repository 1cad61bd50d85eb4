package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"aboard/internal/domain"
	"aboard/internal/repository"
)

// CategoryService manages categories. Writes are restricted to master users.
type CategoryService interface {
	List(ctx context.Context, name string, page domain.Page) ([]domain.Category, error)
	Create(ctx context.Context, actor domain.User, name string) (*domain.Category, error)
	Rename(ctx context.Context, actor domain.User, name, newName string) (*domain.Category, error)
	Delete(ctx context.Context, actor domain.User, name string) error
}

// TagService manages tags. Writes are restricted to master users.
type TagService interface {
	List(ctx context.Context, name string, page domain.Page) ([]domain.Tag, error)
	Create(ctx context.Context, actor domain.User, name string) (*domain.Tag, error)
	Rename(ctx context.Context, actor domain.User, name, newName string) (*domain.Tag, error)
	Delete(ctx context.Context, actor domain.User, name string) error
}

type categoryService struct {
	categories repository.CategoryRepository
	posts      repository.PostRepository
	logger     *logrus.Logger
}

func NewCategoryService(categories repository.CategoryRepository, posts repository.PostRepository, logger *logrus.Logger) CategoryService {
	if logger == nil {
		logger = logrus.New()
	}
	return &categoryService{
		categories: categories,
		posts:      posts,
		logger:     logger,
	}
}

func (s *categoryService) List(ctx context.Context, name string, page domain.Page) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx, pageFilter(name, page))
	if err != nil {
		return nil, domain.Internal("failed to list categories", err)
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, actor domain.User, name string) (*domain.Category, error) {
	if err := requireMaster(actor); err != nil {
		return nil, err
	}
	name, err := validateName(name, "category")
	if err != nil {
		return nil, err
	}

	category := &domain.Category{Name: name, CreatedBy: actor.Ref()}
	if _, err := s.categories.Create(ctx, category); err != nil {
		return nil, classify(err, "category")
	}
	return category, nil
}

func (s *categoryService) Rename(ctx context.Context, actor domain.User, name, newName string) (*domain.Category, error) {
	if err := requireMaster(actor); err != nil {
		return nil, err
	}
	newName, err := validateName(newName, "category")
	if err != nil {
		return nil, err
	}
	category, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return nil, classify(err, "category")
	}
	if err := s.categories.Rename(ctx, category.ID, newName); err != nil {
		return nil, classify(err, "category")
	}
	category.Name = newName
	return category, nil
}

// Delete detaches the category from every post, one post at a time, then removes it.
// A failure midway leaves earlier posts detached and the category in place.
func (s *categoryService) Delete(ctx context.Context, actor domain.User, name string) error {
	if err := requireMaster(actor); err != nil {
		return err
	}
	category, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return classify(err, "category")
	}

	ids, err := s.posts.ListIDsByCategory(ctx, category.ID)
	if err != nil {
		return domain.Internal("failed to load posts of category", err)
	}
	for _, id := range ids {
		if err := s.posts.DetachCategory(ctx, id, category.ID); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"category": category.Name,
				"post_id":  id,
			}).Error("Failed to detach category")
			return domain.Internal("failed to detach category from posts", err)
		}
	}

	if err := s.categories.Delete(ctx, category.ID); err != nil {
		return classify(err, "category")
	}
	s.logger.WithFields(logrus.Fields{
		"category": category.Name,
		"posts":    len(ids),
	}).Info("Category deleted")
	return nil
}

type tagService struct {
	tags repository.TagRepository
}

func NewTagService(tags repository.TagRepository) TagService {
	return &tagService{tags: tags}
}

func (s *tagService) List(ctx context.Context, name string, page domain.Page) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx, pageFilter(name, page))
	if err != nil {
		return nil, domain.Internal("failed to list tags", err)
	}
	return tags, nil
}

func (s *tagService) Create(ctx context.Context, actor domain.User, name string) (*domain.Tag, error) {
	if err := requireMaster(actor); err != nil {
		return nil, err
	}
	name, err := validateName(name, "tag")
	if err != nil {
		return nil, err
	}

	tag := &domain.Tag{Name: name, CreatedBy: actor.Ref()}
	if _, err := s.tags.Create(ctx, tag); err != nil {
		return nil, classify(err, "tag")
	}
	return tag, nil
}

func (s *tagService) Rename(ctx context.Context, actor domain.User, name, newName string) (*domain.Tag, error) {
	if err := requireMaster(actor); err != nil {
		return nil, err
	}
	newName, err := validateName(newName, "tag")
	if err != nil {
		return nil, err
	}
	tag, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return nil, classify(err, "tag")
	}
	if err := s.tags.Rename(ctx, tag.ID, newName); err != nil {
		return nil, classify(err, "tag")
	}
	tag.Name = newName
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, actor domain.User, name string) error {
	if err := requireMaster(actor); err != nil {
		return err
	}
	tag, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return classify(err, "tag")
	}
	return classify(s.tags.SoftDelete(ctx, tag.ID), "tag")
}

package service

import (
	"context"

	"aboard/internal/domain"
	"aboard/internal/repository"
)

const maxCommentLength = 300

// CommentService manages comments and replies. Only the author may edit or delete.
type CommentService interface {
	List(ctx context.Context, actor domain.User, postID int64, page domain.Page) ([]domain.Comment, error)
	Create(ctx context.Context, actor domain.User, postID int64, content string) (*domain.Comment, error)
	Get(ctx context.Context, actor domain.User, id int64) (*domain.Comment, error)
	Update(ctx context.Context, actor domain.User, id int64, content string) (*domain.Comment, error)
	Delete(ctx context.Context, actor domain.User, id int64) error
	Like(ctx context.Context, actor domain.User, id int64) error
	Unlike(ctx context.Context, actor domain.User, id int64) error
	Reply(ctx context.Context, actor domain.User, parentID int64, content string) (*domain.Comment, error)
	ListReplies(ctx context.Context, actor domain.User, parentID int64, page domain.Page) ([]domain.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) CommentService {
	return &commentService{
		comments: comments,
		posts:    posts,
	}
}

func (s *commentService) List(ctx context.Context, actor domain.User, postID int64, page domain.Page) ([]domain.Comment, error) {
	if _, err := s.posts.Get(ctx, postID, actor.ID); err != nil {
		return nil, classify(err, "post")
	}
	comments, err := s.comments.ListByPost(ctx, postID, pageFilter("", page), actor.ID)
	if err != nil {
		return nil, domain.Internal("failed to list comments", err)
	}
	return comments, nil
}

func (s *commentService) Create(ctx context.Context, actor domain.User, postID int64, content string) (*domain.Comment, error) {
	content, err := validateText(content, "content", maxCommentLength)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.Get(ctx, postID, actor.ID); err != nil {
		return nil, classify(err, "post")
	}

	comment := &domain.Comment{PostID: postID, Content: content, CreatedBy: actor.Ref()}
	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, domain.Internal("failed to add comment", err)
	}
	return comment, nil
}

func (s *commentService) Get(ctx context.Context, actor domain.User, id int64) (*domain.Comment, error) {
	comment, err := s.comments.Get(ctx, id, actor.ID)
	if err != nil {
		return nil, classify(err, "comment")
	}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actor domain.User, id int64, content string) (*domain.Comment, error) {
	content, err := validateText(content, "content", maxCommentLength)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.Get(ctx, id, actor.ID)
	if err != nil {
		return nil, classify(err, "comment")
	}
	if err := requireOwner(actor, comment.CreatedBy, "comment"); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateContent(ctx, id, content); err != nil {
		return nil, classify(err, "comment")
	}
	return s.Get(ctx, actor, id)
}

func (s *commentService) Delete(ctx context.Context, actor domain.User, id int64) error {
	comment, err := s.comments.Get(ctx, id, actor.ID)
	if err != nil {
		return classify(err, "comment")
	}
	if err := requireOwner(actor, comment.CreatedBy, "comment"); err != nil {
		return err
	}
	return classify(s.comments.SoftDelete(ctx, id), "comment")
}

func (s *commentService) Like(ctx context.Context, actor domain.User, id int64) error {
	return classify(s.comments.AddLike(ctx, id, actor.ID), "comment")
}

func (s *commentService) Unlike(ctx context.Context, actor domain.User, id int64) error {
	return classify(s.comments.RemoveLike(ctx, id, actor.ID), "comment")
}

// Reply attaches to an active parent comment whose post is still active.
func (s *commentService) Reply(ctx context.Context, actor domain.User, parentID int64, content string) (*domain.Comment, error) {
	content, err := validateText(content, "content", maxCommentLength)
	if err != nil {
		return nil, err
	}
	parent, err := s.comments.Get(ctx, parentID, actor.ID)
	if err != nil {
		return nil, classify(err, "parent comment")
	}
	if _, err := s.posts.Get(ctx, parent.PostID, actor.ID); err != nil {
		return nil, classify(err, "post")
	}

	reply := &domain.Comment{PostID: parent.PostID, ParentID: &parent.ID, Content: content, CreatedBy: actor.Ref()}
	if _, err := s.comments.Create(ctx, reply); err != nil {
		return nil, domain.Internal("failed to add reply", err)
	}
	return reply, nil
}

func (s *commentService) ListReplies(ctx context.Context, actor domain.User, parentID int64, page domain.Page) ([]domain.Comment, error) {
	if _, err := s.comments.Get(ctx, parentID, actor.ID); err != nil {
		return nil, classify(err, "parent comment")
	}
	replies, err := s.comments.ListReplies(ctx, parentID, pageFilter("", page), actor.ID)
	if err != nil {
		return nil, domain.Internal("failed to list replies", err)
	}
	return replies, nil
}

package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"aboard/internal/domain"
	"aboard/internal/repository"
	"aboard/internal/storage"
)

const originalNameMeta = "original-name"

type AttachmentConfig struct {
	Bucket    string
	KeyPrefix string
	URLTTL    time.Duration
	MaxSize   int64
}

type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachmentService stores files for a post. Only the post author may upload or remove them.
type AttachmentService interface {
	Upload(ctx context.Context, actor domain.User, postID int64, in UploadInput) (*domain.Attachment, error)
	List(ctx context.Context, actor domain.User, postID int64) ([]domain.Attachment, error)
	DeleteAll(ctx context.Context, actor domain.User, postID int64) (int, error)
}

type attachmentService struct {
	cfg     AttachmentConfig
	posts   repository.PostRepository
	storage storage.Service
	logger  *logrus.Logger
}

func NewAttachmentService(cfg AttachmentConfig, posts repository.PostRepository, storage storage.Service, logger *logrus.Logger) AttachmentService {
	if cfg.URLTTL <= 0 {
		cfg.URLTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &attachmentService{
		cfg:     cfg,
		posts:   posts,
		storage: storage,
		logger:  logger,
	}
}

func (s *attachmentService) Upload(ctx context.Context, actor domain.User, postID int64, in UploadInput) (*domain.Attachment, error) {
	if err := s.ownPost(ctx, actor, postID); err != nil {
		return nil, err
	}
	name := cleanFileName(in.Name)
	if name == "" {
		return nil, domain.ValidationFailed("file name is required")
	}
	if in.Size <= 0 {
		return nil, domain.ValidationFailed("file is empty")
	}
	if s.cfg.MaxSize > 0 && in.Size > s.cfg.MaxSize {
		return nil, domain.ValidationFailed(fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxSize))
	}

	key := storage.PostPrefix(s.cfg.KeyPrefix, postID) + uuid.NewString() + "-" + name
	key, err := s.storage.Put(ctx, in.Body, storage.PutOptions{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: in.ContentType,
		Metadata:    map[string]string{originalNameMeta: name},
	})
	if err != nil {
		return nil, domain.Internal("failed to store attachment", err)
	}

	url, err := s.storage.GetObjectURL(ctx, s.cfg.Bucket, key, s.cfg.URLTTL)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to sign attachment url")
	}
	return &domain.Attachment{Key: key, Name: name, Size: in.Size, URL: url}, nil
}

func (s *attachmentService) List(ctx context.Context, actor domain.User, postID int64) ([]domain.Attachment, error) {
	if _, err := s.posts.Get(ctx, postID, actor.ID); err != nil {
		return nil, classify(err, "post")
	}

	prefix := storage.PostPrefix(s.cfg.KeyPrefix, postID)
	objects, err := s.storage.ListObjects(ctx, s.cfg.Bucket, prefix)
	if err != nil {
		return nil, domain.Internal("failed to list attachments", err)
	}

	attachments := make([]domain.Attachment, 0, len(objects))
	for _, obj := range objects {
		url, err := s.storage.GetObjectURL(ctx, s.cfg.Bucket, obj.Key, s.cfg.URLTTL)
		if err != nil {
			return nil, domain.Internal("failed to sign attachment url", err)
		}
		attachments = append(attachments, domain.Attachment{
			Key:          obj.Key,
			Name:         displayName(strings.TrimPrefix(obj.Key, prefix)),
			Size:         obj.Size,
			URL:          url,
			LastModified: obj.LastModified,
		})
	}
	return attachments, nil
}

func (s *attachmentService) DeleteAll(ctx context.Context, actor domain.User, postID int64) (int, error) {
	if err := s.ownPost(ctx, actor, postID); err != nil {
		return 0, err
	}
	removed, err := s.storage.DeletePrefix(ctx, s.cfg.Bucket, storage.PostPrefix(s.cfg.KeyPrefix, postID))
	if err != nil {
		return removed, domain.Internal("failed to delete attachments", err)
	}
	return removed, nil
}

func (s *attachmentService) ownPost(ctx context.Context, actor domain.User, postID int64) error {
	post, err := s.posts.Get(ctx, postID, actor.ID)
	if err != nil {
		return classify(err, "post")
	}
	return requireOwner(actor, post.CreatedBy, "post")
}

func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// displayName strips the uuid that keeps object keys unique.
func displayName(rel string) string {
	if len(rel) > 37 && rel[36] == '-' {
		if _, err := uuid.Parse(rel[:36]); err == nil {
			return rel[37:]
		}
	}
	return rel
}

package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// PutOptions conveys upload destination metadata.
type PutOptions struct {
	Bucket      string
	Key         string
	ContentType string
	Metadata    map[string]string
}

// Service stores post attachments in remote object storage.
type Service interface {
	Put(ctx context.Context, body io.Reader, opts PutOptions) (string, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	DeletePrefix(ctx context.Context, bucket, prefix string) (int, error)
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}

// PostPrefix is the key prefix under which a post's attachments live.
func PostPrefix(keyPrefix string, postID int64) string {
	keyPrefix = strings.Trim(keyPrefix, "/")
	if keyPrefix == "" {
		return fmt.Sprintf("posts/%d/", postID)
	}
	return fmt.Sprintf("%s/posts/%d/", keyPrefix, postID)
}

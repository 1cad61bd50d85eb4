package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"aboard/internal/domain"
	"aboard/internal/storage"
)

type memoryStorage struct {
	objects map[string][]byte
}

func (m *memoryStorage) Put(_ context.Context, body io.Reader, opts storage.PutOptions) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[opts.Key] = data
	return opts.Key, nil
}

func (m *memoryStorage) ListObjects(_ context.Context, _ string, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (m *memoryStorage) DeletePrefix(_ context.Context, _ string, prefix string) (int, error) {
	n := 0
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
			n++
		}
	}
	return n, nil
}

func (m *memoryStorage) GetObjectURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://" + bucket + ".example.com/" + key + "?signed", nil
}

func TestAttachments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.signup(t, "author@example.com")
	other := env.signup(t, "other@example.com")

	post, err := env.posts.Create(ctx, author, PostInput{Title: "hello", Content: "world"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	store := &memoryStorage{objects: map[string][]byte{}}
	attachments := NewAttachmentService(AttachmentConfig{Bucket: "media", KeyPrefix: "aboard", MaxSize: 16}, env.postRepo, store, logrus.New())

	upload := func(actor domain.User, name, body string) (*domain.Attachment, error) {
		return attachments.Upload(ctx, actor, post.ID, UploadInput{
			Name: name, ContentType: "text/plain", Size: int64(len(body)), Body: bytes.NewBufferString(body),
		})
	}

	_, err = upload(other, "notes.txt", "hi")
	requireKind(t, err, domain.KindForbidden)
	_, err = upload(author, "big.txt", strings.Repeat("x", 17))
	requireKind(t, err, domain.KindValidationFailed)
	_, err = upload(author, "", "hi")
	requireKind(t, err, domain.KindValidationFailed)

	stored, err := upload(author, "../../notes.txt", "hello")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if stored.Name != "notes.txt" || !strings.HasPrefix(stored.Key, storage.PostPrefix("aboard", post.ID)) {
		t.Fatalf("unexpected attachment: %+v", stored)
	}
	if stored.URL == "" {
		t.Fatalf("expected a signed url")
	}

	listed, err := attachments.List(ctx, other, post.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "notes.txt" || listed[0].Size != 5 {
		t.Fatalf("unexpected listing: %+v", listed)
	}

	_, err = attachments.DeleteAll(ctx, other, post.ID)
	requireKind(t, err, domain.KindForbidden)
	removed, err := attachments.DeleteAll(ctx, author, post.ID)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if removed != 1 || len(store.objects) != 0 {
		t.Fatalf("expected attachments removed, got %d left", len(store.objects))
	}

	_, err = attachments.List(ctx, author, 9999)
	requireKind(t, err, domain.KindNotFound)
}

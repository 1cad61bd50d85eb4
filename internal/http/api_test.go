package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"aboard/internal/auth"
	"aboard/internal/repository/sqlite"
	"aboard/internal/service"
)

type testServer struct {
	router  *gin.Engine
	handler *Handler
	codec   *auth.TokenCodec
	users   service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	categoryRepo := sqlite.NewCategoryRepository(db)
	tagRepo := sqlite.NewTagRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)
	if err := sqlite.Migrate(context.Background(), userRepo, categoryRepo, tagRepo, postRepo, commentRepo); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	codec, err := auth.NewTokenCodec("api-test-secret", "HS256")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	users := service.NewUserService(userRepo, auth.NewPasswords(bcrypt.MinCost), codec)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewHandler(Services{
		Users:      users,
		Posts:      service.NewPostService(postRepo, categoryRepo, nil, logger),
		Comments:   service.NewCommentService(commentRepo, postRepo),
		Categories: service.NewCategoryService(categoryRepo, postRepo, logger),
		Tags:       service.NewTagService(tagRepo),
	}, auth.NewResolver(codec, userRepo), logger)

	router := gin.New()
	handler.RegisterRoutes(router)
	return &testServer{router: router, handler: handler, codec: codec, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.HeaderName, token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// login registers the account and returns its token.
func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/user/signup", "", map[string]any{
		"email": email, "password": "password123", "name": "tester",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %s", email, rec.Code, rec.Body.String())
	}
	return s.token(t, email, "password123")
}

func (s *testServer) token(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/user/login", "", map[string]any{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	return resp.Token
}

func (s *testServer) masterToken(t *testing.T) string {
	t.Helper()
	if err := s.users.EnsureMaster(context.Background(), "admin@example.com", "admin", "adminpass1"); err != nil {
		t.Fatalf("ensure master: %v", err)
	}
	return s.token(t, "admin@example.com", "adminpass1")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	var resp errorResponse
	decode(t, rec, &resp)
	if resp.StatusCode != status || resp.Message == "" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestAuthenticationFailures(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "known@example.com")

	ghost, err := s.codec.Encode(auth.Claim{Email: "ghost@example.com"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "garbage token", token: "not-a-token"},
		{name: "unknown user", token: ghost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, s.do(t, http.MethodGet, "/user/info", tc.token, nil), http.StatusUnauthorized)
		})
	}
}

func TestUserFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice@example.com")

	rec := s.do(t, http.MethodGet, "/user/info", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("info: %d %s", rec.Code, rec.Body.String())
	}
	var info UserResponse
	decode(t, rec, &info)
	if info.Email != "alice@example.com" || info.IsMaster {
		t.Fatalf("unexpected info: %+v", info)
	}

	expectError(t, s.do(t, http.MethodPost, "/user/login", "", map[string]any{
		"email": "alice@example.com", "password": "wrong-password",
	}), http.StatusUnauthorized)
	expectError(t, s.do(t, http.MethodPost, "/user/signup", "", map[string]any{
		"email": "alice@example.com", "password": "password123", "name": "again",
	}), http.StatusConflict)
	expectError(t, s.do(t, http.MethodGet, "/user/list", token, nil), http.StatusForbidden)

	rec = s.do(t, http.MethodDelete, "/user/withdraw", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("withdraw: %d %s", rec.Code, rec.Body.String())
	}
	expectError(t, s.do(t, http.MethodGet, "/user/info", token, nil), http.StatusUnauthorized)
}

func TestPrivilegeReadFromStore(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "bob@example.com")

	forged, err := s.codec.Encode(auth.Claim{Email: "bob@example.com", IsMaster: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	expectError(t, s.do(t, http.MethodPost, "/tag/add", forged, map[string]any{"name": "golang"}), http.StatusForbidden)
}

func TestPrivilegedRoutesRejectRegularUsers(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user@example.com")

	// payload validity does not matter
	for _, body := range []any{map[string]any{"name": "golang"}, map[string]any{"name": "x"}, nil} {
		expectError(t, s.do(t, http.MethodPost, "/tag/add", token, body), http.StatusForbidden)
	}
	expectError(t, s.do(t, http.MethodDelete, "/category/delete", token, map[string]any{"name": "news"}), http.StatusForbidden)
}

func TestCategoryRoutes(t *testing.T) {
	s := newTestServer(t)
	master := s.masterToken(t)
	user := s.login(t, "user@example.com")

	rec := s.do(t, http.MethodPost, "/category/add", master, map[string]any{"name": "ab"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", rec.Code, rec.Body.String())
	}
	expectError(t, s.do(t, http.MethodPost, "/category/add", master, map[string]any{"name": "a"}), http.StatusUnprocessableEntity)
	expectError(t, s.do(t, http.MethodPost, "/category/add", master, map[string]any{"name": "ab"}), http.StatusConflict)

	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/post", user, map[string]any{"title": "post", "content": "body", "categories": []string{"ab"}})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create post: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec = s.do(t, http.MethodDelete, "/category/delete", master, map[string]any{"name": "ab"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/post", user, nil)
	var posts []PostResponse
	decode(t, rec, &posts)
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	for _, p := range posts {
		if len(p.Categories) != 0 {
			t.Fatalf("post %d still references deleted category: %v", p.ID, p.Categories)
		}
	}

	rec = s.do(t, http.MethodGet, "/category/list", user, nil)
	var categories []CategoryResponse
	decode(t, rec, &categories)
	if len(categories) != 0 {
		t.Fatalf("expected no categories, got %+v", categories)
	}
}

func TestPostLikeAndDelete(t *testing.T) {
	s := newTestServer(t)
	author := s.login(t, "author@example.com")
	other := s.login(t, "other@example.com")

	rec := s.do(t, http.MethodPost, "/post", author, map[string]any{"title": "hello", "content": "world"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var createdResp messageResponse
	decode(t, rec, &createdResp)
	path := "/post/" + itoa(createdResp.ID)

	rec = s.do(t, http.MethodPut, path+"/like", other, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("like: %d %s", rec.Code, rec.Body.String())
	}
	expectError(t, s.do(t, http.MethodPut, path+"/like", other, nil), http.StatusConflict)

	rec = s.do(t, http.MethodGet, path, other, nil)
	var post PostResponse
	decode(t, rec, &post)
	if post.LikesCnt != 1 || !post.Liked {
		t.Fatalf("unexpected like state: %+v", post)
	}

	expectError(t, s.do(t, http.MethodDelete, path, other, nil), http.StatusForbidden)
	rec = s.do(t, http.MethodDelete, path, author, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	expectError(t, s.do(t, http.MethodGet, path, author, nil), http.StatusNotFound)
	expectError(t, s.do(t, http.MethodGet, "/post/abc", author, nil), http.StatusUnprocessableEntity)
}

func TestPageBeyondAddressableRangeIsRejected(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "author@example.com")
	rec := s.do(t, http.MethodPost, "/post", token, map[string]any{"title": "hello", "content": "world"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	expectError(t, s.do(t, http.MethodGet, "/post?page_size=100&page_no=9223372036854775807", token, nil), http.StatusUnprocessableEntity)

	rec = s.do(t, http.MethodGet, "/post?page_size=10&page_no=2", token, nil)
	var posts []PostResponse
	decode(t, rec, &posts)
	if len(posts) != 0 {
		t.Fatalf("expected an empty second page, got %d posts", len(posts))
	}
}

func TestCommentRoutes(t *testing.T) {
	s := newTestServer(t)
	author := s.login(t, "author@example.com")

	rec := s.do(t, http.MethodPost, "/post", author, map[string]any{"title": "hello", "content": "world"})
	var postResp messageResponse
	decode(t, rec, &postResp)

	rec = s.do(t, http.MethodPost, "/post/"+itoa(postResp.ID)+"/comment", author, map[string]any{"content": "first"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment: %d %s", rec.Code, rec.Body.String())
	}
	var commentResp messageResponse
	decode(t, rec, &commentResp)

	rec = s.do(t, http.MethodPost, "/comment/"+itoa(commentResp.ID)+"/reply", author, map[string]any{"content": "reply"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("reply: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/comment/"+itoa(commentResp.ID)+"/reply", author, nil)
	var replies []CommentResponse
	decode(t, rec, &replies)
	if len(replies) != 1 || replies[0].ParentID == nil || *replies[0].ParentID != commentResp.ID {
		t.Fatalf("unexpected replies: %+v", replies)
	}

	expectError(t, s.do(t, http.MethodGet, "/post/"+itoa(postResp.ID)+"/comment?page_size=7", author, nil), http.StatusUnprocessableEntity)
	expectError(t, s.do(t, http.MethodPost, "/post/9999/comment", author, map[string]any{"content": "x"}), http.StatusNotFound)
}

func TestUnclassifiedErrorsBecomeInternal(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user@example.com")

	s.router.GET("/boom", s.handler.handle(func(c *gin.Context) error {
		return errors.New("disk on fire")
	}, s.handler.authenticated))

	rec := s.do(t, http.MethodGet, "/boom", token, nil)
	expectError(t, rec, http.StatusInternalServerError)
	var resp errorResponse
	decode(t, rec, &resp)
	if resp.Message != "internal server error" {
		t.Fatalf("internal detail leaked: %q", resp.Message)
	}
}

func TestAttachmentRoutesDisabledWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "user@example.com")
	expectError(t, s.do(t, http.MethodGet, "/post/1/attachment", token, nil), http.StatusNotFound)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

package auth

import (
	"context"
	"errors"
	"testing"

	"aboard/internal/domain"
)

type stubLookup struct {
	users []domain.User
	err   error
	calls int
}

func (s *stubLookup) ListActiveByEmail(_ context.Context, email string) ([]domain.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.User
	for _, u := range s.users {
		if u.Email == email && !u.IsDeleted {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestResolverErrors(t *testing.T) {
	codec := newTestCodec(t)
	valid, err := codec.Encode(Claim{Email: "tester@example.com"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tests := []struct {
		name   string
		token  string
		lookup *stubLookup
		kind   domain.ErrorKind
		status int
	}{
		{name: "missing", token: "", lookup: &stubLookup{}, kind: domain.KindUnauthenticated, status: 401},
		{name: "invalid", token: valid + "x", lookup: &stubLookup{}, kind: domain.KindInvalidToken, status: 401},
		{name: "unknown user", token: valid, lookup: &stubLookup{}, kind: domain.KindUserNotFound, status: 401},
		{
			name:   "deleted user",
			token:  valid,
			lookup: &stubLookup{users: []domain.User{{ID: 1, Email: "tester@example.com", IsDeleted: true}}},
			kind:   domain.KindUserNotFound,
			status: 401,
		},
		{
			name:  "duplicate users",
			token: valid,
			lookup: &stubLookup{users: []domain.User{
				{ID: 1, Email: "tester@example.com"},
				{ID: 2, Email: "tester@example.com"},
			}},
			kind:   domain.KindInternal,
			status: 500,
		},
		{name: "lookup failure", token: valid, lookup: &stubLookup{err: errors.New("boom")}, kind: domain.KindInternal, status: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver(codec, tt.lookup).Resolve(context.Background(), tt.token)
			apiErr := domain.AsError(err)
			if apiErr == nil || apiErr.Kind != tt.kind || apiErr.Status != tt.status {
				t.Fatalf("expected %s/%d, got %v", tt.kind, tt.status, err)
			}
		})
	}
}

func TestResolverReadsPrivilegeFromStore(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Encode(Claim{Email: "admin@example.com", IsMaster: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	lookup := &stubLookup{users: []domain.User{{ID: 7, Email: "admin@example.com", IsMaster: false}}}

	session, err := NewResolver(codec, lookup).Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if session.IsMaster || session.User.ID != 7 {
		t.Fatalf("expected demoted session for user 7, got %+v", session)
	}
}

package auth

import (
	"context"
	"strings"

	"aboard/internal/domain"
)

// HeaderName carries the auth token on authenticated routes.
const HeaderName = "X-Auth-Token"

// Session is the request-scoped identity resolved from a token and a live user record.
type Session struct {
	User     domain.User
	IsMaster bool
}

// UserLookup finds active users by email. More than one result is an integrity violation.
type UserLookup interface {
	ListActiveByEmail(ctx context.Context, email string) ([]domain.User, error)
}

// Resolver turns a raw token into a Session.
type Resolver struct {
	codec *TokenCodec
	users UserLookup
}

func NewResolver(codec *TokenCodec, users UserLookup) *Resolver {
	return &Resolver{codec: codec, users: users}
}

// Resolve reads privilege from the stored user, not from the claim, so demotions apply immediately.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.Unauthenticated("user login required")
	}

	claim, err := r.codec.Decode(token)
	if err != nil {
		return nil, domain.InvalidToken("not a valid authorization token")
	}

	users, err := r.users.ListActiveByEmail(ctx, claim.Email)
	if err != nil {
		return nil, domain.Internal("user lookup failed", err)
	}
	switch len(users) {
	case 0:
		return nil, domain.UserNotFound("user not found")
	case 1:
	default:
		return nil, domain.Internal("duplicate users found", nil)
	}

	user := users[0]
	return &Session{User: user, IsMaster: user.IsMaster}, nil
}

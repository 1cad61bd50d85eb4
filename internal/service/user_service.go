package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"aboard/internal/auth"
	"aboard/internal/domain"
	"aboard/internal/repository"
)

const (
	minPasswordLength = 8
	maxUserNameLength = 50
)

// PasswordHasher is the credential store used by UserService.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs identity claims.
type TokenIssuer interface {
	Encode(claim auth.Claim) (string, error)
}

type SignupInput struct {
	Email       string
	Name        string
	Password    string
	Subscribing bool
}

type UpdateUserInput struct {
	Subscribing    *bool
	ChangePassword bool
	Password       string
	NewPassword    string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Info(ctx context.Context, actor domain.User) (*domain.User, error)
	Update(ctx context.Context, actor domain.User, in UpdateUserInput) error
	Withdraw(ctx context.Context, actor domain.User) error
	List(ctx context.Context, actor domain.User, email string, page domain.Page) ([]domain.User, error)
	EnsureMaster(ctx context.Context, email, name, password string) error
}

type userService struct {
	users     repository.UserRepository
	passwords PasswordHasher
	tokens    TokenIssuer
}

func NewUserService(users repository.UserRepository, passwords PasswordHasher, tokens TokenIssuer) UserService {
	return &userService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
	}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name, err := validateText(in.Name, "name", maxUserNameLength)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("failed to check user", err)
	}
	if exists {
		return nil, domain.Conflict("user already exists or was registered before")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, domain.Internal("failed to store user", err)
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Subscribing:  in.Subscribing,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.Conflict("user already exists or was registered before")
		}
		return nil, domain.Internal("failed to store user", err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", domain.Unauthenticated("invalid credentials")
	}

	user, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.Unauthenticated("invalid credentials")
		}
		return "", domain.Internal("failed to load user", err)
	}
	if !s.passwords.Verify(password, user.PasswordHash) {
		return "", domain.Unauthenticated("invalid credentials")
	}

	token, err := s.tokens.Encode(auth.Claim{Email: user.Email, IsMaster: user.IsMaster})
	if err != nil {
		return "", domain.Internal("failed to issue token", err)
	}
	return token, nil
}

func (s *userService) Info(ctx context.Context, actor domain.User) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, classify(err, "user")
	}
	return sanitizeUser(user), nil
}

func (s *userService) Update(ctx context.Context, actor domain.User, in UpdateUserInput) error {
	if in.Subscribing == nil && !in.ChangePassword {
		return domain.ValidationFailed("nothing to update")
	}

	// self-service only: the target is always the session user, reloaded here
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return classify(err, "user")
	}

	subscribing := user.Subscribing
	if in.Subscribing != nil {
		subscribing = *in.Subscribing
	}

	var hash string
	if in.ChangePassword {
		if !s.passwords.Verify(in.Password, user.PasswordHash) {
			return domain.Unauthenticated("current password does not match")
		}
		if err := validatePassword(in.NewPassword); err != nil {
			return err
		}
		hash, err = s.passwords.Hash(in.NewPassword)
		if err != nil {
			return domain.Internal("failed to update user", err)
		}
	}

	return classify(s.users.UpdateProfile(ctx, user.ID, subscribing, hash), "user")
}

func (s *userService) Withdraw(ctx context.Context, actor domain.User) error {
	return classify(s.users.SoftDelete(ctx, actor.ID), "user")
}

func (s *userService) List(ctx context.Context, actor domain.User, email string, page domain.Page) ([]domain.User, error) {
	if err := requireMaster(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, pageFilter(strings.ToLower(email), page))
	if err != nil {
		return nil, domain.Internal("failed to list users", err)
	}
	out := make([]domain.User, len(users))
	for i := range users {
		out[i] = *sanitizeUser(&users[i])
	}
	return out, nil
}

// EnsureMaster registers the bootstrap administrator or promotes the existing account.
func (s *userService) EnsureMaster(ctx context.Context, email, name, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	existing, err := s.users.GetActiveByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsMaster {
			return nil
		}
		return classify(s.users.SetMaster(ctx, existing.ID, true), "user")
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Internal("failed to load user", err)
	}

	if strings.TrimSpace(name) == "" {
		name = "admin"
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return domain.Internal("failed to store user", err)
	}
	user := &domain.User{Email: email, Name: name, PasswordHash: hash, IsMaster: true}
	if _, err := s.users.Create(ctx, user); err != nil {
		return classify(err, "user")
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ValidationFailed("a valid email address is required")
	}
	return email, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return domain.ValidationFailed("password must be at least 8 characters")
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}

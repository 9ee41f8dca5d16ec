// Package service provides the credential store and resource business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/AdminBoard/internal/common"
	"github.com/atinyakov/AdminBoard/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when a user does not exist so that a
// missing account costs as much as a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository defines the persistence operations
// required by the credential store.
type UserRepository interface {
	// FindByUsername returns the user or common.ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindTokenByUsername returns the user's bearer token or common.ErrNotFound.
	FindTokenByUsername(ctx context.Context, username string) (string, error)
	// FindUserInfoByToken returns the profile owning token or common.ErrNotFound.
	FindUserInfoByToken(ctx context.Context, token string) (*models.UserInfo, error)
	// CreateUser persists a user with an already hashed password.
	CreateUser(ctx context.Context, u models.User, info models.UserInfo) (int64, error)
}

// Service is the credential store: user lookups, password hashing and
// verification, token issuance.
type Service struct {
	// repo performs the data-layer operations.
	repo UserRepository
	// cost is the bcrypt work factor.
	cost int
	// newToken issues bearer tokens for new users.
	newToken func() string
}

// NewAuthService constructs a new Service using the provided repository.
func NewAuthService(repo UserRepository) *Service {
	return &Service{
		repo:     repo,
		cost:     bcrypt.DefaultCost,
		newToken: uuid.NewString,
	}
}

// FindByUsername returns the named user or common.ErrNotFound.
func (s *Service) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// FindTokenByUsername returns the named user's token or common.ErrNotFound.
func (s *Service) FindTokenByUsername(ctx context.Context, username string) (string, error) {
	return s.repo.FindTokenByUsername(ctx, username)
}

// UserInfo returns the profile for a bearer token or common.ErrNotFound.
func (s *Service) UserInfo(ctx context.Context, token string) (*models.UserInfo, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: token is required", common.ErrValidation)
	}
	return s.repo.FindUserInfoByToken(ctx, token)
}

// CreateUser hashes password, issues a fresh token and stores the user.
// A taken username yields common.ErrConflict.
func (s *Service) CreateUser(ctx context.Context, username, password string, privilege int, info models.UserInfo) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return 0, err
	}

	return s.repo.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
		Token:        s.newToken(),
		Privilege:    privilege,
	}, info)
}

// HashPassword returns the salted bcrypt hash of password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %w", common.ErrValidation, err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func (s *Service) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Credentials is what a client submits to log in.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticator exchanges credentials for a bearer token.
// Bad credentials yield common.ErrAuth.
type Authenticator interface {
	Authenticate(ctx context.Context, c Credentials) (string, error)
}

// Authentication modes accepted by NewAuthenticator.
const (
	ModeToken    = "token"
	ModePassword = "password"
)

// NewAuthenticator returns the login strategy named by mode.
func NewAuthenticator(mode string, users *Service) (Authenticator, error) {
	switch mode {
	case ModeToken:
		return &TokenAuthenticator{Users: users}, nil
	case ModePassword, "":
		return &PasswordAuthenticator{Users: users}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}

// TokenAuthenticator hands out the stored token for any known username.
// No password is checked.
type TokenAuthenticator struct {
	Users *Service
}

// Authenticate implements Authenticator.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, c Credentials) (string, error) {
	if strings.TrimSpace(c.Username) == "" {
		return "", fmt.Errorf("%w: username is required", common.ErrAuth)
	}
	token, err := a.Users.FindTokenByUsername(ctx, c.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", fmt.Errorf("%w: unknown user", common.ErrAuth)
		}
		return "", err
	}
	return token, nil
}

// PasswordAuthenticator checks the password against the stored bcrypt hash.
type PasswordAuthenticator struct {
	Users *Service
}

// Authenticate implements Authenticator.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, c Credentials) (string, error) {
	if strings.TrimSpace(c.Username) == "" || c.Password == "" {
		return "", fmt.Errorf("%w: username and password are required", common.ErrAuth)
	}
	user, err := a.Users.FindByUsername(ctx, c.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			a.Users.VerifyPassword(c.Password, dummyHash)
			return "", fmt.Errorf("%w: unknown user", common.ErrAuth)
		}
		return "", err
	}
	if !a.Users.VerifyPassword(c.Password, user.PasswordHash) {
		return "", fmt.Errorf("%w: wrong password", common.ErrAuth)
	}
	return user.Token, nil
}

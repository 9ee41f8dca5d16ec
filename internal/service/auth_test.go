package service

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/AdminBoard/internal/common"
	"github.com/atinyakov/AdminBoard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	FindByUsernameFunc      func(ctx context.Context, username string) (*models.User, error)
	FindTokenByUsernameFunc func(ctx context.Context, username string) (string, error)
	FindUserInfoByTokenFunc func(ctx context.Context, token string) (*models.UserInfo, error)
	CreateUserFunc          func(ctx context.Context, u models.User, info models.UserInfo) (int64, error)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.FindByUsernameFunc(ctx, username)
}
func (m *mockUserRepo) FindTokenByUsername(ctx context.Context, username string) (string, error) {
	return m.FindTokenByUsernameFunc(ctx, username)
}
func (m *mockUserRepo) FindUserInfoByToken(ctx context.Context, token string) (*models.UserInfo, error) {
	return m.FindUserInfoByTokenFunc(ctx, token)
}
func (m *mockUserRepo) CreateUser(ctx context.Context, u models.User, info models.UserInfo) (int64, error) {
	return m.CreateUserFunc(ctx, u, info)
}

func newTestAuthService(repo UserRepository) *Service {
	svc := NewAuthService(repo)
	svc.cost = bcrypt.MinCost
	svc.newToken = func() string { return "fixed-token" }
	return svc
}

func TestCreateUser_HashesPassword(t *testing.T) {
	var stored models.User
	repo := &mockUserRepo{
		CreateUserFunc: func(ctx context.Context, u models.User, info models.UserInfo) (int64, error) {
			stored = u
			return 7, nil
		},
	}
	svc := newTestAuthService(repo)

	id, err := svc.CreateUser(context.Background(), " admin ", "s3cret!", 1, models.UserInfo{Roles: []string{"admin"}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "admin", stored.Username)
	assert.Equal(t, "fixed-token", stored.Token)
	assert.Equal(t, 1, stored.Privilege)
	assert.NotEqual(t, "s3cret!", stored.PasswordHash)
	assert.True(t, svc.VerifyPassword("s3cret!", stored.PasswordHash))
}

func TestCreateUser_Validation(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{})

	_, err := svc.CreateUser(context.Background(), "", "pw", 0, models.UserInfo{})
	assert.True(t, errors.Is(err, common.ErrValidation))
	_, err = svc.CreateUser(context.Background(), "bob", "", 0, models.UserInfo{})
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestCreateUser_Conflict(t *testing.T) {
	repo := &mockUserRepo{
		CreateUserFunc: func(ctx context.Context, u models.User, info models.UserInfo) (int64, error) {
			return 0, common.ErrConflict
		},
	}
	_, err := newTestAuthService(repo).CreateUser(context.Background(), "admin", "pw", 0, models.UserInfo{})
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestVerifyPassword_ExactMatchOnly(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{})
	hash, err := svc.HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, svc.VerifyPassword("correct horse", hash))
	for _, wrong := range []string{"correct hors", "correct horsE", "Correct horse", "correct horse ", ""} {
		assert.False(t, svc.VerifyPassword(wrong, hash), "password %q", wrong)
	}
	assert.False(t, svc.VerifyPassword("correct horse", "not-a-hash"))
}

func TestHashPassword_Salted(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{})
	a, err := svc.HashPassword("pw")
	require.NoError(t, err)
	b, err := svc.HashPassword("pw")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestUserInfo(t *testing.T) {
	repo := &mockUserRepo{
		FindUserInfoByTokenFunc: func(ctx context.Context, token string) (*models.UserInfo, error) {
			if token != "admin-token" {
				return nil, common.ErrNotFound
			}
			return &models.UserInfo{Name: "Super Admin", Roles: []string{"admin"}}, nil
		},
	}
	svc := newTestAuthService(repo)

	info, err := svc.UserInfo(context.Background(), "admin-token")
	require.NoError(t, err)
	assert.Equal(t, "Super Admin", info.Name)

	_, err = svc.UserInfo(context.Background(), "other")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = svc.UserInfo(context.Background(), " ")
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestTokenAuthenticator(t *testing.T) {
	dbErr := errors.New("db down")
	repo := &mockUserRepo{
		FindTokenByUsernameFunc: func(ctx context.Context, username string) (string, error) {
			switch username {
			case "admin":
				return "admin-token", nil
			case "broken":
				return "", dbErr
			default:
				return "", common.ErrNotFound
			}
		},
	}
	auth, err := NewAuthenticator(ModeToken, newTestAuthService(repo))
	require.NoError(t, err)

	token, err := auth.Authenticate(context.Background(), Credentials{Username: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin-token", token)

	_, err = auth.Authenticate(context.Background(), Credentials{Username: "ghost"})
	assert.True(t, errors.Is(err, common.ErrAuth))

	_, err = auth.Authenticate(context.Background(), Credentials{})
	assert.True(t, errors.Is(err, common.ErrAuth))

	_, err = auth.Authenticate(context.Background(), Credentials{Username: "broken"})
	assert.True(t, errors.Is(err, dbErr))
}

func TestPasswordAuthenticator(t *testing.T) {
	svc := newTestAuthService(nil)
	hash, err := svc.HashPassword("111111")
	require.NoError(t, err)

	svc.repo = &mockUserRepo{
		FindByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			if username != "admin" {
				return nil, common.ErrNotFound
			}
			return &models.User{ID: 1, Username: "admin", PasswordHash: hash, Token: "admin-token"}, nil
		},
	}
	auth, err := NewAuthenticator(ModePassword, svc)
	require.NoError(t, err)

	token, err := auth.Authenticate(context.Background(), Credentials{Username: "admin", Password: "111111"})
	require.NoError(t, err)
	assert.Equal(t, "admin-token", token)

	for _, c := range []Credentials{
		{Username: "admin", Password: "111112"},
		{Username: "admin"},
		{Username: "ghost", Password: "111111"},
	} {
		_, err := auth.Authenticate(context.Background(), c)
		assert.True(t, errors.Is(err, common.ErrAuth), "credentials %+v: %v", c, err)
	}
}

func TestNewAuthenticator_UnknownMode(t *testing.T) {
	_, err := NewAuthenticator("oauth", newTestAuthService(&mockUserRepo{}))
	assert.Error(t, err)
}

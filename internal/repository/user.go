package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/AdminBoard/internal/common"
	"github.com/atinyakov/AdminBoard/internal/db"
	"github.com/atinyakov/AdminBoard/internal/models"
)

// UserRepository implements user lookups and registration against the users table.
type UserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
	// Dialect rebinds placeholders and classifies driver errors.
	Dialect db.Dialect
}

// NewUserRepository creates a new UserRepository with the given database connection.
func NewUserRepository(conn *sql.DB, dialect db.Dialect) *UserRepository {
	return &UserRepository{DB: conn, Dialect: dialect}
}

// FindByUsername returns the user with the given name or common.ErrNotFound.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(
		`SELECT user_id, username, password, token, privilege FROM users WHERE username = ?`),
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Token, &u.Privilege)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: find user: %w", common.ErrStore, err)
	}
	return &u, nil
}

// FindTokenByUsername returns the bearer token of the named user or common.ErrNotFound.
func (r *UserRepository) FindTokenByUsername(ctx context.Context, username string) (string, error) {
	var token string
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(
		`SELECT token FROM users WHERE username = ?`),
		username,
	).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("token for %q: %w", username, common.ErrNotFound)
		}
		return "", fmt.Errorf("%w: find token: %w", common.ErrStore, err)
	}
	return token, nil
}

// FindUserInfoByToken returns the profile of the user owning token or common.ErrNotFound.
func (r *UserRepository) FindUserInfoByToken(ctx context.Context, token string) (*models.UserInfo, error) {
	var (
		info  models.UserInfo
		roles string
	)
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(
		`SELECT roles, introduction, avatar, name FROM users WHERE token = ?`),
		token,
	).Scan(&roles, &info.Introduction, &info.Avatar, &info.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: find user info: %w", common.ErrStore, err)
	}
	info.Roles = splitRoles(roles)
	return &info, nil
}

// CreateUser inserts a user whose password is already hashed and returns its id.
// A taken username yields common.ErrConflict.
func (r *UserRepository) CreateUser(ctx context.Context, u models.User, info models.UserInfo) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(
		`INSERT INTO users (username, password, token, privilege, roles, introduction, avatar, name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING user_id`),
		u.Username, u.PasswordHash, u.Token, u.Privilege,
		strings.Join(info.Roles, ","), info.Introduction, info.Avatar, info.Name,
	).Scan(&id)
	if err != nil {
		if r.Dialect.IsUniqueViolation(err) {
			return 0, fmt.Errorf("user %q: %w", u.Username, common.ErrConflict)
		}
		return 0, fmt.Errorf("%w: create user: %w", common.ErrStore, err)
	}
	return id, nil
}

func splitRoles(s string) []string {
	roles := make([]string, 0)
	for _, role := range strings.Split(s, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

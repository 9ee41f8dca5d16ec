package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/AdminBoard/internal/common"
	"github.com/atinyakov/AdminBoard/internal/middleware"
	"github.com/atinyakov/AdminBoard/internal/models"
	"github.com/atinyakov/AdminBoard/internal/service"
	"go.uber.org/zap"
)

// UserService resolves bearer tokens to user profiles.
type UserService interface {
	UserInfo(ctx context.Context, token string) (*models.UserInfo, error)
}

// AuthHandler handles login, user info and logout requests.
type AuthHandler struct {
	// Authenticator exchanges credentials for a token.
	Authenticator service.Authenticator
	// Users looks up the profile behind a token.
	Users UserService
	// Logger records unexpected failures.
	Logger *zap.Logger
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login handles POST user/login. Whether a password is required depends on
// the configured Authenticator. Failures other than bad credentials are
// reported with the generic internal code.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	token, err := h.Authenticator.Authenticate(r.Context(), creds)
	if err != nil {
		if errors.Is(err, common.ErrAuth) || errors.Is(err, common.ErrValidation) {
			writeError(w, h.Logger, err)
			return
		}
		writeInternal(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, tokenResponse{Token: token})
}

// Info handles GET user/info. The token is read from the token query
// parameter, the X-Token header or an Authorization bearer header.
func (h *AuthHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.Users.UserInfo(r.Context(), middleware.TokenFromRequest(r))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrValidation) {
			writeJSON(w, http.StatusUnauthorized, Response{
				Code:    CodeIllegalToken,
				Message: "Login failed, unable to get user details.",
			})
			return
		}
		writeInternal(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, info)
}

// Logout handles POST user/logout. Tokens are static, so there is nothing
// to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, "success")
}

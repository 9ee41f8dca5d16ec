package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/AdminBoard/internal/common"
	"github.com/atinyakov/AdminBoard/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenHeader is the header the dashboard sends its bearer token in.
const TokenHeader = "X-Token"

// UserInfoLookup resolves a bearer token to its owner.
type UserInfoLookup interface {
	UserInfo(ctx context.Context, token string) (*models.UserInfo, error)
}

// TokenFromRequest returns the bearer token from the X-Token header, the
// Authorization header ("Bearer <token>") or the token query parameter.
func TokenFromRequest(r *http.Request) string {
	if t := r.Header.Get(TokenHeader); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	return r.URL.Query().Get("token")
}

// RequireToken rejects requests without a token that resolves to a user.
// The token is looked up on every request; nothing is cached. On success the
// user's profile is stored in the request context.
func RequireToken(users UserInfoLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, common.CodeIllegalToken, "token required")
				return
			}
			info, err := users.UserInfo(r.Context(), token)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					writeAuthError(w, http.StatusUnauthorized, common.CodeIllegalToken, "illegal token")
					return
				}
				writeAuthError(w, http.StatusInternalServerError, common.CodeInternal, "Internal server error.")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the profile stored by RequireToken, or nil.
func UserFromContext(ctx context.Context) *models.UserInfo {
	if info, ok := ctx.Value(userKey).(*models.UserInfo); ok {
		return info
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(common.Response{Code: code, Message: msg})
}

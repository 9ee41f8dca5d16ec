package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/atinyakov/AdminBoard/internal/common"
	"go.uber.org/zap"
)

// Application codes, re-exported for handler callers.
const (
	CodeOK           = common.CodeOK
	CodeInternal     = common.CodeInternal
	CodeFailed       = common.CodeFailed
	CodeIllegalToken = common.CodeIllegalToken
	CodeLoginFailed  = common.CodeLoginFailed
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Response is the envelope the dashboard expects around every payload.
type Response = common.Response

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Code: CodeOK, Data: data})
}

// writeError maps a service error onto an HTTP status and application code.
// Errors that match no sentinel are logged and reported as internal errors
// without their text.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeJSON(w, http.StatusBadRequest, Response{Code: CodeFailed, Message: err.Error()})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Response{Code: CodeFailed, Message: err.Error()})
	case errors.Is(err, common.ErrConflict):
		writeJSON(w, http.StatusConflict, Response{Code: CodeFailed, Message: err.Error()})
	case errors.Is(err, common.ErrAuth):
		writeJSON(w, http.StatusUnauthorized, Response{Code: CodeLoginFailed, Message: common.ErrAuth.Error()})
	case errors.Is(err, common.ErrStore):
		logger(log).Error("store failure", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{Code: CodeFailed, Message: common.ErrStore.Error()})
	default:
		writeInternal(w, log, err)
	}
}

// writeInternal logs err and answers 500 with the generic internal code.
func writeInternal(w http.ResponseWriter, log *zap.Logger, err error) {
	logger(log).Error("unhandled error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Response{Code: CodeInternal, Message: "Internal server error."})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}
	return nil
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

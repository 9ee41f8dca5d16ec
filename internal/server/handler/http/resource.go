package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atinyakov/AdminBoard/internal/common"
	"github.com/atinyakov/AdminBoard/internal/models"
	"go.uber.org/zap"
)

// ResourceService defines the operations the resource endpoints need.
type ResourceService interface {
	List(ctx context.Context, params url.Values) (*models.ListResult, error)
	Get(ctx context.Context, id int64) (*models.Record, error)
	Create(ctx context.Context, rec models.Record) (int64, error)
	Update(ctx context.Context, rec models.Record) (int64, error)
	AddPageviews(ctx context.Context, id, delta int64) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// ResourceHandler serves the list, detail, pv, create, update and delete
// endpoints of one resource kind.
type ResourceHandler struct {
	// Service performs the underlying resource operations.
	Service ResourceService
	// Logger records unexpected failures.
	Logger *zap.Logger
}

type idResponse struct {
	ID int64 `json:"id"`
}

// List handles GET {res}/list. Query parameters other than page, limit and
// sort are passed on as filters.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, res)
}

// Detail handles GET {res}/detail?id=N.
func (h *ResourceHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	rec, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, rec)
}

// Pageviews handles GET {res}/pv?id=N&pv=D and raises the counter by D,
// or by one when pv is absent.
func (h *ResourceHandler) Pageviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := parseID(q.Get("id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	delta := int64(1)
	if raw := q.Get("pv"); raw != "" {
		delta, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, h.Logger, fmt.Errorf("%w: pv must be an integer", common.ErrValidation))
			return
		}
	}

	id, err = h.Service.AddPageviews(r.Context(), id, delta)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, idResponse{ID: id})
}

// Create handles POST {res}/create with a JSON record body.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rec models.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	id, err := h.Service.Create(r.Context(), rec)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusCreated, idResponse{ID: id})
}

// Update handles POST {res}/update. The body carries the id and the full
// replacement record.
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var rec models.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if rec.ID <= 0 {
		writeError(w, h.Logger, fmt.Errorf("%w: id must be a positive integer", common.ErrValidation))
		return
	}
	id, err := h.Service.Update(r.Context(), rec)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, idResponse{ID: id})
}

// Delete handles POST {res}/delete with a {"id": N} body.
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req idResponse
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if req.ID <= 0 {
		writeError(w, h.Logger, fmt.Errorf("%w: id must be a positive integer", common.ErrValidation))
		return
	}
	id, err := h.Service.Delete(r.Context(), req.ID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, idResponse{ID: id})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", common.ErrValidation)
	}
	return id, nil
}

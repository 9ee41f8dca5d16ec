package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/atinyakov/AdminBoard/internal/common"
	"github.com/atinyakov/AdminBoard/internal/models"
	handler "github.com/atinyakov/AdminBoard/internal/server/handler/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResourceService implements handler.ResourceService with optional func fields.
type fakeResourceService struct {
	ListFunc         func(ctx context.Context, params url.Values) (*models.ListResult, error)
	GetFunc          func(ctx context.Context, id int64) (*models.Record, error)
	CreateFunc       func(ctx context.Context, rec models.Record) (int64, error)
	UpdateFunc       func(ctx context.Context, rec models.Record) (int64, error)
	AddPageviewsFunc func(ctx context.Context, id, delta int64) (int64, error)
	DeleteFunc       func(ctx context.Context, id int64) (int64, error)
}

func (f *fakeResourceService) List(ctx context.Context, params url.Values) (*models.ListResult, error) {
	return f.ListFunc(ctx, params)
}

func (f *fakeResourceService) Get(ctx context.Context, id int64) (*models.Record, error) {
	return f.GetFunc(ctx, id)
}

func (f *fakeResourceService) Create(ctx context.Context, rec models.Record) (int64, error) {
	return f.CreateFunc(ctx, rec)
}

func (f *fakeResourceService) Update(ctx context.Context, rec models.Record) (int64, error) {
	return f.UpdateFunc(ctx, rec)
}

func (f *fakeResourceService) AddPageviews(ctx context.Context, id, delta int64) (int64, error) {
	return f.AddPageviewsFunc(ctx, id, delta)
}

func (f *fakeResourceService) Delete(ctx context.Context, id int64) (int64, error) {
	return f.DeleteFunc(ctx, id)
}

type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestResourceHandler_List(t *testing.T) {
	var got url.Values
	h := &handler.ResourceHandler{Service: &fakeResourceService{
		ListFunc: func(ctx context.Context, params url.Values) (*models.ListResult, error) {
			got = params
			return &models.ListResult{Items: []models.Record{{ID: 1, Title: "A", Pageviews: 5}}, Total: 1}, nil
		},
	}}

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/article/list?page=2&limit=5&title=A", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", got.Get("page"))
	assert.Equal(t, "A", got.Get("title"))

	env := decodeEnvelope(t, w)
	assert.Equal(t, handler.CodeOK, env.Code)
	var res models.ListResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(5), res.Items[0].Pageviews)
}

func TestResourceHandler_ListEmptyItemsIsArray(t *testing.T) {
	h := &handler.ResourceHandler{Service: &fakeResourceService{
		ListFunc: func(ctx context.Context, params url.Values) (*models.ListResult, error) {
			return &models.ListResult{Items: []models.Record{}, Total: 0}, nil
		},
	}}

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/article/list", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
}

func TestResourceHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedApp  int
	}{
		{"validation", fmt.Errorf("%w: bad limit", common.ErrValidation), http.StatusBadRequest, handler.CodeFailed},
		{"not found", fmt.Errorf("articles 9: %w", common.ErrNotFound), http.StatusNotFound, handler.CodeFailed},
		{"conflict", common.ErrConflict, http.StatusConflict, handler.CodeFailed},
		{"store", fmt.Errorf("%w: connection reset", common.ErrStore), http.StatusInternalServerError, handler.CodeFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, handler.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &handler.ResourceHandler{Service: &fakeResourceService{
				GetFunc: func(ctx context.Context, id int64) (*models.Record, error) {
					return nil, tt.err
				},
			}}

			w := httptest.NewRecorder()
			h.Detail(w, httptest.NewRequest(http.MethodGet, "/article/detail?id=9", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, tt.expectedApp, env.Code)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestResourceHandler_StoreErrorHidesDetails(t *testing.T) {
	h := &handler.ResourceHandler{Service: &fakeResourceService{
		GetFunc: func(ctx context.Context, id int64) (*models.Record, error) {
			return nil, fmt.Errorf("%w: dial tcp 10.0.0.5:5432: refused", common.ErrStore)
		},
	}}

	w := httptest.NewRecorder()
	h.Detail(w, httptest.NewRequest(http.MethodGet, "/article/detail?id=1", nil))

	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestResourceHandler_Detail(t *testing.T) {
	h := &handler.ResourceHandler{Service: &fakeResourceService{
		GetFunc: func(ctx context.Context, id int64) (*models.Record, error) {
			return &models.Record{ID: id, Title: "T"}, nil
		},
	}}

	for _, target := range []string{"/article/detail", "/article/detail?id=abc", "/article/detail?id=0", "/article/detail?id=-3"} {
		w := httptest.NewRecorder()
		h.Detail(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}

	w := httptest.NewRecorder()
	h.Detail(w, httptest.NewRequest(http.MethodGet, "/article/detail?id=7", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var rec models.Record
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &rec))
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, "T", rec.Title)
}

func TestResourceHandler_Pageviews(t *testing.T) {
	tests := []struct {
		name          string
		target        string
		expectedCode  int
		expectedDelta int64
	}{
		{"default delta", "/article/pv?id=3", http.StatusOK, 1},
		{"explicit delta", "/article/pv?id=3&pv=5", http.StatusOK, 5},
		{"bad delta", "/article/pv?id=3&pv=lots", http.StatusBadRequest, 0},
		{"missing id", "/article/pv?pv=2", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotDelta int64
			h := &handler.ResourceHandler{Service: &fakeResourceService{
				AddPageviewsFunc: func(ctx context.Context, id, delta int64) (int64, error) {
					gotDelta = delta
					return id, nil
				},
			}}

			w := httptest.NewRecorder()
			h.Pageviews(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedDelta, gotDelta)
		})
	}
}

func TestResourceHandler_Create(t *testing.T) {
	var got models.Record
	h := &handler.ResourceHandler{Service: &fakeResourceService{
		CreateFunc: func(ctx context.Context, rec models.Record) (int64, error) {
			got = rec
			return 1, nil
		},
	}}

	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(http.MethodPost, "/article/create",
		`{"title":"A","author":"ann","timestamp":1700000000000,"pageviews":0}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, int64(1700000000000), got.Timestamp.UnixMilli())
	assert.JSONEq(t, `{"id":1}`, string(decodeEnvelope(t, w).Data))
}

func TestResourceHandler_CreateBadBody(t *testing.T) {
	h := &handler.ResourceHandler{Service: &fakeResourceService{}}

	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(http.MethodPost, "/article/create", `not a json`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handler.CodeFailed, decodeEnvelope(t, w).Code)
}

func TestResourceHandler_Update(t *testing.T) {
	var got models.Record
	h := &handler.ResourceHandler{Service: &fakeResourceService{
		UpdateFunc: func(ctx context.Context, rec models.Record) (int64, error) {
			got = rec
			return rec.ID, nil
		},
	}}

	w := httptest.NewRecorder()
	h.Update(w, jsonRequest(http.MethodPost, "/article/update", `{"title":"no id"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Update(w, jsonRequest(http.MethodPost, "/article/update", `{"id":4,"title":"B","status":"draft"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), got.ID)
	assert.Equal(t, "draft", got.Status)
	assert.JSONEq(t, `{"id":4}`, string(decodeEnvelope(t, w).Data))
}

func TestResourceHandler_Delete(t *testing.T) {
	h := &handler.ResourceHandler{Service: &fakeResourceService{
		DeleteFunc: func(ctx context.Context, id int64) (int64, error) {
			if id == 404 {
				return 0, common.ErrNotFound
			}
			return id, nil
		},
	}}

	w := httptest.NewRecorder()
	h.Delete(w, jsonRequest(http.MethodPost, "/article/delete", `{"id":2}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2}`, string(decodeEnvelope(t, w).Data))

	w = httptest.NewRecorder()
	h.Delete(w, jsonRequest(http.MethodPost, "/article/delete", `{"id":404}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.Delete(w, jsonRequest(http.MethodPost, "/article/delete", `{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

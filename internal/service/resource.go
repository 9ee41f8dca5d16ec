package service

import (
	"context"
	"net/url"

	"github.com/atinyakov/AdminBoard/internal/models"
	"github.com/atinyakov/AdminBoard/internal/query"
)

// ResourceRepository defines the persistence operations needed by the ResourceService.
type ResourceRepository interface {
	// List returns one page of matching records and the total match count.
	List(ctx context.Context, req query.Request) (*models.ListResult, error)
	// GetByID fetches a record or returns common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Record, error)
	// Create inserts a record and returns its id.
	Create(ctx context.Context, rec models.Record) (int64, error)
	// Update replaces a record and returns its id.
	Update(ctx context.Context, id int64, rec models.Record) (int64, error)
	// IncrementCounter adds delta to the pageview counter.
	IncrementCounter(ctx context.Context, id, delta int64) (int64, error)
	// Delete removes a record.
	Delete(ctx context.Context, id int64) (int64, error)
}

// ResourceService implements the dashboard operations for one resource kind.
type ResourceService struct {
	// repo is the underlying persistence repository.
	repo ResourceRepository
}

// NewResourceService constructs a ResourceService with the provided repository.
func NewResourceService(repo ResourceRepository) *ResourceService {
	return &ResourceService{repo: repo}
}

// List parses the raw query parameters of a list request and returns the
// requested page.
func (s *ResourceService) List(ctx context.Context, params url.Values) (*models.ListResult, error) {
	req, err := query.ParseRequest(params)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, req)
}

// Get returns a single record.
func (s *ResourceService) Get(ctx context.Context, id int64) (*models.Record, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new record. Any id in rec is ignored.
func (s *ResourceService) Create(ctx context.Context, rec models.Record) (int64, error) {
	rec.ID = 0
	return s.repo.Create(ctx, rec)
}

// Update replaces the record rec.ID with rec.
func (s *ResourceService) Update(ctx context.Context, rec models.Record) (int64, error) {
	return s.repo.Update(ctx, rec.ID, rec)
}

// AddPageviews raises the pageview counter of a record by delta.
func (s *ResourceService) AddPageviews(ctx context.Context, id, delta int64) (int64, error) {
	return s.repo.IncrementCounter(ctx, id, delta)
}

// Delete removes a record.
func (s *ResourceService) Delete(ctx context.Context, id int64) (int64, error) {
	return s.repo.Delete(ctx, id)
}

// Package repository provides SQL persistence for dashboard resources and users.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/AdminBoard/internal/common"
	"github.com/atinyakov/AdminBoard/internal/db"
	"github.com/atinyakov/AdminBoard/internal/models"
	"github.com/atinyakov/AdminBoard/internal/query"
)

// ResourceSchema describes a resource table: every resource table shares the
// same columns and differs only by name and primary key column.
func ResourceSchema(table, idColumn string, maxLimit int) query.Schema {
	return query.Schema{
		Table:    table,
		IDColumn: idColumn,
		Columns: []string{
			idColumn,
			"title",
			"timestamp",
			"COALESCE(author, '')",
			"COALESCE(status, '')",
			"COALESCE(type, '')",
			"COALESCE(remark, '')",
			"pageviews",
		},
		Filters: map[string]query.Filter{
			"title":  {Column: "title", Op: query.Contains},
			"author": {Column: "author", Op: query.Equal},
			"status": {Column: "status", Op: query.Equal},
			"type":   {Column: "type", Op: query.Equal},
		},
		Sortable: map[string]string{
			"id":        idColumn,
			"title":     "title",
			"timestamp": "timestamp",
			"author":    "author",
			"pageviews": "pageviews",
		},
		MaxLimit: maxLimit,
	}
}

// ArticleSchema is the articles table.
func ArticleSchema(maxLimit int) query.Schema {
	return ResourceSchema("articles", "id", maxLimit)
}

// MeetingRoomSchema is the meetingrooms table.
func MeetingRoomSchema(maxLimit int) query.Schema {
	return ResourceSchema("meetingrooms", "meetingroom_id", maxLimit)
}

// ResourceRepository implements CRUD and counter operations over one resource table.
type ResourceRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
	// Dialect rebinds placeholders for DB.
	Dialect db.Dialect
	// Schema is the table the repository works on.
	Schema query.Schema

	now func() time.Time
}

// NewResourceRepository creates a repository for the table described by schema.
func NewResourceRepository(conn *sql.DB, dialect db.Dialect, schema query.Schema) *ResourceRepository {
	return &ResourceRepository{
		DB:      conn,
		Dialect: dialect,
		Schema:  schema,
		now:     time.Now,
	}
}

// List returns one page of records matching req and the total number of
// matching rows. The page and the total are two separate reads, so under
// concurrent writes they may describe slightly different moments.
func (r *ResourceRepository) List(ctx context.Context, req query.Request) (*models.ListResult, error) {
	fetch, count, err := r.Schema.Build(req)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(fetch.SQL), fetch.Args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", common.ErrStore, r.Schema.Table, err)
	}
	defer rows.Close()

	items := make([]models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %w", common.ErrStore, err)
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", common.ErrStore, r.Schema.Table, err)
	}
	// The fetch must be fully released before the count when the pool holds one connection.
	rows.Close()

	var total int64
	if err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(count.SQL), count.Args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("%w: count %s: %w", common.ErrStore, r.Schema.Table, err)
	}

	return &models.ListResult{Items: items, Total: total}, nil
}

// GetByID fetches a single record. It returns common.ErrNotFound when no row
// has the id and common.ErrStore for any other failure.
func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*models.Record, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		strings.Join(r.Schema.Columns, ", "), r.Schema.Table, r.Schema.IDColumn)

	rec, err := scanRecord(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(q), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %d: %w", r.Schema.Table, id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: get %s %d: %w", common.ErrStore, r.Schema.Table, id, err)
	}
	return rec, nil
}

// Create inserts rec and returns the assigned id. A missing title is a
// validation error; a zero timestamp defaults to the current time.
func (r *ResourceRepository) Create(ctx context.Context, rec models.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = models.NewTimestamp(r.now())
	}

	q := fmt.Sprintf(`INSERT INTO %s (title, timestamp, author, status, type, remark, pageviews)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING %s`, r.Schema.Table, r.Schema.IDColumn)

	var id int64
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(q),
		rec.Title, rec.Timestamp, nullString(rec.Author), nullString(rec.Status),
		nullString(rec.Type), nullString(rec.Remark), rec.Pageviews,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", common.ErrStore, r.Schema.Table, err)
	}
	return id, nil
}

// Update replaces every mutable column of the record with id. Fields left
// empty in rec are cleared, not preserved.
func (r *ResourceRepository) Update(ctx context.Context, id int64, rec models.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = models.NewTimestamp(r.now())
	}

	q := fmt.Sprintf(`UPDATE %s SET title = ?, timestamp = ?, author = ?, status = ?, type = ?,
		remark = ?, pageviews = ? WHERE %s = ?`, r.Schema.Table, r.Schema.IDColumn)

	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(q),
		rec.Title, rec.Timestamp, nullString(rec.Author), nullString(rec.Status),
		nullString(rec.Type), nullString(rec.Remark), rec.Pageviews, id,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: update %s %d: %w", common.ErrStore, r.Schema.Table, id, err)
	}
	if err := r.expectRow(res, id); err != nil {
		return 0, err
	}
	return id, nil
}

// IncrementCounter adds delta to the pageview counter in a single statement.
// delta must not be negative so the counter never goes down.
func (r *ResourceRepository) IncrementCounter(ctx context.Context, id, delta int64) (int64, error) {
	if delta < 0 {
		return 0, fmt.Errorf("%w: pageview delta must not be negative", common.ErrValidation)
	}

	q := fmt.Sprintf("UPDATE %s SET pageviews = pageviews + ? WHERE %s = ?",
		r.Schema.Table, r.Schema.IDColumn)

	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(q), delta, id)
	if err != nil {
		return 0, fmt.Errorf("%w: increment %s %d: %w", common.ErrStore, r.Schema.Table, id, err)
	}
	if err := r.expectRow(res, id); err != nil {
		return 0, err
	}
	return id, nil
}

// Delete removes the record with id.
func (r *ResourceRepository) Delete(ctx context.Context, id int64) (int64, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.Schema.Table, r.Schema.IDColumn)

	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(q), id)
	if err != nil {
		return 0, fmt.Errorf("%w: delete %s %d: %w", common.ErrStore, r.Schema.Table, id, err)
	}
	if err := r.expectRow(res, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ResourceRepository) expectRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", common.ErrStore, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", r.Schema.Table, id, common.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.Record, error) {
	var rec models.Record
	err := s.Scan(&rec.ID, &rec.Title, &rec.Timestamp, &rec.Author,
		&rec.Status, &rec.Type, &rec.Remark, &rec.Pageviews)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

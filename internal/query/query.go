// Package query turns an untyped list request (page, limit, sort and free-form
// filters) into parameterized fetch and count statements.
//
// Column names only ever come from a Schema allow-list; client values are
// always passed as bound parameters.
package query

import (
	"fmt"
	"maps"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/atinyakov/AdminBoard/internal/common"
)

const (
	// DefaultPage is used when the request carries no page.
	DefaultPage = 1
	// DefaultLimit is used when the request carries no limit.
	DefaultLimit = 20
	// DefaultMaxLimit caps limit when a Schema sets no MaxLimit.
	DefaultMaxLimit = 100
)

// Op is the comparison a filter applies.
type Op int

const (
	// Equal matches the column exactly.
	Equal Op = iota
	// Contains matches the value as a substring of the column.
	Contains
)

// Filter binds a request parameter to a column and an operator.
type Filter struct {
	Column string
	Op     Op
}

// Schema describes one table for the builder.
type Schema struct {
	// Table is the table name.
	Table string
	// IDColumn is the primary key and the default sort column.
	IDColumn string
	// Columns is the select list, in scan order.
	Columns []string
	// Filters maps request parameter names to filterable columns.
	Filters map[string]Filter
	// Sortable maps sort names to columns.
	Sortable map[string]string
	// MaxLimit caps the page size. Zero means DefaultMaxLimit.
	MaxLimit int
}

// Request is a parsed list request.
type Request struct {
	Page    int
	Limit   int
	Sort    string
	Filters map[string]string
}

// Statement is SQL text with "?" placeholders plus its arguments.
type Statement struct {
	SQL  string
	Args []any
}

// reserved are the request parameters that are never treated as filters.
var reserved = map[string]bool{"page": true, "limit": true, "sort": true}

// ParseRequest reads page, limit and sort from v; every other key becomes a
// filter candidate. Non-numeric or non-positive page and limit values are
// rejected with common.ErrValidation.
func ParseRequest(v url.Values) (Request, error) {
	req := Request{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Sort:    v.Get("sort"),
		Filters: make(map[string]string),
	}

	var err error
	if req.Page, err = positiveInt(v, "page", DefaultPage); err != nil {
		return Request{}, err
	}
	if req.Limit, err = positiveInt(v, "limit", DefaultLimit); err != nil {
		return Request{}, err
	}

	for key := range v {
		if reserved[key] {
			continue
		}
		req.Filters[key] = v.Get(key)
	}
	return req, nil
}

func positiveInt(v url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", common.ErrValidation, key, raw)
	}
	return n, nil
}

// Build produces the page fetch statement and the count statement for r.
// Both share the same predicate; the count has no bounds.
func (s Schema) Build(r Request) (fetch, count Statement, err error) {
	page, limit := r.Page, r.Limit
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if page < 1 || limit < 1 {
		return Statement{}, Statement{}, fmt.Errorf("%w: page and limit must be positive", common.ErrValidation)
	}
	maxLimit := s.MaxLimit
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page-1 > math.MaxInt/limit {
		return Statement{}, Statement{}, fmt.Errorf("%w: page %d is out of range", common.ErrValidation, page)
	}

	orderBy, err := s.orderBy(r.Sort)
	if err != nil {
		return Statement{}, Statement{}, err
	}

	where, args := s.where(r.Filters)

	fetch = Statement{
		SQL: fmt.Sprintf("SELECT %s FROM %s %s ORDER BY %s LIMIT ? OFFSET ?",
			strings.Join(s.Columns, ", "), s.Table, where, orderBy),
		Args: append(append(make([]any, 0, len(args)+2), args...), limit, (page-1)*limit),
	}
	count = Statement{
		SQL:  fmt.Sprintf("SELECT COUNT(*) FROM %s %s", s.Table, where),
		Args: args,
	}
	return fetch, count, nil
}

// where starts from an always-true clause and ANDs one condition per known,
// non-empty filter. Filters are visited in sorted key order so the same
// request always yields the same SQL.
func (s Schema) where(filters map[string]string) (string, []any) {
	var b strings.Builder
	b.WriteString("WHERE 1=1")
	var args []any

	for _, key := range slices.Sorted(maps.Keys(s.Filters)) {
		value := strings.TrimSpace(filters[key])
		if value == "" {
			continue
		}
		f := s.Filters[key]
		switch f.Op {
		case Contains:
			b.WriteString(" AND " + f.Column + ` LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(value)+"%")
		default:
			b.WriteString(" AND " + f.Column + " = ?")
			args = append(args, value)
		}
	}
	return b.String(), args
}

func (s Schema) orderBy(sort string) (string, error) {
	sort = strings.TrimSpace(sort)
	dir := "ASC"
	switch {
	case strings.HasPrefix(sort, "-"):
		dir = "DESC"
		sort = sort[1:]
	case strings.HasPrefix(sort, "+"):
		sort = sort[1:]
	}
	if sort == "" {
		return s.IDColumn + " " + dir, nil
	}
	column, ok := s.Sortable[sort]
	if !ok {
		return "", fmt.Errorf("%w: cannot sort by %q", common.ErrValidation, sort)
	}
	return column + " " + dir, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

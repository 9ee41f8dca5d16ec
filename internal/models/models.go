// Package models defines the core data structures for dashboard resources and users.
package models

import (
	"fmt"
	"strings"

	"github.com/atinyakov/AdminBoard/internal/common"
)

// Record is a manageable dashboard entity (an article or a meeting room).
type Record struct {
	// ID is assigned by the store on insert and never changes.
	ID int64 `json:"id"`
	// Title is the only required field.
	Title string `json:"title"`
	// Timestamp defaults to the creation time when left empty.
	Timestamp Timestamp `json:"timestamp"`
	Author    string    `json:"author"`
	Status    string    `json:"status"`
	Type      string    `json:"type"`
	Remark    string    `json:"remark"`
	// Pageviews only grows through the increment operation.
	Pageviews int64 `json:"pageviews"`
}

// Validate checks the fields a write must carry.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if r.Pageviews < 0 {
		return fmt.Errorf("%w: pageviews must not be negative", common.ErrValidation)
	}
	return nil
}

// ListResult is one page of records plus the number of rows matching the filters.
type ListResult struct {
	Items []Record `json:"items"`
	Total int64    `json:"total"`
}

// User represents a dashboard account.
type User struct {
	// ID is the unique identifier for the user.
	ID int64
	// Username is the unique login name.
	Username string
	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string
	// Token is the bearer token handed out on login.
	Token string
	// Privilege is the access level, 0 by default.
	Privilege int
}

// UserInfo is the profile returned for a bearer token.
type UserInfo struct {
	Roles        []string `json:"roles"`
	Introduction string   `json:"introduction"`
	Avatar       string   `json:"avatar"`
	Name         string   `json:"name"`
}

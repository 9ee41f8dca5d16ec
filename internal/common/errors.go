// Package common defines sentinel errors shared by the repository, service
// and HTTP layers. Callers wrap them with fmt.Errorf("...: %w", ...) and
// match them with errors.Is.
package common

import "errors"

var (
	// ErrValidation reports malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound reports that no record, user or token matched.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a unique constraint violation, e.g. a taken username.
	ErrConflict = errors.New("already exists")
	// ErrAuth reports bad credentials.
	ErrAuth = errors.New("account and password are incorrect")
	// ErrStore reports a connection or query failure in the underlying store.
	ErrStore = errors.New("store error")
)

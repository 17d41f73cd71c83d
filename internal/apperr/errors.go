// Package apperr defines sentinel errors shared across service surfaces.
package apperr

import "errors"

// ErrNotFound indicates the requested post does not exist.
var ErrNotFound = errors.New("not found")

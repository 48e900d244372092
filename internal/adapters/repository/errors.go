package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for persistence errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrMalformedRow  = errors.New("malformed row")
	ErrMissingColumn = errors.New("missing column")
)

// RowError locates a bad row in a tabular file. Line is 1-based and counts
// the header.
type RowError struct {
	File string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

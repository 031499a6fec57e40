package repository

import "errors"

// ErrNotFound is returned by updates that match no row.
var ErrNotFound = errors.New("not found")

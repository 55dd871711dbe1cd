package repository

import "errors"

// ErrNotFound indicates a missing row for the requested key.
var ErrNotFound = errors.New("repository: not found")

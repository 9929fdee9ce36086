package domain

import "errors"

// ErrNotFound reports that a requested record does not exist. Stores and
// caches return it so callers can distinguish absence from failure.
var ErrNotFound = errors.New("not found")

package storage

import "errors"

// ErrNotFound is returned when a headline is not in the current listing or a
// chat session does not exist.
var ErrNotFound = errors.New("not found")

package repository

import "errors"

// ErrNotFound is returned (wrapped) when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

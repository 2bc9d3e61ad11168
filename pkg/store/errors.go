package store

import "errors"

// ErrDuplicateID is returned by add operations when the id already exists.
// Callers are expected to pre-resolve ids through the merge resolver or id
// generation; the store never auto-renames.
var ErrDuplicateID = errors.New("duplicate id")

// ErrNotFound is returned by update and delete operations when the target
// id does not exist in the network.
var ErrNotFound = errors.New("not found")

package store

import "errors"

// Sentinel errors for store operations. Collisions are reported with
// dealerdocs.ErrIdentifierTaken so callers of IssueUnique need no store import.
var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrInvalidConfig     = errors.New("invalid store configuration")
	ErrNotFound          = errors.New("identifier not found")
)

package store

import "errors"

// Sentinel errors the handler layer maps onto HTTP status codes. Anything
// else coming out of this package is a database failure and surfaces as 500.
var (
	ErrNotFound         = errors.New("not_found")
	ErrInvalidArgument  = errors.New("invalid_argument")
	ErrPermissionDenied = errors.New("permission_denied")
)

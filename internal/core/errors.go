package core

import "errors"

// Sentinel errors mapped to HTTP status codes by the web adapter.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

package http

import "errors"

// ErrInvalidQuery is returned when a listing query string cannot be parsed.
var ErrInvalidQuery = errors.New("invalid query")

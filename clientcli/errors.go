package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// Errors for configuration validation.
var (
	ErrConfigRequired  = errors.New("config is required")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrInvalidTimeout  = errors.New("invalid timeout")
)

// Errors for input validation.
var (
	ErrNoPaths      = errors.New("no paths provided")
	ErrEmptyPath    = errors.New("path is required")
	ErrRelativePath = errors.New("path must be absolute")
	ErrReservedPath = errors.New("path is reserved by the server")
	ErrInvalidJobID = errors.New("invalid job id")
	ErrInvalidLimit = errors.New("limit must not be negative")
)

// ErrUnexpectedResponse is returned when the server answers with a body the
// client cannot decode.
var ErrUnexpectedResponse = errors.New("unexpected response from server")

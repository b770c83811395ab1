// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid indicates a malformed field or a grid that is not rectangular.
	ErrInvalid = errors.New("invalid")

	// ErrDuplicateIdentifier indicates another card already uses the identifier number.
	ErrDuplicateIdentifier = errors.New("identifier already exists")

	// ErrDuplicateCode indicates another card already uses the code.
	ErrDuplicateCode = errors.New("code already exists")

	// ErrUnauthorized indicates a locked session or a bad session token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStorage indicates the persistence medium failed to read or write a blob.
	ErrStorage = errors.New("storage failure")
)

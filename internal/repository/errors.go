package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found. Expired one-time
	// tokens are reported as not found as well, so callers cannot tell the
	// two cases apart.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a (site_id, email) pair already exists.
	ErrDuplicateEmail = errors.New("email already exists for this site")

	// ErrDuplicateDomain is returned when a site domain already exists.
	ErrDuplicateDomain = errors.New("site with this domain already exists")

	// ErrDuplicateToken is returned when a token string collides with an
	// existing row.
	ErrDuplicateToken = errors.New("token already exists")

	// ErrMalformedRow is returned when a row cannot be scanned into its
	// model. This indicates schema drift, not user error.
	ErrMalformedRow = errors.New("malformed row")
)

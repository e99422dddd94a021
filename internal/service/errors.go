package service

import "errors"

// Validation-shaped errors. These are expected control flow: the HTTP layer
// maps them to user-facing responses. Anything else bubbling out of a
// service is an infrastructure failure (store unreachable and the like) and
// is treated as fatal by the caller.
var (
	// ErrDuplicateEmail is returned when registering an email that already
	// exists for the site.
	ErrDuplicateEmail = errors.New("email already registered for this site")

	// ErrInvalidCredentials is returned on login when the user does not
	// exist or the password does not match. The two cases are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotVerified is returned on login before the email has been
	// verified.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrIncorrectPassword is returned when the old password supplied to a
	// password change does not match.
	ErrIncorrectPassword = errors.New("incorrect password")

	// ErrInvalidToken is returned for any token that is missing, expired or
	// already consumed. The cases are deliberately collapsed so callers
	// cannot probe for token existence.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrPasswordRequired is returned when verifying an email for an
	// account without a password and no password was supplied.
	ErrPasswordRequired = errors.New("password required")

	// ErrEmailInUse is returned when requesting or confirming an email
	// change to an address already taken on the site.
	ErrEmailInUse = errors.New("email already in use")

	// ErrUserNotFound is returned when an operation references a missing user.
	ErrUserNotFound = errors.New("user not found")

	// ErrSiteNotFound is returned when an operation references a missing site.
	ErrSiteNotFound = errors.New("site not found")

	// ErrDuplicateDomain is returned when creating or updating a site with
	// a domain that already exists.
	ErrDuplicateDomain = errors.New("domain already registered")

	// ErrAlreadyVerified is returned when resending a verification email to
	// a user who is already verified.
	ErrAlreadyVerified = errors.New("user already verified")
)

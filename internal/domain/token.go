package domain

// AuthToken is a session credential. It stays valid for every request
// until it expires or is explicitly invalidated; a user may hold several
// concurrent sessions.
type AuthToken struct {
	Token     string `json:"token" db:"token"`
	SiteID    int64  `json:"site_id" db:"site_id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	ExpiresAt int64  `json:"expires_at" db:"expires_at"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// EmailVerificationToken is a one-time token proving ownership of the
// email address used at registration. Deleted on consumption.
type EmailVerificationToken struct {
	Token     string `json:"token" db:"token"`
	SiteID    int64  `json:"site_id" db:"site_id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	ExpiresAt int64  `json:"expires_at" db:"expires_at"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// PasswordResetToken is a one-time token for forgotten-password recovery.
// Consumption flags it used instead of deleting it, keeping a trail of
// reset attempts.
type PasswordResetToken struct {
	Token     string `json:"token" db:"token"`
	SiteID    int64  `json:"site_id" db:"site_id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	ExpiresAt int64  `json:"expires_at" db:"expires_at"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	Used      bool   `json:"used" db:"used"`
}

// EmailChangeRequest is a one-time token targeting a new, unverified email
// address. Deleted on consumption.
type EmailChangeRequest struct {
	Token     string `json:"token" db:"token"`
	SiteID    int64  `json:"site_id" db:"site_id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	NewEmail  string `json:"new_email" db:"new_email"`
	ExpiresAt int64  `json:"expires_at" db:"expires_at"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

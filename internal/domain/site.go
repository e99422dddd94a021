package domain

// Site is a tenant. Every user, token and email template is scoped to
// exactly one site; nothing crosses site boundaries.
type Site struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Domain      string `json:"domain" db:"domain"`
	FrontendURL string `json:"frontend_url" db:"frontend_url"`
	// VerificationRedirectURL overrides where the frontend sends users
	// after a successful email verification. Nil falls back to FrontendURL.
	VerificationRedirectURL *string `json:"verification_redirect_url" db:"verification_redirect_url"`
	EmailFrom               string  `json:"email_from" db:"email_from"`
	EmailFromName           string  `json:"email_from_name" db:"email_from_name"`
	CreatedAt               int64   `json:"created_at" db:"created_at"`
	UpdatedAt               int64   `json:"updated_at" db:"updated_at"`
}

// RedirectURL returns the post-verification redirect target.
func (s *Site) RedirectURL() string {
	if s.VerificationRedirectURL != nil && *s.VerificationRedirectURL != "" {
		return *s.VerificationRedirectURL
	}
	return s.FrontendURL
}

package dto

// RegisterRequest represents a self-service registration request.
type RegisterRequest struct {
	SiteID   int64  `json:"site_id" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// AdminRegisterRequest represents a master-key provisioned registration.
// Password may be omitted; such users choose one when verifying.
type AdminRegisterRequest struct {
	SiteID   int64   `json:"site_id" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Role     string  `json:"role" binding:"omitempty,oneof=user admin"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	SiteID   int64  `json:"site_id" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenRequest carries a bare one-time token.
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyEmailRequest represents an email verification request. Password is
// required only for accounts provisioned without one.
type VerifyEmailRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"omitempty,min=8"`
}

// ChangePasswordRequest represents a password change for the authenticated
// user.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// RequestPasswordResetRequest starts forgotten-password recovery.
type RequestPasswordResetRequest struct {
	SiteID int64  `json:"site_id" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes forgotten-password recovery.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// RequestEmailChangeRequest starts an email change for the authenticated
// user.
type RequestEmailChangeRequest struct {
	NewEmail string `json:"new_email" binding:"required,email"`
}

// SiteRequest carries the mutable fields of a site for create and update.
type SiteRequest struct {
	Name                    string  `json:"name" binding:"required"`
	Domain                  string  `json:"domain" binding:"required"`
	FrontendURL             string  `json:"frontend_url" binding:"required,url"`
	VerificationRedirectURL *string `json:"verification_redirect_url" binding:"omitempty,url"`
	EmailFrom               string  `json:"email_from" binding:"required,email"`
	EmailFromName           string  `json:"email_from_name" binding:"required"`
}

package service

import (
	"context"

	"github.com/prperemyshlev/siteauth/internal/domain"
)

// TokenService manages the lifecycle of all four token kinds: minting,
// validation, one-time consumption and expiry sweeping.
type TokenService interface {
	CreateAuthToken(ctx context.Context, siteID, userID int64) (*domain.AuthToken, error)
	// ValidateAuthToken is non-destructive: sessions are checked, not spent.
	ValidateAuthToken(ctx context.Context, token string) (*domain.AuthToken, error)
	InvalidateAuthToken(ctx context.Context, token string) error
	InvalidateUserTokens(ctx context.Context, userID int64) (int64, error)

	CreateVerificationToken(ctx context.Context, siteID, userID int64) (*domain.EmailVerificationToken, error)
	// CheckVerificationToken looks the token up without consuming it.
	CheckVerificationToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error)
	ConsumeVerificationToken(ctx context.Context, token string) (int64, error)

	CreateResetToken(ctx context.Context, siteID, userID int64) (*domain.PasswordResetToken, error)
	ConsumeResetToken(ctx context.Context, token string) (int64, error)

	CreateEmailChangeRequest(ctx context.Context, siteID, userID int64, newEmail string) (*domain.EmailChangeRequest, error)
	ConsumeEmailChangeRequest(ctx context.Context, token string) (*domain.EmailChangeRequest, error)

	SweepExpired(ctx context.Context) (SweepResult, error)
}

// SweepResult counts the rows removed by one sweep pass.
type SweepResult struct {
	AuthTokens          int64
	VerificationTokens  int64
	ResetTokens         int64
	EmailChangeRequests int64
}

// Total returns the total number of rows removed.
func (s SweepResult) Total() int64 {
	return s.AuthTokens + s.VerificationTokens + s.ResetTokens + s.EmailChangeRequests
}

// VerificationTokenStatus is returned by a non-destructive token check, so
// the frontend can decide whether to show a password form before committing
// to consumption.
type VerificationTokenStatus struct {
	PasswordRequired bool   `json:"password_required"`
	Email            string `json:"email"`
}

// VerificationResult is the outcome of a successful email verification.
type VerificationResult struct {
	User        *domain.User `json:"user"`
	RedirectURL string       `json:"redirect_url"`
}

// AuthService orchestrates the user-facing credential flows.
type AuthService interface {
	Register(ctx context.Context, siteID int64, email string, password *string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, siteID int64, email, password string) (*domain.AuthToken, error)
	Logout(ctx context.Context, token string) error
	CheckVerificationToken(ctx context.Context, token string) (*VerificationTokenStatus, error)
	VerifyEmail(ctx context.Context, token, password string) (*VerificationResult, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, siteID int64, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) (*domain.User, error)
	RequestEmailChange(ctx context.Context, userID int64, newEmail string) error
	ConfirmEmailChange(ctx context.Context, token string) (*domain.User, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	GetUserByToken(ctx context.Context, token string) (*domain.User, error)
	ResendVerification(ctx context.Context, userID int64) error
	ListUsers(ctx context.Context, siteID int64) ([]*domain.User, error)
	DeleteUser(ctx context.Context, userID int64) error
}

// SiteInput carries the mutable fields of a site.
type SiteInput struct {
	Name                    string
	Domain                  string
	FrontendURL             string
	VerificationRedirectURL *string
	EmailFrom               string
	EmailFromName           string
}

// SiteService manages tenants.
type SiteService interface {
	CreateSite(ctx context.Context, in SiteInput) (*domain.Site, error)
	GetSite(ctx context.Context, id int64) (*domain.Site, error)
	GetSiteByDomain(ctx context.Context, domain string) (*domain.Site, error)
	UpdateSite(ctx context.Context, id int64, in SiteInput) (*domain.Site, error)
	ListSites(ctx context.Context) ([]*domain.Site, error)
}

// Notifier delivers transactional email. Implementations are best-effort
// collaborators: the orchestrator logs failures and moves on.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, site *domain.Site, toEmail, token string) error
	SendPasswordResetEmail(ctx context.Context, site *domain.Site, toEmail, token string) error
	SendEmailChangeEmail(ctx context.Context, site *domain.Site, toEmail, token string) error
}

package repository

import (
	"context"

	"github.com/prperemyshlev/siteauth/internal/domain"
)

// SiteRepository defines storage operations for tenants.
type SiteRepository interface {
	Create(ctx context.Context, site *domain.Site) error
	GetByID(ctx context.Context, id int64) (*domain.Site, error)
	GetByDomain(ctx context.Context, domain string) (*domain.Site, error)
	Update(ctx context.Context, site *domain.Site) error
	List(ctx context.Context) ([]*domain.Site, error)
}

// UserRepository defines storage operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, siteID int64, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	ListBySite(ctx context.Context, siteID int64) ([]*domain.User, error)
	// Delete removes the user and every token referencing them in a single
	// transaction.
	Delete(ctx context.Context, userID int64) error
}

// AuthTokenRepository defines storage operations for session tokens.
type AuthTokenRepository interface {
	Create(ctx context.Context, token *domain.AuthToken) error
	GetByToken(ctx context.Context, token string) (*domain.AuthToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

// VerificationTokenRepository defines storage operations for email
// verification tokens.
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *domain.EmailVerificationToken) error
	GetByToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error)
	// Consume deletes the token iff it exists and has not expired, returning
	// the owning user id. Returns ErrNotFound otherwise.
	Consume(ctx context.Context, token string, now int64) (int64, error)
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

// ResetTokenRepository defines storage operations for password reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	// Consume flags the token used iff it exists, is unused and has not
	// expired, returning the owning user id. Returns ErrNotFound otherwise.
	Consume(ctx context.Context, token string, now int64) (int64, error)
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

// EmailChangeRepository defines storage operations for email change requests.
type EmailChangeRepository interface {
	Create(ctx context.Context, req *domain.EmailChangeRequest) error
	// Confirm consumes the request and applies the new email to the owning
	// user in one transaction. A (site_id, email) conflict at apply time
	// rolls the consumption back and returns ErrDuplicateEmail.
	Confirm(ctx context.Context, token string, now int64) (*domain.EmailChangeRequest, error)
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

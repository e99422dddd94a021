package repository

import (
	"github.com/lib/pq"
	"github.com/prperemyshlev/siteauth/pkg/database"
)

// Repositories holds all repository interfaces.
type Repositories struct {
	Site         SiteRepository
	User         UserRepository
	AuthToken    AuthTokenRepository
	Verification VerificationTokenRepository
	Reset        ResetTokenRepository
	EmailChange  EmailChangeRepository
}

// NewRepositories creates all repositories backed by the shared pool.
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Site:         NewSiteRepository(db),
		User:         NewUserRepository(db),
		AuthToken:    NewAuthTokenRepository(db),
		Verification: NewVerificationTokenRepository(db),
		Reset:        NewResetTokenRepository(db),
		EmailChange:  NewEmailChangeRepository(db),
	}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}

package domain

// Role is a user's role within their site.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered user account.
//
// Users are scoped to a single site. Email is unique per site, not globally.
// PasswordHash is nil only for admin-provisioned accounts that must set
// their own password when verifying their email.
type User struct {
	ID           int64   `json:"id" db:"id"`
	SiteID       int64   `json:"site_id" db:"site_id"`
	Email        string  `json:"email" db:"email"`
	PasswordHash *string `json:"-" db:"password_hash"`
	IsVerified   bool    `json:"is_verified" db:"is_verified"`
	Role         Role    `json:"role" db:"role"`
	CreatedAt    int64   `json:"created_at" db:"created_at"`
	UpdatedAt    int64   `json:"updated_at" db:"updated_at"`
}

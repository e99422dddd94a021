package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/pkg/database"
)

// userRepository implements UserRepository.
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, site_id, email, password_hash, is_verified, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	user := &domain.User{}
	var passwordHash sql.NullString

	err := row.Scan(
		&user.ID,
		&user.SiteID,
		&user.Email,
		&passwordHash,
		&user.IsVerified,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		user.PasswordHash = &passwordHash.String
	}

	return user, nil
}

// Create creates a new user. The store assigns the id.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (site_id, email, password_hash, is_verified, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.DB.QueryRowContext(ctx, query,
		user.SiteID,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with email %s already exists for site %d: %w", user.Email, user.SiteID, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w: %v", ErrMalformedRow, err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email within a site. Emails are unique per
// site, not globally.
func (r *userRepository) GetByEmail(ctx context.Context, siteID int64, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE site_id = $1 AND email = $2`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, siteID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found for site %d: %w", email, siteID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w: %v", ErrMalformedRow, err)
	}

	return user, nil
}

// Update updates an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, is_verified = $4, role = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		user.Role,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with email %s already exists for site %d: %w", user.Email, user.SiteID, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %d not found: %w", user.ID, ErrNotFound)
	}

	return nil
}

// ListBySite retrieves all users belonging to a site.
func (r *userRepository) ListBySite(ctx context.Context, siteID int64) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE site_id = $1 ORDER BY created_at`

	rows, err := r.db.DB.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w: %v", ErrMalformedRow, err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// Delete removes the user and all their tokens in one transaction, so a
// failure midway leaves no partial state behind.
func (r *userRepository) Delete(ctx context.Context, userID int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, query := range []string{
			`DELETE FROM auth_tokens WHERE user_id = $1`,
			`DELETE FROM email_verification_tokens WHERE user_id = $1`,
			`DELETE FROM password_reset_tokens WHERE user_id = $1`,
			`DELETE FROM email_change_requests WHERE user_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, query, userID); err != nil {
				return fmt.Errorf("failed to delete user tokens: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return fmt.Errorf("user with id %d not found: %w", userID, ErrNotFound)
		}

		return nil
	})
}

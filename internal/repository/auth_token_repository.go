package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/pkg/database"
)

// authTokenRepository implements AuthTokenRepository.
type authTokenRepository struct {
	db *database.Postgres
}

// NewAuthTokenRepository creates a new auth token repository.
func NewAuthTokenRepository(db *database.Postgres) AuthTokenRepository {
	return &authTokenRepository{db: db}
}

// Create persists a new session token.
func (r *authTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (token, site_id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		token.Token,
		token.SiteID,
		token.UserID,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("auth token already exists: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create auth token: %w", err)
	}

	return nil
}

// GetByToken retrieves a session token by its opaque value. Expiry is the
// caller's concern; the row is returned as stored.
func (r *authTokenRepository) GetByToken(ctx context.Context, token string) (*domain.AuthToken, error) {
	query := `
		SELECT token, site_id, user_id, expires_at, created_at
		FROM auth_tokens
		WHERE token = $1
	`

	t := &domain.AuthToken{}
	err := r.db.DB.QueryRowContext(ctx, query, token).Scan(
		&t.Token,
		&t.SiteID,
		&t.UserID,
		&t.ExpiresAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auth token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get auth token: %w: %v", ErrMalformedRow, err)
	}

	return t, nil
}

// Delete removes one session token.
func (r *authTokenRepository) Delete(ctx context.Context, token string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM auth_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete auth token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("auth token not found: %w", ErrNotFound)
	}

	return nil
}

// DeleteByUser removes every session for a user and returns the count.
func (r *authTokenRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete auth tokens for user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// DeleteExpired removes all session tokens past their expiry.
func (r *authTokenRepository) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM auth_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired auth tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

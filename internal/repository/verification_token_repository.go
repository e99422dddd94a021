package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/pkg/database"
)

// verificationTokenRepository implements VerificationTokenRepository.
type verificationTokenRepository struct {
	db *database.Postgres
}

// NewVerificationTokenRepository creates a new email verification token repository.
func NewVerificationTokenRepository(db *database.Postgres) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

// Create persists a new verification token. Several valid tokens may
// coexist for the same user.
func (r *verificationTokenRepository) Create(ctx context.Context, token *domain.EmailVerificationToken) error {
	query := `
		INSERT INTO email_verification_tokens (token, site_id, user_id, expires_at, created_at)
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
			return fmt.Errorf("verification token already exists: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	return nil
}

// GetByToken retrieves a verification token without consuming it.
func (r *verificationTokenRepository) GetByToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error) {
	query := `
		SELECT token, site_id, user_id, expires_at, created_at
		FROM email_verification_tokens
		WHERE token = $1
	`

	t := &domain.EmailVerificationToken{}
	err := r.db.DB.QueryRowContext(ctx, query, token).Scan(
		&t.Token,
		&t.SiteID,
		&t.UserID,
		&t.ExpiresAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get verification token: %w: %v", ErrMalformedRow, err)
	}

	return t, nil
}

// Consume deletes the token in a single conditional statement, so two
// concurrent consumers cannot both succeed.
func (r *verificationTokenRepository) Consume(ctx context.Context, token string, now int64) (int64, error) {
	query := `
		DELETE FROM email_verification_tokens
		WHERE token = $1 AND expires_at >= $2
		RETURNING user_id
	`

	var userID int64
	err := r.db.DB.QueryRowContext(ctx, query, token, now).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("verification token not found: %w", ErrNotFound)
		}
		return 0, fmt.Errorf("failed to consume verification token: %w", err)
	}

	return userID, nil
}

// DeleteExpired removes all verification tokens past their expiry.
func (r *verificationTokenRepository) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM email_verification_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired verification tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

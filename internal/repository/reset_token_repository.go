package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/pkg/database"
)

// resetTokenRepository implements ResetTokenRepository.
type resetTokenRepository struct {
	db *database.Postgres
}

// NewResetTokenRepository creates a new password reset token repository.
func NewResetTokenRepository(db *database.Postgres) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Create persists a new password reset token.
func (r *resetTokenRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (token, site_id, user_id, expires_at, created_at, used)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		token.Token,
		token.SiteID,
		token.UserID,
		token.ExpiresAt,
		token.CreatedAt,
		token.Used,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reset token already exists: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	return nil
}

// Consume flags the token used instead of deleting it, preserving a trail
// of reset attempts. The conditional update makes double consumption
// impossible even under concurrent calls.
func (r *resetTokenRepository) Consume(ctx context.Context, token string, now int64) (int64, error) {
	query := `
		UPDATE password_reset_tokens
		SET used = TRUE
		WHERE token = $1 AND NOT used AND expires_at >= $2
		RETURNING user_id
	`

	var userID int64
	err := r.db.DB.QueryRowContext(ctx, query, token, now).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("reset token not found: %w", ErrNotFound)
		}
		return 0, fmt.Errorf("failed to consume reset token: %w", err)
	}

	return userID, nil
}

// DeleteExpired removes all reset tokens past their expiry, used or not.
func (r *resetTokenRepository) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/pkg/database"
)

// emailChangeRepository implements EmailChangeRepository.
type emailChangeRepository struct {
	db *database.Postgres
}

// NewEmailChangeRepository creates a new email change request repository.
func NewEmailChangeRepository(db *database.Postgres) EmailChangeRepository {
	return &emailChangeRepository{db: db}
}

// Create persists a new email change request.
func (r *emailChangeRepository) Create(ctx context.Context, req *domain.EmailChangeRequest) error {
	query := `
		INSERT INTO email_change_requests (token, site_id, user_id, new_email, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		req.Token,
		req.SiteID,
		req.UserID,
		req.NewEmail,
		req.ExpiresAt,
		req.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email change token already exists: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create email change request: %w", err)
	}

	return nil
}

// Confirm consumes the request and rewrites the user's email inside one
// transaction. If another user claimed the address since the request was
// made, the unique index on (site_id, email) fires, the transaction rolls
// back with the token unconsumed and the caller gets ErrDuplicateEmail.
func (r *emailChangeRepository) Confirm(ctx context.Context, token string, now int64) (*domain.EmailChangeRequest, error) {
	req := &domain.EmailChangeRequest{}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		consume := `
			DELETE FROM email_change_requests
			WHERE token = $1 AND expires_at >= $2
			RETURNING token, site_id, user_id, new_email, expires_at, created_at
		`

		err := tx.QueryRowContext(ctx, consume, token, now).Scan(
			&req.Token,
			&req.SiteID,
			&req.UserID,
			&req.NewEmail,
			&req.ExpiresAt,
			&req.CreatedAt,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("email change token not found: %w", ErrNotFound)
			}
			return fmt.Errorf("failed to consume email change token: %w", err)
		}

		apply := `UPDATE users SET email = $2, updated_at = $3 WHERE id = $1`

		result, err := tx.ExecContext(ctx, apply, req.UserID, req.NewEmail, now)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("email %s already in use for site %d: %w", req.NewEmail, req.SiteID, ErrDuplicateEmail)
			}
			return fmt.Errorf("failed to apply email change: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return fmt.Errorf("user with id %d not found: %w", req.UserID, ErrNotFound)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

// DeleteExpired removes all email change requests past their expiry.
func (r *emailChangeRepository) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM email_change_requests WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired email change requests: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/internal/repository"
	"github.com/prperemyshlev/siteauth/internal/utils"
)

// TokenTTLs holds the configured lifetime of each token kind.
type TokenTTLs struct {
	Auth              time.Duration
	EmailVerification time.Duration
	PasswordReset     time.Duration
	EmailChange       time.Duration
}

// tokenService implements TokenService on top of the token repositories.
// Expiry is enforced lazily at use time; the sweep exists only for storage
// hygiene.
type tokenService struct {
	authRepo         repository.AuthTokenRepository
	verificationRepo repository.VerificationTokenRepository
	resetRepo        repository.ResetTokenRepository
	changeRepo       repository.EmailChangeRepository
	ttls             TokenTTLs

	// nowFunc is swapped out in tests to exercise expiry behavior.
	nowFunc func() time.Time
}

// NewTokenService creates a new token lifecycle service.
func NewTokenService(
	authRepo repository.AuthTokenRepository,
	verificationRepo repository.VerificationTokenRepository,
	resetRepo repository.ResetTokenRepository,
	changeRepo repository.EmailChangeRepository,
	ttls TokenTTLs,
) TokenService {
	return &tokenService{
		authRepo:         authRepo,
		verificationRepo: verificationRepo,
		resetRepo:        resetRepo,
		changeRepo:       changeRepo,
		ttls:             ttls,
		nowFunc:          time.Now,
	}
}

func (s *tokenService) now() int64 {
	return s.nowFunc().Unix()
}

// CreateAuthToken mints a new session token.
func (s *tokenService) CreateAuthToken(ctx context.Context, siteID, userID int64) (*domain.AuthToken, error) {
	value, err := utils.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate auth token: %w", err)
	}

	now := s.now()
	token := &domain.AuthToken{
		Token:     value,
		SiteID:    siteID,
		UserID:    userID,
		ExpiresAt: now + int64(s.ttls.Auth.Seconds()),
		CreatedAt: now,
	}

	if err := s.authRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return token, nil
}

// ValidateAuthToken returns the session iff it exists and has not expired.
// Sessions are never consumed by validation.
func (s *tokenService) ValidateAuthToken(ctx context.Context, token string) (*domain.AuthToken, error) {
	t, err := s.authRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if t.ExpiresAt < s.now() {
		return nil, ErrInvalidToken
	}

	return t, nil
}

// InvalidateAuthToken deletes one session token.
func (s *tokenService) InvalidateAuthToken(ctx context.Context, token string) error {
	if err := s.authRepo.Delete(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

// InvalidateUserTokens deletes every session for a user. Called after any
// credential change for containment.
func (s *tokenService) InvalidateUserTokens(ctx context.Context, userID int64) (int64, error) {
	return s.authRepo.DeleteByUser(ctx, userID)
}

// CreateVerificationToken mints a new email verification token.
func (s *tokenService) CreateVerificationToken(ctx context.Context, siteID, userID int64) (*domain.EmailVerificationToken, error) {
	value, err := utils.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	now := s.now()
	token := &domain.EmailVerificationToken{
		Token:     value,
		SiteID:    siteID,
		UserID:    userID,
		ExpiresAt: now + int64(s.ttls.EmailVerification.Seconds()),
		CreatedAt: now,
	}

	if err := s.verificationRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return token, nil
}

// CheckVerificationToken looks a verification token up without consuming
// it, so a caller can decide whether a password still has to be collected
// before committing to verification.
func (s *tokenService) CheckVerificationToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error) {
	t, err := s.verificationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if t.ExpiresAt < s.now() {
		return nil, ErrInvalidToken
	}

	return t, nil
}

// ConsumeVerificationToken validates and deletes the token, returning the
// owning user id.
func (s *tokenService) ConsumeVerificationToken(ctx context.Context, token string) (int64, error) {
	userID, err := s.verificationRepo.Consume(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrInvalidToken
		}
		return 0, err
	}
	return userID, nil
}

// CreateResetToken mints a new password reset token.
func (s *tokenService) CreateResetToken(ctx context.Context, siteID, userID int64) (*domain.PasswordResetToken, error) {
	value, err := utils.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	now := s.now()
	token := &domain.PasswordResetToken{
		Token:     value,
		SiteID:    siteID,
		UserID:    userID,
		ExpiresAt: now + int64(s.ttls.PasswordReset.Seconds()),
		CreatedAt: now,
		Used:      false,
	}

	if err := s.resetRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return token, nil
}

// ConsumeResetToken validates the token and flags it used, returning the
// owning user id. A used token behaves exactly like a missing one.
func (s *tokenService) ConsumeResetToken(ctx context.Context, token string) (int64, error) {
	userID, err := s.resetRepo.Consume(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrInvalidToken
		}
		return 0, err
	}
	return userID, nil
}

// CreateEmailChangeRequest mints a token targeting a new, unverified email
// address.
func (s *tokenService) CreateEmailChangeRequest(ctx context.Context, siteID, userID int64, newEmail string) (*domain.EmailChangeRequest, error) {
	value, err := utils.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate email change token: %w", err)
	}

	now := s.now()
	req := &domain.EmailChangeRequest{
		Token:     value,
		SiteID:    siteID,
		UserID:    userID,
		NewEmail:  newEmail,
		ExpiresAt: now + int64(s.ttls.EmailChange.Seconds()),
		CreatedAt: now,
	}

	if err := s.changeRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// ConsumeEmailChangeRequest consumes the token and applies the new email to
// the owning user atomically. An address conflict at apply time surfaces as
// ErrEmailInUse with the token left unconsumed.
func (s *tokenService) ConsumeEmailChangeRequest(ctx context.Context, token string) (*domain.EmailChangeRequest, error) {
	req, err := s.changeRepo.Confirm(ctx, token, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrInvalidToken
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return req, nil
}

// SweepExpired deletes all expired rows of every kind. It is idempotent and
// safe to run concurrently; unexpired records are never touched.
func (s *tokenService) SweepExpired(ctx context.Context) (SweepResult, error) {
	now := s.now()
	var result SweepResult
	var err error

	if result.AuthTokens, err = s.authRepo.DeleteExpired(ctx, now); err != nil {
		return result, err
	}
	if result.VerificationTokens, err = s.verificationRepo.DeleteExpired(ctx, now); err != nil {
		return result, err
	}
	if result.ResetTokens, err = s.resetRepo.DeleteExpired(ctx, now); err != nil {
		return result, err
	}
	if result.EmailChangeRequests, err = s.changeRepo.DeleteExpired(ctx, now); err != nil {
		return result, err
	}

	return result, nil
}

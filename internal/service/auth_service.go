package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/internal/repository"
	"github.com/prperemyshlev/siteauth/internal/utils"
	"go.uber.org/zap"
)

// authService implements AuthService. It composes the hasher, the token
// lifecycle service and the repositories into the user-facing flows. All
// state lives in the store; the service holds no entity beyond one call.
type authService struct {
	userRepo   repository.UserRepository
	siteRepo   repository.SiteRepository
	tokens     TokenService
	notifier   Notifier
	logger     *zap.Logger
	bcryptCost int

	nowFunc func() time.Time
}

// NewAuthService creates a new credential orchestration service.
func NewAuthService(
	userRepo repository.UserRepository,
	siteRepo repository.SiteRepository,
	tokens TokenService,
	notifier Notifier,
	logger *zap.Logger,
	bcryptCost int,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		siteRepo:   siteRepo,
		tokens:     tokens,
		notifier:   notifier,
		logger:     logger,
		bcryptCost: bcryptCost,
		nowFunc:    time.Now,
	}
}

func (s *authService) now() int64 {
	return s.nowFunc().Unix()
}

// Register creates a new, unverified user and kicks off email verification.
// A nil password is allowed for admin-provisioned accounts; those users set
// their password when they verify.
func (s *authService) Register(ctx context.Context, siteID int64, email string, password *string, role domain.Role) (*domain.User, error) {
	email = utils.SanitizeEmail(email)

	if _, err := s.siteRepo.GetByID(ctx, siteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}

	var passwordHash *string
	if password != nil {
		hash, err := utils.HashPassword(*password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = &hash
	}

	now := s.now()
	user := &domain.User{
		SiteID:       siteID,
		Email:        email,
		PasswordHash: passwordHash,
		IsVerified:   false,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index on (site_id, email) decides races; no pre-check
	// could.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	s.sendVerification(ctx, user)

	return user, nil
}

// sendVerification mints a verification token and emails it, best-effort.
// Failures are logged and swallowed: a broken mail subsystem must never
// block registration.
func (s *authService) sendVerification(ctx context.Context, user *domain.User) {
	token, err := s.tokens.CreateVerificationToken(ctx, user.SiteID, user.ID)
	if err != nil {
		s.logger.Error("failed to create verification token",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return
	}

	site, err := s.siteRepo.GetByID(ctx, user.SiteID)
	if err != nil {
		s.logger.Error("failed to load site for verification email",
			zap.Int64("site_id", user.SiteID),
			zap.Error(err),
		)
		return
	}

	if err := s.notifier.SendVerificationEmail(ctx, site, user.Email, token.Token); err != nil {
		s.logger.Error("failed to send verification email",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}
}

// Login authenticates a user and mints a session token. Other sessions
// stay valid. Accounts without a password (admin-provisioned, unverified)
// fail with the same error as a wrong password.
func (s *authService) Login(ctx context.Context, siteID int64, email, password string) (*domain.AuthToken, error) {
	user, err := s.userRepo.GetByEmail(ctx, siteID, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	return s.tokens.CreateAuthToken(ctx, siteID, user.ID)
}

// Logout invalidates exactly one session token.
func (s *authService) Logout(ctx context.Context, token string) error {
	return s.tokens.InvalidateAuthToken(ctx, token)
}

// CheckVerificationToken reports whether the pending verification still
// needs a password, without consuming the token.
func (s *authService) CheckVerificationToken(ctx context.Context, token string) (*VerificationTokenStatus, error) {
	t, err := s.tokens.CheckVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &VerificationTokenStatus{
		PasswordRequired: user.PasswordHash == nil,
		Email:            user.Email,
	}, nil
}

// VerifyEmail consumes a verification token and marks the user verified.
// Accounts without a password must supply one here; it becomes their
// credential. Returns the user and the site's post-verification redirect.
func (s *authService) VerifyEmail(ctx context.Context, token, password string) (*VerificationResult, error) {
	userID, err := s.tokens.ConsumeVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		hash, err := utils.HashPassword(password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = &hash
	}

	user.IsVerified = true
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	site, err := s.siteRepo.GetByID(ctx, user.SiteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}

	return &VerificationResult{
		User:        user,
		RedirectURL: site.RedirectURL(),
	}, nil
}

// ChangePassword verifies the old password, sets the new one and revokes
// every session the user holds, containing any leaked credential.
func (s *authService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return nil, ErrIncorrectPassword
	}

	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = &hash
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if _, err := s.tokens.InvalidateUserTokens(ctx, userID); err != nil {
		return nil, err
	}

	return user, nil
}

// RequestPasswordReset mints a reset token and emails it. When the email is
// unknown it succeeds silently: the response must not reveal whether an
// account exists.
func (s *authService) RequestPasswordReset(ctx context.Context, siteID int64, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, siteID, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := s.tokens.CreateResetToken(ctx, siteID, user.ID)
	if err != nil {
		return err
	}

	site, err := s.siteRepo.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSiteNotFound
		}
		return err
	}

	if err := s.notifier.SendPasswordResetEmail(ctx, site, user.Email, token.Token); err != nil {
		s.logger.Error("failed to send password reset email",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	return nil
}

// ResetPassword consumes a reset token, sets the new password and revokes
// every session the user holds.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) (*domain.User, error) {
	userID, err := s.tokens.ConsumeResetToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = &hash
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if _, err := s.tokens.InvalidateUserTokens(ctx, userID); err != nil {
		return nil, err
	}

	return user, nil
}

// RequestEmailChange mints an email change token and mails it to the NEW
// address; proving ownership of the target address is the whole point.
func (s *authService) RequestEmailChange(ctx context.Context, userID int64, newEmail string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	newEmail = utils.SanitizeEmail(newEmail)

	if _, err := s.userRepo.GetByEmail(ctx, user.SiteID, newEmail); err == nil {
		return ErrEmailInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	req, err := s.tokens.CreateEmailChangeRequest(ctx, user.SiteID, userID, newEmail)
	if err != nil {
		return err
	}

	site, err := s.siteRepo.GetByID(ctx, user.SiteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSiteNotFound
		}
		return err
	}

	if err := s.notifier.SendEmailChangeEmail(ctx, site, newEmail, req.Token); err != nil {
		s.logger.Error("failed to send email change confirmation",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	return nil
}

// ConfirmEmailChange consumes the token and applies the new address. The
// uniqueness re-check happens inside the consuming transaction, so the
// losing side of a race gets ErrEmailInUse instead of a broken invariant.
func (s *authService) ConfirmEmailChange(ctx context.Context, token string) (*domain.User, error) {
	req, err := s.tokens.ConsumeEmailChangeRequest(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by id.
func (s *authService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByToken resolves a session token to its owning user.
func (s *authService) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	t, err := s.tokens.ValidateAuthToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, t.UserID)
}

// ResendVerification mints a fresh verification token for an unverified
// user and emails it. Unlike the registration-time send this is not
// best-effort: resending IS the operation, so a send failure is returned.
func (s *authService) ResendVerification(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	token, err := s.tokens.CreateVerificationToken(ctx, user.SiteID, user.ID)
	if err != nil {
		return err
	}

	site, err := s.siteRepo.GetByID(ctx, user.SiteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSiteNotFound
		}
		return err
	}

	if err := s.notifier.SendVerificationEmail(ctx, site, user.Email, token.Token); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

// ListUsers retrieves all users of a site.
func (s *authService) ListUsers(ctx context.Context, siteID int64) ([]*domain.User, error) {
	return s.userRepo.ListBySite(ctx, siteID)
}

// DeleteUser removes a user and all their tokens.
func (s *authService) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

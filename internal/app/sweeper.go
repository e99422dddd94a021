package app

import (
	"context"
	"time"

	"github.com/prperemyshlev/siteauth/internal/service"
	"go.uber.org/zap"
)

// Sweeper periodically removes expired token rows. Expiry is already
// enforced at use time, so a missed sweep never extends a token's life.
type Sweeper struct {
	tokens   service.TokenService
	interval time.Duration
	logger   *zap.Logger
}

// NewSweeper creates a new expired-token sweeper.
func NewSweeper(tokens service.TokenService, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		tokens:   tokens,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Sweep runs a single pass and returns the result. Used by cmd/sweeper.
func (s *Sweeper) Sweep(ctx context.Context) (service.SweepResult, error) {
	return s.tokens.SweepExpired(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) {
	result, err := s.tokens.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("Token sweep failed", zap.Error(err))
		return
	}

	if result.Total() > 0 {
		s.logger.Info("Swept expired tokens",
			zap.Int64("auth_tokens", result.AuthTokens),
			zap.Int64("verification_tokens", result.VerificationTokens),
			zap.Int64("reset_tokens", result.ResetTokens),
			zap.Int64("email_change_requests", result.EmailChangeRequests),
		)
	}
}

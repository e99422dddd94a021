// Command sweeper runs a single expired-token sweep and exits. Meant for
// cron setups where the in-process sweep loop is disabled.
package main

import (
	"context"
	"log"

	"github.com/prperemyshlev/siteauth/internal/config"
	"github.com/prperemyshlev/siteauth/internal/repository"
	"github.com/prperemyshlev/siteauth/internal/service"
	"github.com/prperemyshlev/siteauth/pkg/database"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pg, err := database.NewPostgres(cfg.Postgres.DSN(), database.PoolOptions{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	repos := repository.NewRepositories(pg)

	tokens := service.NewTokenService(
		repos.AuthToken,
		repos.Verification,
		repos.Reset,
		repos.EmailChange,
		service.TokenTTLs{
			Auth:              cfg.Tokens.AuthTTL.Duration,
			EmailVerification: cfg.Tokens.EmailVerificationTTL.Duration,
			PasswordReset:     cfg.Tokens.PasswordResetTTL.Duration,
			EmailChange:       cfg.Tokens.EmailChangeTTL.Duration,
		},
	)

	result, err := tokens.SweepExpired(ctx)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	log.Printf("Swept %d expired rows (auth=%d verification=%d reset=%d email_change=%d)",
		result.Total(), result.AuthTokens, result.VerificationTokens, result.ResetTokens, result.EmailChangeRequests)
}

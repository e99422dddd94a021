package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/siteauth/internal/config"
	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/internal/email"
	"github.com/prperemyshlev/siteauth/internal/handler"
	"github.com/prperemyshlev/siteauth/internal/repository"
	"github.com/prperemyshlev/siteauth/internal/service"
	"github.com/prperemyshlev/siteauth/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra   Infrastructure
	config  *config.Config
	router  *gin.Engine
	server  *http.Server
	sweeper *Sweeper
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	tokenService := service.NewTokenService(
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

	notifier := email.NewNotifier(newSender(cfg, infra.Logger()))
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos.User,
		repos.Site,
		tokenService,
		notifier,
		infra.Logger(),
		cfg.Security.BCryptCost,
	)
	siteService := service.NewSiteService(repos.Site)

	authHandler := handler.NewAuthHandler(authService)
	siteHandler := handler.NewSiteHandler(siteService)
	adminHandler := handler.NewAdminHandler(authService)

	router := gin.Default()
	router.Use(otelgin.Middleware("siteauth"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, siteHandler, adminHandler, tokenService, authService, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	var sweeper *Sweeper
	if cfg.Sweep.Enabled {
		sweeper = NewSweeper(tokenService, cfg.Sweep.Interval.Duration, infra.Logger())
	}

	return &App{
		infra:   infra,
		config:  cfg,
		router:  router,
		server:  srv,
		sweeper: sweeper,
	}
}

// newSender picks the outbound email transport from configuration.
func newSender(cfg *config.Config, logger *zap.Logger) email.Sender {
	if cfg.Email.Provider == "sendgrid" {
		client := &http.Client{Timeout: 10 * time.Second}
		return email.NewSendGridSender(client, cfg.Email.SendGridAPIKey)
	}
	return email.NewLogSender(logger)
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	siteHandler *handler.SiteHandler,
	adminHandler *handler.AdminHandler,
	tokenService service.TokenService,
	authService service.AuthService,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	authRequired := handler.AuthMiddleware(tokenService)
	masterKey := handler.MasterKeyMiddleware(cfg.Security.MasterAPIKey)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/check-verification-token", authHandler.CheckVerificationToken)
			auth.POST("/verify-email", authHandler.VerifyEmail)
			auth.POST("/request-password-reset", authHandler.RequestPasswordReset)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.POST("/confirm-email-change", authHandler.ConfirmEmailChange)

			auth.GET("/me", authRequired, authHandler.GetMe)
			auth.POST("/change-password", authRequired, authHandler.ChangePassword)
			auth.POST("/request-email-change", authRequired, authHandler.RequestEmailChange)
		}

		// Site admins can inspect their own tenant's users.
		api.GET("/users", authRequired, handler.RequireRole(authService, domain.RoleAdmin), authHandler.ListUsers)

		sites := api.Group("/sites", masterKey)
		{
			sites.POST("", siteHandler.CreateSite)
			sites.GET("", siteHandler.ListSites)
			sites.GET("/:id", siteHandler.GetSite)
			sites.PUT("/:id", siteHandler.UpdateSite)
		}

		admin := api.Group("/admin", masterKey)
		{
			admin.POST("/register", adminHandler.RegisterUser)
			admin.GET("/sites/:id/users", adminHandler.ListSiteUsers)
			admin.POST("/users/:id/resend-verification", adminHandler.ResendVerification)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	if a.sweeper != nil {
		go a.sweeper.Run(ctx)
	}

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}

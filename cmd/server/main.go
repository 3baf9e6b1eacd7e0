package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/contactdir/contact-server-go/internal/auth"
	"github.com/contactdir/contact-server-go/internal/config"
	"github.com/contactdir/contact-server-go/internal/database"
	"github.com/contactdir/contact-server-go/internal/handler"
	"github.com/contactdir/contact-server-go/internal/jobs"
	"github.com/contactdir/contact-server-go/internal/middleware"
	"github.com/contactdir/contact-server-go/internal/notify"
	"github.com/contactdir/contact-server-go/internal/redis"
	"github.com/contactdir/contact-server-go/internal/repository"
	"github.com/contactdir/contact-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := cfg.IsProduction()
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	if cfg.MigrateOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), config.MigrationTimeout)
		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		cancel()
		log.Info().Msg("database migrated")
	}

	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		limiter = middleware.NewRedisRateLimiter(redisClient.Client)
		log.Info().Msg("redis connected")
	} else {
		limiter = middleware.NewLoginRateLimiter()
		log.Info().Msg("redis not configured, using in-memory rate limiter")
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token issuer")
	}
	hasher := auth.NewBcryptHasher(config.PasswordHashCost)

	var notifier notify.Notifier
	if cfg.SMTPEnabled() {
		notifier = notify.NewSMTPNotifier(notify.SMTPSettings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			TLSMode:  cfg.SMTPTLSMode,
		})
	} else {
		notifier = notify.NewLogNotifier()
	}

	accountRepo := repository.NewAccountRepository(db.DB)
	contactRepo := repository.NewContactRepository(db.DB)

	authorizer := auth.NewAuthorizer(accountRepo)
	authService := service.NewAuthService(accountRepo, hasher, tokens, authorizer)
	resetService := service.NewPasswordResetService(accountRepo, hasher, notifier, cfg.ResetTokenTTL(), cfg.FrontendURL)
	contactService := service.NewContactService(contactRepo, authorizer)

	authRateLimit := middleware.NewRateLimitMiddleware(limiter, cfg.AuthRateLimitPerMin, config.AuthRateLimitWindow, "auth")
	resetRateLimit := middleware.NewRateLimitMiddleware(limiter, cfg.AuthRateLimitPerMin, config.AuthRateLimitWindow, "reset")

	r := handler.NewRouter(handler.RouterDeps{
		Auth:            handler.NewAuthHandler(authService),
		User:            handler.NewUserHandler(authService, resetService, !isProduction, resetRateLimit.Handler),
		Contact:         handler.NewContactHandler(contactService),
		Health:          handler.NewHealthHandler(db),
		Authenticator:   middleware.NewAuthenticator(tokens),
		AuthRateLimit:   authRateLimit.Handler,
		SecurityHeaders: middleware.NewSecurityHeadersMiddleware(isProduction),
		BodyLimit:       middleware.NewBodyLimitMiddleware(0),
	})

	cleanupJob := jobs.NewCleanupJob(resetService, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Environment).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

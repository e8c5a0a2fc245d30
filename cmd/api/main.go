// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/asmr-backend/internal/admin"
	"github.com/carterperez-dev/asmr-backend/internal/auth"
	"github.com/carterperez-dev/asmr-backend/internal/comment"
	"github.com/carterperez-dev/asmr-backend/internal/config"
	"github.com/carterperez-dev/asmr-backend/internal/content"
	"github.com/carterperez-dev/asmr-backend/internal/core"
	"github.com/carterperez-dev/asmr-backend/internal/coupon"
	"github.com/carterperez-dev/asmr-backend/internal/giftcard"
	"github.com/carterperez-dev/asmr-backend/internal/health"
	"github.com/carterperez-dev/asmr-backend/internal/media"
	"github.com/carterperez-dev/asmr-backend/internal/middleware"
	"github.com/carterperez-dev/asmr-backend/internal/server"
	"github.com/carterperez-dev/asmr-backend/internal/user"
	"github.com/carterperez-dev/asmr-backend/migrations"
)

const (
	drainDelay = 5 * time.Second
)

type options struct {
	configPath  string
	migrateOnly bool
	genKeys     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	flag.BoolVar(&opts.migrateOnly, "migrate", false, "apply database migrations and exit")
	flag.BoolVar(&opts.genKeys, "genkeys", false, "generate the ES256 signing key pair and exit")
	flag.Parse()

	if err := run(opts); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(opts options) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	if opts.genKeys {
		if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
			return err
		}
		logger.Info("signing keys written",
			"private_key", cfg.JWT.PrivateKeyPath,
			"public_key", cfg.JWT.PublicKeyPath,
		)
		return nil
	}

	if opts.migrateOnly || cfg.Database.MigrateOnStart {
		if err := core.RunMigrations(migrations.FS, cfg.Database.URL); err != nil {
			return err
		}
		if opts.migrateOnly {
			return nil
		}
	}

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	signer := media.NewR2Signer(cfg.Storage)
	if !signer.Configured() {
		logger.Warn("object storage not configured, audio URLs will be unavailable")
	}

	userSvc := user.NewService(user.NewRepository(db.DB))
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(jwtManager, userSvc, redis.Client)
	userSvc.WithSessionRevoker(authSvc)
	cookies := auth.NewSessionCookies(cfg.Cookie, cfg.IsProduction())
	authHandler := auth.NewHandler(authSvc, cookies)
	sessions := middleware.NewSessionAuth(authSvc, cookies.Name())

	contentSvc := content.NewService(content.NewRepository(db.DB), userSvc)
	contentHandler := content.NewHandler(contentSvc)
	commentHandler := comment.NewHandler(
		comment.NewService(comment.NewRepository(db.DB), contentSvc),
	)

	couponHandler := coupon.NewHandler(
		coupon.NewService(coupon.NewRepository(db.DB)),
	)
	giftCardHandler := giftcard.NewHandler(
		giftcard.NewService(giftcard.NewRepository(db.DB), cfg.GiftCards.AllowRepeat),
	)
	mediaHandler := media.NewHandler(
		media.NewService(contentSvc, userSvc, signer, media.NewRepository(db.DB)).
			WithURLExpiry(cfg.Storage.URLExpiry),
	)

	checks := []health.Check{
		{Name: "database", Checker: db},
		{Name: "redis", Checker: redis},
	}
	if signer.Configured() {
		checks = append(checks, health.Check{Name: "storage", Checker: signer})
	}
	healthHandler := health.NewHandler(checks...)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Ledger:     admin.NewRepository(db.DB),
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	roleLimiter := middleware.RoleRateLimiter(redis.Client, middleware.DefaultRoleLimits)
	authenticator := func(next http.Handler) http.Handler {
		return sessions.Authenticator(roleLimiter(next))
	}
	spendLimiter := middleware.SpendRateLimiter(
		redis.Client,
		cfg.RateLimit.SpendPerHour,
		cfg.RateLimit.SpendBurst,
	)
	spendGuard := func(next http.Handler) http.Handler {
		return authenticator(spendLimiter(next))
	}
	optionalAuth := sessions.OptionalAuth
	couponGuard := func(next http.Handler) http.Handler {
		return optionalAuth(
			middleware.RequireAdminOrServerToken(cfg.ServerAuth.Header, cfg.ServerAuth.Token)(next),
		)
	}

	authHandler.RegisterRoutes(router, authenticator, optionalAuth)
	contentHandler.RegisterRoutes(router, spendGuard, optionalAuth,
		func(r chi.Router) { commentHandler.RegisterRoutes(r, authenticator) },
	)
	userHandler.RegisterRoutes(router, authenticator)
	couponHandler.RegisterRoutes(router, spendGuard, couponGuard)
	giftCardHandler.RegisterRoutes(router, spendGuard)
	mediaHandler.RegisterRoutes(router, authenticator)

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireAdmin)
		adminHandler.RegisterRoutes(r)
		userHandler.RegisterAdminRoutes(r)
		commentHandler.RegisterAdminRoutes(r)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/geovoyage/backend/internal/auth"
	"github.com/geovoyage/backend/internal/booking"
	"github.com/geovoyage/backend/internal/catalog"
	"github.com/geovoyage/backend/internal/config"
	"github.com/geovoyage/backend/internal/contact"
	"github.com/geovoyage/backend/internal/faq"
	"github.com/geovoyage/backend/internal/health"
	"github.com/geovoyage/backend/internal/logger"
	"github.com/geovoyage/backend/internal/metrics"
	"github.com/geovoyage/backend/internal/middleware"
	"github.com/geovoyage/backend/internal/repository"
	"github.com/geovoyage/backend/internal/sanitizer"
	"github.com/geovoyage/backend/internal/storage"
)

var version = "dev"

func main() {
	cfg := config.Load()

	appLogger := logger.New(logger.DefaultConfig())

	// Database connections: pgxpool for most repositories, a sqlx handle
	// over the same pool for the booking repository
	dbPool, err := setupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	sqlxDB := sqlx.NewDb(stdlib.OpenDBFromPool(dbPool), "pgx")
	defer sqlxDB.Close()

	// Repositories
	accountRepo := repository.NewAccountRepository(dbPool)
	sessionRepo := repository.NewSessionRepository(dbPool)
	resetTokenRepo := repository.NewPasswordResetTokenRepository(dbPool)
	verifyTokenRepo := repository.NewEmailVerificationTokenRepository(dbPool)
	bookingRepo := repository.NewBookingRepo(sqlxDB)
	packageRepo := repository.NewTourPackageRepository(dbPool)
	placeRepo := repository.NewPlaceRepository(dbPool)
	dishRepo := repository.NewDishRepository(dbPool)
	faqRepo := repository.NewFAQRepository(dbPool)
	contactRepo := repository.NewContactRepository(dbPool)

	// Storage is optional, nil when no endpoint is configured
	storageService, err := storage.NewStorageService(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if storageService.Enabled() {
		appLogger.Info("Image storage enabled", "bucket", storageService.Bucket())
	} else {
		appLogger.Info("Image storage disabled")
	}

	san := sanitizer.New()

	// Services
	sessionService := auth.NewSessionService(sessionRepo, cfg.Auth.SessionTTL)
	passwordValidator := auth.NewPasswordValidator(cfg.Auth.BcryptCost)
	authService := auth.NewAuthService(
		accountRepo,
		resetTokenRepo,
		verifyTokenRepo,
		sessionService,
		passwordValidator,
		cfg.Auth.ResetTokenTTL,
		cfg.Auth.VerifyTokenTTL,
		appLogger,
	)
	bookingService := booking.NewService(bookingRepo, san, appLogger)
	catalogService := catalog.NewService(packageRepo, placeRepo, dishRepo, storageService, san, appLogger)
	faqService := faq.NewService(faqRepo, san, appLogger)
	contactService := contact.NewService(contactRepo, san, appLogger)

	// Handlers
	authHandler := auth.NewAuthHandler(authService)
	bookingHandler := booking.NewHandler(bookingService)
	catalogHandler := catalog.NewHandler(catalogService)
	faqHandler := faq.NewHandler(faqService)
	contactHandler := contact.NewHandler(contactService)
	uploadHandler := storage.NewUploadHandler(storageService)
	healthHandler := health.NewHandler(health.Config{
		DBPool:  dbPool,
		Version: version,
	})

	authMiddleware := middleware.NewAuthMiddleware(sessionService)

	// Database pool metrics
	dbStats := metrics.NewDBStatsCollector(dbPool, sqlxDB.DB)
	dbStats.Start(15 * time.Second)
	defer dbStats.Stop()

	// Expired sessions and account tokens are swept periodically so the
	// tables do not grow without bound
	cleanupStop := make(chan struct{})
	defer close(cleanupStop)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if n, err := sessionService.PurgeExpired(ctx); err != nil {
					appLogger.Warn("Expired session cleanup failed", "error", err)
				} else if n > 0 {
					appLogger.Info("Expired sessions removed", "count", n)
				}
				if n, err := authService.PurgeExpiredTokens(ctx); err != nil {
					appLogger.Warn("Expired token cleanup failed", "error", err)
				} else if n > 0 {
					appLogger.Info("Expired account tokens removed", "count", n)
				}
				cancel()
			case <-cleanupStop:
				return
			}
		}
	}()

	// Router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(appLogger))
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Get("/health/live", healthHandler.Liveness)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		auth.RegisterRoutes(r, authHandler, authMiddleware.Authenticate)
		booking.RegisterRoutes(r, bookingHandler, authMiddleware.Authenticate, authMiddleware.AuthenticateOptional)
		catalog.RegisterRoutes(r, catalogHandler, authMiddleware.Authenticate)
		faq.RegisterRoutes(r, faqHandler, authMiddleware.Authenticate)
		contact.RegisterRoutes(r, contactHandler, authMiddleware.Authenticate)
		storage.RegisterRoutes(r, uploadHandler, authMiddleware.Authenticate)
	})

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	healthHandler.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited")
}

// setupDatabase creates and configures the database connection pool
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

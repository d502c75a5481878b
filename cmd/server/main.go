package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/config"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/database"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/handler"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/logger"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/middleware"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/ratelimit"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/repository"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/router"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", "0.1.0").Msg("starting attendance server")

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to PostgreSQL")

	// Connect to Redis
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("connected to Redis")

	// Initialize repositories
	tokenRepo := repository.NewTokenRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	fingerprintRepo := repository.NewFingerprintRepository(db)
	policyRepo := repository.NewPolicyRepository(db)

	// Initialize services
	tokenSvc := service.NewTokenService(tokenRepo, cfg.Token, log)
	policySvc := service.NewPolicyService(policyRepo, cfg.Policy, log)
	sessionSvc := service.NewSessionService(sessionRepo, log)
	checkinSvc := service.NewCheckinService(tokenSvc, sessionRepo, studentRepo, attendanceRepo, fingerprintRepo, policySvc, log)

	// Issuance gate: one instance, owned here, passed by injection.
	issuanceGate := ratelimit.NewSlidingWindow(cfg.Issuance.MaxRequests, cfg.Issuance.Window)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			issuanceGate.Prune()
		}
	}()

	// Initialize handlers and middleware
	h := handler.New(db, rdb, log, cfg, issuanceGate, tokenSvc, checkinSvc, sessionSvc, policySvc, studentRepo, attendanceRepo, fingerprintRepo)
	mw := middleware.New(rdb, log, cfg)

	// Set up router
	r := router.New(h, mw, middleware.RateLimitConfig{
		Limit:  cfg.AdminAPI.RateLimit,
		Window: cfg.AdminAPI.RateWindow,
		KeyFn:  middleware.IPKey,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

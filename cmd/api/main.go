package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nps-merchant-gateway/config"
	"nps-merchant-gateway/internal/adapter/gateway/nps"
	httpHandler "nps-merchant-gateway/internal/adapter/http/handler"
	pgStorage "nps-merchant-gateway/internal/adapter/storage/postgres"
	redisStorage "nps-merchant-gateway/internal/adapter/storage/redis"
	"nps-merchant-gateway/internal/core/ports"
	"nps-merchant-gateway/internal/service"
	"nps-merchant-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := ""
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("gateway", cfg.Gateway.BaseURL).
		Msg("Starting NPS merchant gateway")

	ctx := context.Background()

	// PostgreSQL
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}
	log.Info().Msg("PostgreSQL connected")

	// Redis
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	credentialRepo := pgStorage.NewCredentialRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	credentialCache := redisStorage.NewCredentialCache(rdb)
	callbackLedger := redisStorage.NewCallbackLedger(rdb)

	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()

	credentialSvc := service.NewCredentialService(
		credentialRepo, credentialCache, encSvc, cfg.Cache.CredentialTTL, logger.Component(log, "credential_service"))
	npsSvc := service.NewNPSService(
		credentialSvc,
		sigSvc,
		nps.NewClient(cfg.Gateway, log),
		service.NewResponseNormalizer(),
		callbackLedger,
		cfg.Cache.CallbackTTL,
		logger.Component(log, "nps_service"),
	)
	auditSvc := service.NewAuditService(auditRepo, logger.Component(log, "audit"))

	deps := httpHandler.RouterDeps{
		CredentialSvc:  credentialSvc,
		PaymentSvc:     npsSvc,
		AuditSvc:       auditSvc,
		HealthCheckers: []ports.HealthChecker{pgStorage.NewHealthCheck(pool), redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	}

	if cfg.JWT.Secret != "" {
		tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
		deps.TokenSvc = tokenSvc
		deps.AuthSvc = service.NewAuthService(cfg.Admin.Username, cfg.Admin.PasswordHash, hashSvc, tokenSvc)
	} else {
		log.Warn().Msg("jwt.secret is empty: credential routes are unauthenticated (debug mode only)")
	}

	if cfg.RateLimit.Enabled {
		deps.RateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	router := httpHandler.SetupRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Outbound gateway calls may take up to the configured timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

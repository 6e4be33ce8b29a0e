package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lepista-tech/mycelium/api/handlers"
	"github.com/lepista-tech/mycelium/api/routes"
	"github.com/lepista-tech/mycelium/auth/identityprovider"
	"github.com/lepista-tech/mycelium/auth/token"
	"github.com/lepista-tech/mycelium/config"
	"github.com/lepista-tech/mycelium/config/loader"
	"github.com/lepista-tech/mycelium/config/validator"
	"github.com/lepista-tech/mycelium/gateway/health"
	"github.com/lepista-tech/mycelium/gateway/registry"
	"github.com/lepista-tech/mycelium/gateway/router"
	"github.com/lepista-tech/mycelium/identity/account"
	"github.com/lepista-tech/mycelium/identity/invitation"
	"github.com/lepista-tech/mycelium/identity/profile"
	"github.com/lepista-tech/mycelium/identity/ratelimit"
	"github.com/lepista-tech/mycelium/identity/role"
	"github.com/lepista-tech/mycelium/identity/tenant"
	"github.com/lepista-tech/mycelium/identity/user"
	"github.com/lepista-tech/mycelium/identity/webhook"
	"github.com/lepista-tech/mycelium/internal/cache"
	"github.com/lepista-tech/mycelium/internal/logger"
	"github.com/lepista-tech/mycelium/internal/metrics"
	"github.com/lepista-tech/mycelium/observability/security_events"
	"github.com/lepista-tech/mycelium/security/encryption"
	"github.com/lepista-tech/mycelium/storage/postgres"
	"github.com/lepista-tech/mycelium/webhookdispatch"
)

// gatewayServiceName is this process's own identity, injected as
// x-mycelium-service on every forwarded request for downstream loop
// detection (spec.md §6).
const gatewayServiceName = "mycelium-gateway"

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := loader.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := validator.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(
		cfg.Logging.Level,
		cfg.Logging.Format,
		cfg.Logging.Output,
		cfg.Logging.FilePath,
		cfg.Logging.MaxSize,
		cfg.Logging.MaxBackups,
		cfg.Logging.MaxAge,
	); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Logger.Info("Starting mycelium gateway",
		zap.String("version", "0.1.0"),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Logger.Info("Database connection established")

	redisClient, err := postgres.NewRedisConnection(&cfg.Redis)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Logger.Info("Redis connection established")

	cacheClient := cache.NewCache(redisClient)

	// Repositories
	accountRepo := postgres.NewAccountRepository(db)
	tenantRepo := postgres.NewTenantRepository(db)
	licensedResourceRepo := postgres.NewLicensedResourceRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	webhookRepo := postgres.NewWebhookRepository(db)
	artifactRepo := postgres.NewArtifactRepository(db)
	hookResponseRepo := postgres.NewHookResponseRepository(db)
	securityEventRepo := postgres.NewSecurityEventRepository(db)
	userRepo := postgres.NewUserRepository(db)
	guestRoleRepo := postgres.NewRoleRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)

	// Encryption backs both webhook signing secrets and anything else at
	// rest under AES-256-GCM.
	encryptionKey := []byte(cfg.Security.EncryptionKey)
	if len(encryptionKey) != 32 {
		logger.Logger.Fatal("Encryption key must be exactly 32 bytes (AES-256)")
	}
	encryptor, err := encryption.NewEncryptor(encryptionKey)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize encryptor", zap.Error(err))
	}

	// Profile Evaluator (spec.md §4.1): baseline + licensed-resource
	// fetchers backed by the account/tenant/licensed-resource repositories.
	baselines := account.NewBaselineFetcher(accountRepo, tenantRepo)
	licenses := account.NewLicenseFetcher(licensedResourceRepo)
	evaluator := profile.NewEvaluator(baselines, licenses)

	// Token/Connection-String Subsystem (spec.md §4.4).
	tokenService, err := token.NewService(&cfg.Security)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize token service", zap.Error(err))
	}
	connStringService := token.NewConnectionStringService(tokenRepo)

	// Inbound auth chain: internal JWTs, every configured external OIDC
	// issuer, then connection strings — tried in that order by
	// identityprovider.Chain.Authenticate.
	jwksCache := identityprovider.NewJWKSCache(cacheClient, &http.Client{Timeout: 10 * time.Second})
	providers := []identityprovider.Provider{identityprovider.NewInternalJWTProvider(tokenService)}
	for _, issuer := range cfg.Security.OIDC {
		oidcProvider, err := identityprovider.NewOIDCProvider(context.Background(), issuer, jwksCache, &http.Client{Timeout: 10 * time.Second})
		if err != nil {
			logger.Logger.Warn("Skipping OIDC issuer: discovery failed",
				zap.String("issuer", issuer.IssuerURL), zap.Error(err))
			continue
		}
		providers = append(providers, oidcProvider)
	}
	providers = append(providers, identityprovider.NewConnectionStringProvider(connStringService))
	authChain := identityprovider.NewChain(logger.Logger, providers...)

	// Rate limiting (spec.md AMBIENT STACK): Redis-backed token buckets
	// shared by the admin API and the Gateway Router.
	limiter := ratelimit.NewRedisLimiter(redisClient, ratelimit.DefaultConfig())

	// Security-event audit trail: batched async writes to Postgres.
	eventLogger := security_events.NewAsyncLogger(securityEventRepo, logger.Logger, 50, 5*time.Second)
	defer eventLogger.Close()

	// Route/Service Registry + Health Dispatcher (spec.md §4.5, §4.6).
	reg := registry.New()
	if err := reg.LoadFile(cfg.Gateway.RegistryPath); err != nil {
		logger.Logger.Fatal("Failed to load registry", zap.Error(err))
	}
	healthDispatcher := health.NewDispatcher(reg, cfg.Gateway, logger.Logger)

	// Webhook subscriber CRUD + the Webhook Dispatcher's delivery worker
	// pool (spec.md §4.3).
	webhookService := webhook.NewService(webhookRepo, encryptor)
	dispatcher := webhookdispatch.NewDispatcher(artifactRepo, hookResponseRepo, webhookService, cfg.Webhook, logger.Logger)

	// Gateway Router (spec.md §4.2): the catch-all proxy.
	gatewayRouter := router.NewRouter(reg, authChain, evaluator, connStringService, cfg.Gateway, gatewayServiceName, logger.Logger)

	webhookHandler := handlers.NewWebhookHandler(webhookService, artifactRepo, hookResponseRepo)
	registryHandler := handlers.NewRegistryHandler(reg, cfg.Gateway)

	// Tenant/User/GuestRole/Invitation admin surfaces (spec.md §3), thin
	// handlers over the identity domain services.
	tenantService := tenant.NewService(tenantRepo)
	userService := user.NewService(userRepo)
	guestRoleService := role.NewService(guestRoleRepo)
	invitationService := invitation.NewService(invitationRepo, licensedResourceRepo)

	tenantHandler := handlers.NewTenantHandler(tenantService)
	userHandler := handlers.NewUserHandler(userService)
	guestRoleHandler := handlers.NewGuestRoleHandler(guestRoleService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	routes.SetupRoutes(engine, logger.Logger, db, redisClient, cacheClient, authChain, evaluator, limiter, eventLogger,
		webhookHandler, registryHandler, tenantHandler, userHandler, guestRoleHandler, invitationHandler)
	engine.NoRoute(gatewayRouter.Handler())

	ctx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()
	go healthDispatcher.Run(ctx)
	go dispatcher.Run(ctx)
	go reportDatabaseConnections(ctx, db)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")
	cancelBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// reportDatabaseConnections samples the connection pool every 15 seconds
// so the active-connections gauge scraped at /metrics reflects live state.
func reportDatabaseConnections(ctx context.Context, db *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.DatabaseConnectionsActive.Set(float64(db.Stats().OpenConnections))
		}
	}
}

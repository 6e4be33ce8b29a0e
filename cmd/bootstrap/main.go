// +build ignore

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lepista-tech/mycelium/cmd/bootstrap"
	"github.com/lepista-tech/mycelium/config/loader"
	"github.com/lepista-tech/mycelium/internal/metrics"
	"github.com/lepista-tech/mycelium/security/totp"
	"github.com/lepista-tech/mycelium/storage/postgres"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to config file")
	username := flag.String("username", "", "Master user username (overrides config)")
	email := flag.String("email", "", "Master user email (overrides config)")
	password := flag.String("password", "", "Master user password (required, overrides config)")
	force := flag.Bool("force", false, "Force bootstrap even if master user exists")
	enableMFA := flag.Bool("enable-mfa", false, "Print a TOTP enrollment secret and QR code for the master user")
	qrPath := flag.String("mfa-qr-path", "bootstrap-mfa-qr.png", "Where to write the MFA QR code image when --enable-mfa is set")
	flag.Parse()

	// Load configuration
	cfg, err := loader.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Override with CLI flags
	if *username != "" {
		cfg.Bootstrap.MasterUser.Username = *username
	}
	if *email != "" {
		cfg.Bootstrap.MasterUser.Email = *email
	}
	if *password != "" {
		cfg.Bootstrap.MasterUser.Password = *password
	}
	cfg.Bootstrap.Force = *force

	// Validate password is provided
	if cfg.Bootstrap.MasterUser.Password == "" {
		log.Fatal("Password is required. Use --password flag or set BOOTSTRAP_PASSWORD env var")
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)

	// Initialize bootstrap service
	bootstrapService := bootstrap.NewBootstrapService(
		&cfg.Bootstrap,
		userRepo,
	)

	ctx := context.Background()

	// Run bootstrap
	if err := bootstrapService.Bootstrap(ctx); err != nil {
		if !*force && err.Error() == "master user already exists (use --force to re-bootstrap)" {
			fmt.Println("⚠️  System already bootstrapped. Use --force to re-bootstrap.")
			os.Exit(0)
		}
		logger.Fatal("Bootstrap failed", zap.Error(err))
	}

	fmt.Println("✅ System bootstrapped successfully!")
	fmt.Printf("   Master User ID: %s\n", "created")
	fmt.Printf("   Username: %s\n", cfg.Bootstrap.MasterUser.Username)
	fmt.Printf("   Email: %s\n", cfg.Bootstrap.MasterUser.Email)
	fmt.Println("\n⚠️  IMPORTANT: Change the master user password on first login!")

	// MFA enrollment here is an operator convenience, not a stored
	// credential: the master user's second factor is out of scope for the
	// per-request auth path, so the secret is only ever printed/written,
	// never persisted.
	if *enableMFA {
		generator := totp.NewGenerator(cfg.Security.MFA.Issuer)
		secret, err := generator.GenerateSecret(cfg.Bootstrap.MasterUser.Email)
		if err != nil {
			logger.Fatal("Failed to generate MFA secret", zap.Error(err))
		}

		qr, err := generator.GenerateQRCode(cfg.Bootstrap.MasterUser.Email, secret)
		if err != nil {
			logger.Fatal("Failed to generate MFA QR code", zap.Error(err))
		}
		if err := os.WriteFile(*qrPath, qr, 0o600); err != nil {
			logger.Fatal("Failed to write MFA QR code", zap.Error(err))
		}
		metrics.MFAEnrollmentsTotal.Inc()

		fmt.Println("\n🔐 MFA enrollment secret (record this, it is not stored):")
		fmt.Printf("   Secret: %s\n", secret)
		fmt.Printf("   QR code written to: %s\n", *qrPath)
	}
}


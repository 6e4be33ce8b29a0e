package bootstrap

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/config"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/internal/metrics"
	"github.com/lepista-tech/mycelium/security/password"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// BootstrapService seeds the first internal-provider user a fresh deployment
// authenticates as before any tenant or account exists.
type BootstrapService struct {
	cfg      *config.BootstrapConfig
	userRepo interfaces.UserRepository
}

// NewBootstrapService creates a new bootstrap service.
func NewBootstrapService(cfg *config.BootstrapConfig, userRepo interfaces.UserRepository) *BootstrapService {
	return &BootstrapService{cfg: cfg, userRepo: userRepo}
}

// Bootstrap creates the master user if it doesn't exist.
func (s *BootstrapService) Bootstrap(ctx context.Context) error {
	email := models.NormalizeEmail(s.cfg.MasterUser.Email)
	if email == "" {
		return fmt.Errorf("master user email is required")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		if !s.cfg.Force {
			return fmt.Errorf("master user already exists (use --force to re-bootstrap)")
		}
		if err := s.userRepo.Delete(ctx, existing.ID); err != nil {
			return fmt.Errorf("failed to delete existing master user: %w", err)
		}
	}

	if s.cfg.MasterUser.Password == "" {
		return fmt.Errorf("master user password is required (set BOOTSTRAP_PASSWORD env var)")
	}

	hasher := password.NewHasher()
	passwordHash, err := hasher.Hash(s.cfg.MasterUser.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	username := s.cfg.MasterUser.Username
	masterUser := &models.User{
		ID:        uuid.New(),
		Email:     email,
		Username:  &username,
		FirstName: stringPtr(s.cfg.MasterUser.FirstName),
		LastName:  stringPtr(s.cfg.MasterUser.LastName),
		Provider: models.Provider{
			Kind:         models.ProviderInternal,
			PasswordHash: passwordHash,
		},
		IsActive: true,
	}

	if err := s.userRepo.Create(ctx, masterUser); err != nil {
		return fmt.Errorf("failed to create master user: %w", err)
	}
	metrics.UsersCreatedTotal.Inc()

	return nil
}

func stringPtr(s string) *string {
	return &s
}

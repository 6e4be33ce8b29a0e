// Package user manages User: the tenant-independent principal every
// LicensedResource, GuestInvitation and Account owner reference by id
// (spec.md §3). A User authenticates through exactly one Provider —
// internal (password) or external (issuer/subject) — never both.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/security/password"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// Service provides user management business logic.
type Service struct {
	repo              interfaces.UserRepository
	passwordValidator *password.Validator
	passwordHasher    *password.Hasher
}

// NewService creates a new user service.
func NewService(repo interfaces.UserRepository) *Service {
	// Default password policy: min 12 chars, require all complexity classes.
	return &Service{
		repo:              repo,
		passwordValidator: password.NewValidator(12, true, true, true, true),
		passwordHasher:    password.NewHasher(),
	}
}

// CreateUserRequest represents a request to create an internal-provider user.
type CreateUserRequest struct {
	Username  string  `json:"username,omitempty" binding:"omitempty,min=3,max=255"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=12"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// UpdateUserRequest represents a request to update a user.
type UpdateUserRequest struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// Create creates a new internal-provider user.
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	email := models.NormalizeEmail(req.Email)
	if !isValidEmail(email) {
		return nil, fmt.Errorf("invalid email format")
	}

	if req.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if err := s.passwordValidator.Validate(req.Password, req.Username); err != nil {
		return nil, fmt.Errorf("password validation failed: %w", err)
	}

	if existing, _ := s.repo.GetByEmail(ctx, email); existing != nil {
		return nil, fmt.Errorf("email already exists")
	}

	var username *string
	if trimmed := strings.TrimSpace(req.Username); trimmed != "" {
		if len(trimmed) < 3 {
			return nil, fmt.Errorf("username must be at least 3 characters")
		}
		if existing, _ := s.repo.GetByUsername(ctx, trimmed); existing != nil {
			return nil, fmt.Errorf("username already exists")
		}
		username = &trimmed
	}

	passwordHash, err := s.passwordHasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	u := &models.User{
		ID:        uuid.New(),
		Email:     email,
		Username:  username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Provider: models.Provider{
			Kind:         models.ProviderInternal,
			PasswordHash: passwordHash,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return u, nil
}

// GetByUsername retrieves a user by username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return u, nil
}

// Update updates an existing user.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if len(username) < 3 {
			return nil, fmt.Errorf("username must be at least 3 characters")
		}
		if existing, _ := s.repo.GetByUsername(ctx, username); existing != nil && existing.ID != id {
			return nil, fmt.Errorf("username already exists")
		}
		u.Username = &username
	}

	if req.Email != nil {
		email := models.NormalizeEmail(*req.Email)
		if !isValidEmail(email) {
			return nil, fmt.Errorf("invalid email format")
		}
		if existing, _ := s.repo.GetByEmail(ctx, email); existing != nil && existing.ID != id {
			return nil, fmt.Errorf("email already exists")
		}
		u.Email = email
	}

	if req.FirstName != nil {
		u.FirstName = req.FirstName
	}
	if req.LastName != nil {
		u.LastName = req.LastName
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// Delete hard-deletes a user.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// List retrieves a list of users.
func (s *Service) List(ctx context.Context, filters *interfaces.UserFilters) ([]*models.User, error) {
	return s.repo.List(ctx, filters)
}

// Count returns the total count of users matching filters.
func (s *Service) Count(ctx context.Context, filters *interfaces.UserFilters) (int, error) {
	return s.repo.Count(ctx, filters)
}

// Authenticate verifies a password against the stored hash for an
// internal-provider user.
func (s *Service) Authenticate(ctx context.Context, email, plainPassword string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if u.Provider.Kind != models.ProviderInternal {
		return nil, fmt.Errorf("user does not use password authentication")
	}
	if !u.IsActive {
		return nil, fmt.Errorf("user is inactive")
	}

	ok, err := s.passwordHasher.Verify(plainPassword, u.Provider.PasswordHash)
	if err != nil || !ok {
		return nil, fmt.Errorf("invalid credentials")
	}
	return u, nil
}

// ChangePassword validates and stores a new password hash. Session
// revocation is the Token Subsystem's responsibility, triggered by the
// caller off the resulting DomainEvent, not this service.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	if u.Provider.Kind != models.ProviderInternal {
		return fmt.Errorf("user does not use password authentication")
	}

	if newPassword == "" {
		return fmt.Errorf("password is required")
	}
	if err := s.passwordValidator.Validate(newPassword, u.Email); err != nil {
		return fmt.Errorf("password validation failed: %w", err)
	}

	newHash, err := s.passwordHasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u.Provider.PasswordHash = newHash
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func isValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

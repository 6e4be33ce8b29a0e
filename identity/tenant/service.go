package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// Service provides tenant management business logic: lifecycle, ownership
// and manager-account membership.
type Service struct {
	repo interfaces.TenantRepository
}

// NewService creates a new tenant service.
func NewService(repo interfaces.TenantRepository) *Service {
	return &Service{repo: repo}
}

// CreateTenantRequest represents a request to create a tenant. At least one
// owner is required; a tenant can never be created without one.
type CreateTenantRequest struct {
	Name        string             `json:"name" binding:"required,min=3,max=255"`
	Description *string            `json:"description,omitempty"`
	OwnerID     uuid.UUID          `json:"owner_id" binding:"required"`
	Meta        *models.TenantMeta `json:"meta,omitempty"`
}

// UpdateTenantRequest represents a request to update tenant fields other
// than ownership/status, which go through their own methods.
type UpdateTenantRequest struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Meta        *models.TenantMeta `json:"meta,omitempty"`
}

// Create creates a new tenant with a single owner.
func (s *Service) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}
	if req.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("a tenant must have at least one owner")
	}

	tenant := &models.Tenant{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		Owners:      []uuid.UUID{req.OwnerID},
		Meta:        req.Meta,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	return tenant, nil
}

// GetByID retrieves a tenant by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	return tenant, nil
}

// Update updates mutable tenant fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateTenantRequest) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	if err := s.guardMutable(tenant); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		tenant.Name = name
	}
	if req.Description != nil {
		tenant.Description = req.Description
	}
	if req.Meta != nil {
		tenant.Meta = req.Meta
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return tenant, nil
}

// AddOwner grants ownership of the tenant to a user.
func (s *Service) AddOwner(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	if err := s.guardMutable(tenant); err != nil {
		return nil, err
	}

	if !tenant.IsOwner(userID) {
		tenant.Owners = append(tenant.Owners, userID)
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return tenant, nil
}

// RemoveOwner revokes ownership of the tenant from a user. A tenant can
// never be left with zero owners.
func (s *Service) RemoveOwner(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	if err := s.guardMutable(tenant); err != nil {
		return nil, err
	}
	if !tenant.IsOwner(userID) {
		return tenant, nil
	}
	if len(tenant.Owners) <= 1 {
		return nil, fmt.Errorf("a tenant must have at least one owner")
	}

	owners := make([]uuid.UUID, 0, len(tenant.Owners)-1)
	for _, o := range tenant.Owners {
		if o != userID {
			owners = append(owners, o)
		}
	}
	tenant.Owners = owners

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return tenant, nil
}

// AddManager grants the given account tenant-wide manager status.
func (s *Service) AddManager(ctx context.Context, id uuid.UUID, accountID uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	if err := s.guardMutable(tenant); err != nil {
		return nil, err
	}

	if !tenant.IsManagedBy(accountID) {
		tenant.Managers = append(tenant.Managers, accountID)
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return tenant, nil
}

// RemoveManager revokes tenant-wide manager status from the given account.
func (s *Service) RemoveManager(ctx context.Context, id uuid.UUID, accountID uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	if err := s.guardMutable(tenant); err != nil {
		return nil, err
	}

	managers := make([]uuid.UUID, 0, len(tenant.Managers))
	for _, m := range tenant.Managers {
		if m != accountID {
			managers = append(managers, m)
		}
	}
	tenant.Managers = managers

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return tenant, nil
}

// ChangeStatus pushes a new entry onto the tenant's status timeline.
// Archived is terminal: no further transition is accepted once reached.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, kind models.TenantStatusKind, by uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tenant not found: %w", err)
	}
	if err := s.guardMutable(tenant); err != nil {
		return nil, err
	}

	now := time.Now()
	status := models.TenantStatus{Kind: kind, At: &now, By: &by}

	if err := s.repo.AppendStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to change tenant status: %w", err)
	}

	tenant.Statuses = append(tenant.Statuses, status)
	return tenant, nil
}

// List retrieves a list of tenants with filters.
func (s *Service) List(ctx context.Context, filters *interfaces.TenantFilters) ([]*models.Tenant, error) {
	tenants, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// guardMutable rejects any mutation once the tenant has reached a terminal
// status (spec.md §4.2: transitioning to Archived is terminal).
func (s *Service) guardMutable(tenant *models.Tenant) error {
	if tenant.CurrentStatus().IsTerminal() {
		return fmt.Errorf("tenant %s is archived and can no longer be modified", tenant.ID)
	}
	return nil
}

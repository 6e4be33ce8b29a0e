// Package role manages the GuestRole catalog: the permission-bearing roles
// a tenant manager licenses to accounts via LicensedResource, and the
// acyclic DAG their Children ids form (spec.md §9).
package role

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// Service provides guest-role management business logic.
type Service struct {
	roleRepo interfaces.GuestRoleRepository
}

// NewService creates a new guest-role service.
func NewService(roleRepo interfaces.GuestRoleRepository) *Service {
	return &Service{roleRepo: roleRepo}
}

// Create creates a new guest role.
func (s *Service) Create(ctx context.Context, req *CreateGuestRoleRequest) (*models.GuestRole, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 3 {
		return nil, fmt.Errorf("role name must be at least 3 characters")
	}

	perm, err := models.ParsePermissionName(req.Permission)
	if err != nil {
		return nil, fmt.Errorf("invalid permission: %w", err)
	}

	if req.System {
		return nil, fmt.Errorf("system roles are predefined and immutable, they cannot be created via this API")
	}

	existing, _ := s.roleRepo.GetBySlug(ctx, models.Slugify(name))
	if existing != nil {
		return nil, fmt.Errorf("role with name %s already exists", name)
	}

	now := time.Now()
	role := &models.GuestRole{
		ID:          uuid.New(),
		Name:        name,
		Slug:        models.Slugify(name),
		Description: req.Description,
		Permission:  perm,
		System:      false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	return role, nil
}

// GetByID retrieves a guest role by id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.GuestRole, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}
	return role, nil
}

// Update updates the mutable fields of a guest role.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateGuestRoleRequest) (*models.GuestRole, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	if role.System {
		return nil, fmt.Errorf("cannot modify system role: system roles are immutable")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 3 {
			return nil, fmt.Errorf("role name must be at least 3 characters")
		}
		if existing, _ := s.roleRepo.GetBySlug(ctx, models.Slugify(name)); existing != nil && existing.ID != id {
			return nil, fmt.Errorf("role name %s is already taken", name)
		}
		role.Name = name
		role.Slug = models.Slugify(name)
	}

	if req.Description != nil {
		role.Description = req.Description
	}

	if req.Permission != nil {
		perm, err := models.ParsePermissionName(*req.Permission)
		if err != nil {
			return nil, fmt.Errorf("invalid permission: %w", err)
		}
		role.Permission = perm
	}

	role.UpdatedAt = time.Now()

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	return role, nil
}

// Delete deletes a guest role. A system role can never be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("role not found: %w", err)
	}
	if role.System {
		return fmt.Errorf("cannot delete system role: system roles are protected")
	}
	return s.roleRepo.Delete(ctx, id)
}

// List retrieves guest roles matching filters.
func (s *Service) List(ctx context.Context, filters *interfaces.GuestRoleFilters) ([]*models.GuestRole, error) {
	roles, err := s.roleRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// AddChild links childID as a direct child of parentID, rejecting the
// mutation if doing so would close a cycle anywhere in the DAG (spec.md §9:
// "the Children graph must remain acyclic").
func (s *Service) AddChild(ctx context.Context, parentID, childID uuid.UUID) error {
	if parentID == childID {
		return fmt.Errorf("a role cannot be its own child")
	}

	parent, err := s.roleRepo.GetByID(ctx, parentID)
	if err != nil {
		return fmt.Errorf("parent role not found: %w", err)
	}
	if _, err := s.roleRepo.GetByID(ctx, childID); err != nil {
		return fmt.Errorf("child role not found: %w", err)
	}
	if parent.HasChild(childID) {
		return nil
	}

	all, err := s.roleRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load roles for cycle check: %w", err)
	}

	adjacency := make(map[uuid.UUID][]uuid.UUID, len(all))
	for _, r := range all {
		adjacency[r.ID] = r.Children
	}
	adjacency[parentID] = append(append([]uuid.UUID{}, adjacency[parentID]...), childID)

	if introducesCycle(adjacency, parentID) {
		return fmt.Errorf("adding %s as a child of %s would introduce a cycle", childID, parentID)
	}

	parent.Children = append(parent.Children, childID)
	parent.UpdatedAt = time.Now()
	if err := s.roleRepo.Update(ctx, parent); err != nil {
		return fmt.Errorf("failed to link child role: %w", err)
	}
	return nil
}

// RemoveChild unlinks childID from parentID. Unlinking can never introduce
// a cycle, so no DFS is needed.
func (s *Service) RemoveChild(ctx context.Context, parentID, childID uuid.UUID) error {
	parent, err := s.roleRepo.GetByID(ctx, parentID)
	if err != nil {
		return fmt.Errorf("parent role not found: %w", err)
	}

	children := make([]uuid.UUID, 0, len(parent.Children))
	for _, id := range parent.Children {
		if id != childID {
			children = append(children, id)
		}
	}
	parent.Children = children
	parent.UpdatedAt = time.Now()

	return s.roleRepo.Update(ctx, parent)
}

// introducesCycle runs a DFS from start over adjacency, reporting whether a
// node reachable from start can reach back to start.
func introducesCycle(adjacency map[uuid.UUID][]uuid.UUID, start uuid.UUID) bool {
	visited := make(map[uuid.UUID]bool)
	var visit func(node uuid.UUID, stack map[uuid.UUID]bool) bool
	visit = func(node uuid.UUID, stack map[uuid.UUID]bool) bool {
		if stack[node] {
			return true
		}
		if visited[node] {
			return false
		}
		visited[node] = true
		stack[node] = true
		for _, child := range adjacency[node] {
			if visit(child, stack) {
				return true
			}
		}
		stack[node] = false
		return false
	}
	return visit(start, make(map[uuid.UUID]bool))
}

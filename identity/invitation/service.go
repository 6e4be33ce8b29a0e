// Package invitation manages GuestInvitation: the pending grant a tenant
// manager creates before an email has confirmed it (spec.md §3, §4.1 rule
// 5). Accepting one verifies the matching unverified LicensedResource row
// rather than minting a new account — the invited email is expected to
// already resolve to a User via its own provider.
package invitation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// Service provides guest-invitation management business logic.
type Service struct {
	invitationRepo interfaces.InvitationRepository
	licenseRepo    interfaces.LicensedResourceRepository
}

// NewService creates a new invitation service.
func NewService(invitationRepo interfaces.InvitationRepository, licenseRepo interfaces.LicensedResourceRepository) *Service {
	return &Service{
		invitationRepo: invitationRepo,
		licenseRepo:    licenseRepo,
	}
}

// CreateInvitation creates a pending grant and seeds the unverified
// LicensedResource accept_invitation will later flip to verified.
func (s *Service) CreateInvitation(ctx context.Context, req *CreateInvitationRequest) (*models.GuestInvitation, error) {
	email := models.NormalizeEmail(req.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	perm, err := models.ParsePermissionName(req.Permission)
	if err != nil {
		return nil, fmt.Errorf("invalid permission: %w", err)
	}

	existing, _ := s.invitationRepo.GetPendingByEmailAndAccount(ctx, req.AccountID, email)
	if existing != nil && !existing.IsAccepted() && !existing.IsExpired(time.Now()) {
		return nil, fmt.Errorf("pending invitation already exists for this email on this account")
	}

	expiresIn := req.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 7
	}

	now := time.Now()
	invitation := &models.GuestInvitation{
		ID:          uuid.New(),
		TenantID:    req.TenantID,
		AccountID:   req.AccountID,
		Email:       email,
		GuestRoleID: req.GuestRoleID,
		Permission:  perm,
		InvitedBy:   req.InvitedBy,
		ExpiresAt:   now.AddDate(0, 0, expiresIn),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	unverified := invitation.AsUnverifiedLicense(req.RoleName)
	if err := s.licenseRepo.Create(ctx, &unverified); err != nil {
		return nil, fmt.Errorf("failed to seed unverified license: %w", err)
	}

	return invitation, nil
}

// GetInvitation retrieves an invitation by id.
func (s *Service) GetInvitation(ctx context.Context, id uuid.UUID) (*models.GuestInvitation, error) {
	return s.invitationRepo.GetByID(ctx, id)
}

// ListInvitations lists invitations for an account.
func (s *Service) ListInvitations(ctx context.Context, accountID uuid.UUID, filters *ListInvitationsFilters) ([]*models.GuestInvitation, int, error) {
	internalFilters := &interfaces.InvitationFilters{
		Email:     filters.Email,
		Accepted:  filters.Accepted,
		InvitedBy: filters.InvitedBy,
		Page:      filters.Page,
		PageSize:  filters.PageSize,
	}

	invitations, err := s.invitationRepo.List(ctx, accountID, internalFilters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invitations: %w", err)
	}

	total, err := s.invitationRepo.Count(ctx, accountID, internalFilters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count invitations: %w", err)
	}

	return invitations, total, nil
}

// AcceptInvitation marks a pending invitation accepted and verifies its
// seeded LicensedResource row. roleName must be supplied by the caller
// (resolved from invitation.GuestRoleID via the guest-role service) since
// GuestInvitation stores only the id, never an embedded role (spec.md §9).
func (s *Service) AcceptInvitation(ctx context.Context, id uuid.UUID, acceptedBy uuid.UUID, roleName string) (*models.GuestInvitation, error) {
	invitation, err := s.invitationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("invitation not found: %w", err)
	}

	now := time.Now()
	if invitation.IsAccepted() {
		return nil, fmt.Errorf("invitation already accepted")
	}
	if invitation.IsExpired(now) {
		return nil, fmt.Errorf("invitation has expired")
	}

	invitation.AcceptedAt = &now
	invitation.AcceptedBy = &acceptedBy
	invitation.UpdatedAt = now

	if err := s.invitationRepo.Update(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	if err := s.licenseRepo.Verify(ctx, invitation.TenantID, invitation.AccountID, invitation.Email, roleName, invitation.Permission); err != nil {
		return nil, fmt.Errorf("failed to verify license: %w", err)
	}

	return invitation, nil
}

// DeleteInvitation deletes a pending invitation.
func (s *Service) DeleteInvitation(ctx context.Context, id uuid.UUID) error {
	return s.invitationRepo.Delete(ctx, id)
}

package profile

import (
	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/internal/errs"
)

// ScopeKind distinguishes business accounts from system/management
// accounts, per spec.md §4.1's standard_accounts_access /
// system_accounts_access chain steps.
type ScopeKind string

const (
	ScopeStandardAccounts ScopeKind = "standard_accounts"
	ScopeSystemAccounts   ScopeKind = "system_accounts"
)

// RWLevel is the access level requested via with_<rw>_access().
type RWLevel string

const (
	RWRead      RWLevel = "read"
	RWWrite     RWLevel = "write"
	RWReadWrite RWLevel = "read_write"
)

// requiredPermission maps the requested access level to the minimum
// Permission a matching LicensedResource must satisfy. read_write accepts
// either — its minimum bound is Read, since Write already implies Read in
// the closed lattice (spec.md §9).
func (l RWLevel) requiredPermission() models.Permission {
	if l == RWWrite {
		return models.PermissionWrite
	}
	return models.PermissionRead
}

// CapabilityChain is the fluent filter every use case builds before
// calling a projection (spec.md §4.1):
//
//	profile.Chain(p).OnTenant(t).WithStandardAccountsAccess().WithWriteAccess().
//	    WithRoles([]string{"SubscriptionsManager"}).GetIDsOrError()
type CapabilityChain struct {
	profile  *models.Profile
	tenantID *uuid.UUID
	scope    ScopeKind
	rw       RWLevel
	roles    []string

	onAccount *uuid.UUID

	acceptInvitation         bool
	acceptInvitationRole     string
	acceptInvitationPermission models.Permission
}

// OnTenant binds the chain to a tenant. Most projections require this to
// have been called.
func (c *CapabilityChain) OnTenant(tenantID uuid.UUID) *CapabilityChain {
	c.tenantID = &tenantID
	return c
}

// WithStandardAccountsAccess scopes the chain to business accounts.
func (c *CapabilityChain) WithStandardAccountsAccess() *CapabilityChain {
	c.scope = ScopeStandardAccounts
	return c
}

// WithSystemAccountsAccess scopes the chain to system/management accounts.
func (c *CapabilityChain) WithSystemAccountsAccess() *CapabilityChain {
	c.scope = ScopeSystemAccounts
	return c
}

// WithReadAccess requires at least Read.
func (c *CapabilityChain) WithReadAccess() *CapabilityChain {
	c.rw = RWRead
	return c
}

// WithWriteAccess requires Write.
func (c *CapabilityChain) WithWriteAccess() *CapabilityChain {
	c.rw = RWWrite
	return c
}

// WithReadWriteAccess accepts either Read or Write.
func (c *CapabilityChain) WithReadWriteAccess() *CapabilityChain {
	c.rw = RWReadWrite
	return c
}

// WithRoles restricts matching LicensedResources to one of the given guest
// role names. An empty call leaves the chain unrestricted by role.
func (c *CapabilityChain) WithRoles(roles []string) *CapabilityChain {
	c.roles = roles
	return c
}

// OnAccount restricts the match to a single account id.
func (c *CapabilityChain) OnAccount(accountID uuid.UUID) *CapabilityChain {
	c.onAccount = &accountID
	return c
}

// AcceptInvitation switches the chain into the invitation-acceptance
// matcher (spec.md §4.1 rule 5): it matches an unverified LicensedResource
// by the exact (account_id, role, permission) triple instead of requiring
// verified=true.
func (c *CapabilityChain) AcceptInvitation(role string, permission models.Permission) *CapabilityChain {
	c.acceptInvitation = true
	c.acceptInvitationRole = role
	c.acceptInvitationPermission = permission
	return c
}

// roleAllowed reports whether role satisfies the chain's role restriction.
func (c *CapabilityChain) roleAllowed(role string) bool {
	if c.acceptInvitation {
		return role == c.acceptInvitationRole
	}
	if len(c.roles) == 0 {
		return true
	}
	for _, r := range c.roles {
		if r == role {
			return true
		}
	}
	return false
}

// matches reports whether lr satisfies every active constraint. tenantWide
// skips the onAccount filter, per rule 3's "acc_id matches on_account
// filter OR chain is tenant-wide".
func (c *CapabilityChain) matches(lr models.LicensedResource, tenantID uuid.UUID, required models.Permission, tenantWide bool) bool {
	if lr.TenantID != tenantID {
		return false
	}
	if !c.roleAllowed(lr.GuestRole) {
		return false
	}
	if !tenantWide && c.onAccount != nil && lr.AccountID != *c.onAccount {
		return false
	}

	if c.acceptInvitation {
		return !lr.Verified && lr.Permission == c.acceptInvitationPermission
	}
	return lr.Verified && lr.Permission.Satisfies(required)
}

// matchingAccountIDs returns the distinct account ids of every
// LicensedResource satisfying the chain's constraints under tenantID,
// honoring OnAccount as a per-account filter (not tenant-wide).
func (c *CapabilityChain) matchingAccountIDs(tenantID uuid.UUID, required models.Permission) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, lr := range c.profile.LicensedResources {
		if !c.matches(lr, tenantID, required, false) {
			continue
		}
		if _, ok := seen[lr.AccountID]; ok {
			continue
		}
		seen[lr.AccountID] = struct{}{}
		ids = append(ids, lr.AccountID)
	}
	return ids
}

// hasTenantWideMatch reports whether any LicensedResource satisfies the
// chain's constraints under tenantID, ignoring the account filter.
func (c *CapabilityChain) hasTenantWideMatch(tenantID uuid.UUID, required models.Permission) bool {
	for _, lr := range c.profile.LicensedResources {
		if c.matches(lr, tenantID, required, true) {
			return true
		}
	}
	return false
}

// GetIDsOrError returns the account ids the caller is permitted to act
// upon, per spec.md §4.1. Rule 1 (staff) and rule 2 (tenant manager)
// short-circuit; otherwise the result is built from matching
// LicensedResources.
func (c *CapabilityChain) GetIDsOrError() (models.RelatedAccounts, error) {
	if c.profile.IsStaff {
		if c.onAccount != nil {
			return models.AllowedAccounts([]uuid.UUID{*c.onAccount}), nil
		}
		if c.tenantID != nil {
			return models.TenantWide(*c.tenantID), nil
		}
		return models.RelatedAccounts{}, errs.InvalidTenantBinding("a tenant or account filter is required to resolve a super-user scope")
	}

	required := c.rw.requiredPermission()

	// IsManager was resolved by Evaluate relative to the tenant the chain
	// was built for — a manager holds tenant-wide Write there (rule 2).
	if c.profile.IsManager && c.tenantID != nil {
		return models.TenantWide(*c.tenantID), nil
	}

	if c.tenantID == nil {
		return models.RelatedAccounts{}, errs.InvalidTenantBinding("on_tenant() must be called before resolving account ids")
	}

	if c.onAccount != nil {
		ids := c.matchingAccountIDs(*c.tenantID, required)
		for _, id := range ids {
			if id == *c.onAccount {
				return models.AllowedAccounts([]uuid.UUID{id}), nil
			}
		}
		return models.RelatedAccounts{}, errs.InsufficientPrivileges("caller holds no matching license on the requested account")
	}

	ids := c.matchingAccountIDs(*c.tenantID, required)
	if len(ids) == 0 {
		return models.RelatedAccounts{}, errs.InsufficientPrivileges("caller holds no matching license for this operation")
	}
	return models.AllowedAccounts(ids), nil
}

// GetRelatedAccountOrError is GetIDsOrError but rejects a tenant-wide
// result — the caller needs concrete account ids, not "the whole tenant".
func (c *CapabilityChain) GetRelatedAccountOrError() (models.RelatedAccounts, error) {
	ra, err := c.GetIDsOrError()
	if err != nil {
		return ra, err
	}
	if ra.Kind != models.RelatedAccountsAllowed || len(ra.AccountIDs) == 0 {
		return models.RelatedAccounts{}, errs.InsufficientPrivileges("a related account is required; a tenant-wide grant is not sufficient here")
	}
	return ra, nil
}

// GetTenantWidePermissionOrError succeeds iff the caller holds perm
// tenant-wide on tenantID: staff, a manager of tenantID, or a verified
// LicensedResource matching the chain's role restriction anywhere in the
// tenant (account filter ignored, per rule 3's tenant-wide clause).
//
// IsManager is only meaningful relative to the tenant the Profile was
// evaluated for (Evaluator.Evaluate's tenantID argument) — callers must
// pass that same tenantID here for the manager shortcut to apply.
func (c *CapabilityChain) GetTenantWidePermissionOrError(tenantID uuid.UUID, perm models.Permission) error {
	if c.profile.IsStaff {
		return nil
	}
	if c.profile.IsManager && models.PermissionWrite.Satisfies(perm) {
		return nil
	}
	if c.hasTenantWideMatch(tenantID, perm) {
		return nil
	}
	return errs.InsufficientPrivileges("caller holds no tenant-wide grant for this operation")
}

// GetRelatedAccountsOrTenantWidePermissionOrError succeeds with a
// tenant-wide grant first, falling back to a concrete related-accounts
// match.
func (c *CapabilityChain) GetRelatedAccountsOrTenantWidePermissionOrError(tenantID uuid.UUID, perm models.Permission) (models.RelatedAccounts, error) {
	if err := c.GetTenantWidePermissionOrError(tenantID, perm); err == nil {
		return models.TenantWide(tenantID), nil
	}
	c.tenantID = &tenantID
	c.rw = rwFor(perm)
	return c.GetIDsOrError()
}

func rwFor(perm models.Permission) RWLevel {
	if perm == models.PermissionWrite {
		return RWWrite
	}
	return RWRead
}

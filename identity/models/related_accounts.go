package models

import "github.com/google/uuid"

// RelatedAccountsKind is the tagged variant of what get_ids_or_error
// resolves to: either an explicit set of account ids the caller may act
// upon, or a tenant-wide grant (spec.md §4.1, original_source's
// RelatedAccounts enum).
type RelatedAccountsKind string

const (
	RelatedAccountsAllowed RelatedAccountsKind = "allowed_accounts"
	RelatedAccountsTenant  RelatedAccountsKind = "tenant"
)

// RelatedAccounts carries only the field implied by Kind.
type RelatedAccounts struct {
	Kind      RelatedAccountsKind `json:"kind"`
	AccountIDs []uuid.UUID        `json:"account_ids,omitempty"`
	TenantID  uuid.UUID           `json:"tenant_id,omitempty"`
}

// AllowedAccounts builds the Kind=RelatedAccountsAllowed variant.
func AllowedAccounts(ids []uuid.UUID) RelatedAccounts {
	return RelatedAccounts{Kind: RelatedAccountsAllowed, AccountIDs: ids}
}

// TenantWide builds the Kind=RelatedAccountsTenant variant.
func TenantWide(tenantID uuid.UUID) RelatedAccounts {
	return RelatedAccounts{Kind: RelatedAccountsTenant, TenantID: tenantID}
}

// IsEmpty reports whether this grant carries no accounts and is not
// tenant-wide — the signal get_ids_or_error uses to fail closed.
func (r RelatedAccounts) IsEmpty() bool {
	return r.Kind == RelatedAccountsAllowed && len(r.AccountIDs) == 0
}

// Package profile builds per-request Profile values and the fluent
// capability chain every use case calls before touching data (spec.md
// §4.1). Mycelium has no per-tenant role CRUD, only the closed Read/Write
// lattice and a fixed System-Actor taxonomy.
package profile

import (
	"context"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/internal/errs"
)

// BaselineFetching resolves the staff/manager/ownership facts of a Profile
// that don't come from licensed resources.
type BaselineFetching interface {
	FetchBaseline(ctx context.Context, email string) (*Baseline, error)
}

// Baseline is the non-license part of a Profile.
type Baseline struct {
	AccountID      uuid.UUID
	IsStaff        bool
	ManagedTenants []uuid.UUID
	Owners         []models.Owner
}

// LicensedResourcesFetching resolves the licensed resources backing a
// Profile's authorization decisions. tenantID narrows the fetch when the
// caller already knows the tenant; nil fetches across all tenants the
// email has a grant in.
type LicensedResourcesFetching interface {
	FetchLicensedResources(ctx context.Context, email string, tenantID *uuid.UUID) ([]models.LicensedResource, error)
}

// Evaluator constructs Profiles from an authenticated email.
type Evaluator struct {
	baselines BaselineFetching
	licenses  LicensedResourcesFetching
}

// NewEvaluator creates a new Profile Evaluator.
func NewEvaluator(baselines BaselineFetching, licenses LicensedResourcesFetching) *Evaluator {
	return &Evaluator{baselines: baselines, licenses: licenses}
}

// Evaluate builds a Profile for an authenticated email, optionally scoped
// to a tenant. tenantID narrows the licensed-resource fetch; pass nil to
// fetch across every tenant the email holds a grant in.
func (e *Evaluator) Evaluate(ctx context.Context, email string, tenantID *uuid.UUID) (*models.Profile, error) {
	if email == "" {
		return nil, errs.Unauthenticated("an authenticated email is required to build a profile")
	}

	baseline, err := e.baselines.FetchBaseline(ctx, email)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "failed to fetch profile baseline", err)
	}

	licenses, err := e.licenses.FetchLicensedResources(ctx, email, tenantID)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "failed to fetch licensed resources", err)
	}

	isManager := false
	if tenantID != nil {
		for _, t := range baseline.ManagedTenants {
			if t == *tenantID {
				isManager = true
				break
			}
		}
	}

	return &models.Profile{
		Email:             email,
		AccountID:         baseline.AccountID,
		IsStaff:           baseline.IsStaff,
		IsManager:         isManager,
		Owners:            baseline.Owners,
		LicensedResources: licenses,
	}, nil
}

// Chain starts the fluent capability chain described in spec.md §4.1:
// on_tenant(t).with_<scope>_access().with_<rw>_access().with_roles([...]).get_<projection>_or_error().
func Chain(p *models.Profile) *CapabilityChain {
	return &CapabilityChain{profile: p}
}

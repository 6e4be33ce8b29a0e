package models

import (
	"time"

	"github.com/google/uuid"
)

// GuestRole is a named, permission-bearing role that can be granted to a
// user on an account. Children are stored as ids only — never as embedded
// records — so that acyclicity can be enforced at write time via DFS
// without loading the whole DAG into memory (spec.md §9).
type GuestRole struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Slug        string       `json:"slug" db:"slug"`
	Description *string      `json:"description,omitempty" db:"description"`
	Permission  Permission   `json:"permission" db:"permission"`
	System      bool         `json:"system" db:"system"`
	Children    []uuid.UUID  `json:"children,omitempty" db:"-"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// HasChild reports whether candidateID is a direct child of this role.
func (r *GuestRole) HasChild(candidateID uuid.UUID) bool {
	for _, id := range r.Children {
		if id == candidateID {
			return true
		}
	}
	return false
}

// SystemActor enumerates the fixed taxonomy of built-in, immutable roles
// used by gateway-facing and tenant-management operations. spec.md §9
// decided the System-Actor/DefaultActor/ActorName split seen in the
// original source collapses to this single flat taxonomy.
type SystemActor string

const (
	SystemActorTenantOwner       SystemActor = "TenantOwner"
	SystemActorTenantManager     SystemActor = "TenantManager"
	SystemActorSubscriptionsManager SystemActor = "SubscriptionsManager"
	SystemActorGuestsManager     SystemActor = "GuestsManager"
	SystemActorGatewayManager    SystemActor = "GatewayManager"
	SystemActorSystemManager     SystemActor = "SystemManager"
	SystemActorBeginner          SystemActor = "Beginner"
)

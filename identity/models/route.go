package models

import "github.com/google/uuid"

// SecurityGroupKind is the tagged variant of a route's access policy.
type SecurityGroupKind string

const (
	SecurityGroupPublic                    SecurityGroupKind = "public"
	SecurityGroupAuthenticated              SecurityGroupKind = "authenticated"
	SecurityGroupRoleScoped                 SecurityGroupKind = "role_scoped"
	SecurityGroupRoleScopedWithPermission   SecurityGroupKind = "role_scoped_with_permission"
	SecurityGroupServiceTokenScoped         SecurityGroupKind = "service_token_scoped"
)

// RolePermission pairs a role name with the minimum permission a caller
// must hold for it, used by RoleScopedWithPermission.
type RolePermission struct {
	Role       string     `json:"role"`
	Permission Permission `json:"permission"`
}

// SecurityGroup carries only the fields implied by Kind.
type SecurityGroup struct {
	Kind SecurityGroupKind `json:"kind"`

	// RoleScoped
	Roles []string `json:"roles,omitempty"`

	// RoleScopedWithPermission
	RolePermissions []RolePermission `json:"role_permissions,omitempty"`

	// ServiceTokenScoped
	Scopes ScopeSet `json:"scopes,omitempty"`
}

// Route matches an incoming request path to an owning Service and the
// policy enforced before forwarding (spec.md §3, §4.2).
type Route struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	PathPattern    string        `json:"path_pattern" db:"path_pattern"`
	AllowedMethods []string      `json:"allowed_methods" db:"-"`
	Security       SecurityGroup `json:"security" db:"-"`
	ServiceID      uuid.UUID     `json:"service_id" db:"service_id"`
	AllowedSources []string      `json:"allowed_sources,omitempty" db:"-"`

	// ResponseHeaderKey is an extra header name this route's downstream is
	// trusted to set on its response, preserved alongside the standard
	// retained set by the response header allow-list (spec.md §4.2 step 7).
	ResponseHeaderKey string `json:"response_header_key,omitempty" db:"-"`
}

// AllowsMethod reports whether method is in the route's allow-list.
func (r *Route) AllowsMethod(method string) bool {
	for _, m := range r.AllowedMethods {
		if m == method {
			return true
		}
	}
	return false
}

package models

import (
	"fmt"
	"strings"
)

// Permission is the closed two-value permission lattice spec.md §9 decided
// on: Read=0, Write=1. Write implies Read; Read does not imply Write. Any
// numeric code outside this range must fail closed rather than be
// interpreted — the four-level View/Create/Update/Delete form seen
// elsewhere in the corpus is explicitly rejected at the API boundary.
type Permission int

const (
	PermissionRead  Permission = 0
	PermissionWrite Permission = 1
)

// ErrPermissionCodeOutOfRange is returned by ParsePermission for any code
// outside the closed {Read, Write} set.
var ErrPermissionCodeOutOfRange = fmt.Errorf("permission code out of range")

// ParsePermission validates a raw numeric permission code, failing closed
// on anything but 0 or 1.
func ParsePermission(code int) (Permission, error) {
	switch Permission(code) {
	case PermissionRead, PermissionWrite:
		return Permission(code), nil
	default:
		return 0, ErrPermissionCodeOutOfRange
	}
}

// ParsePermissionName validates a raw wire-level permission name ("read" or
// "write", case-insensitive), failing closed on anything else.
func ParsePermissionName(name string) (Permission, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "read":
		return PermissionRead, nil
	case "write":
		return PermissionWrite, nil
	default:
		return 0, ErrPermissionCodeOutOfRange
	}
}

// Satisfies reports whether this permission (held) satisfies the required
// permission — Write satisfies Read and Write; Read satisfies only Read.
func (p Permission) Satisfies(required Permission) bool {
	return p >= required
}

func (p Permission) String() string {
	switch p {
	case PermissionRead:
		return "read"
	case PermissionWrite:
		return "write"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the permission by name rather than numeric code, so
// wire payloads stay stable if the lattice ever grows.
func (p Permission) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

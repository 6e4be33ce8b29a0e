package models

import (
	"time"

	"github.com/google/uuid"
)

// HealthStatusKind is the tagged variant of a host's health.
type HealthStatusKind string

const (
	HealthUnknown   HealthStatusKind = "unknown"
	HealthHealthy   HealthStatusKind = "healthy"
	HealthUnhealthy HealthStatusKind = "unhealthy"
)

// HealthStatus carries the since/reason pair only meaningful for Unhealthy.
type HealthStatus struct {
	Kind               HealthStatusKind `json:"kind"`
	Since              *time.Time       `json:"since,omitempty"`
	Reason             string           `json:"reason,omitempty"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
}

// Host is a single dial target for a Service.
type Host struct {
	Address string       `json:"address"`
	Health  HealthStatus `json:"health"`
}

// Service is a downstream the gateway forwards to.
type Service struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Protocol        string    `json:"protocol" db:"protocol"` // "http" | "https"
	Hosts           []Host    `json:"hosts" db:"-"`
	HealthCheckPath string    `json:"health_check_path" db:"health_check_path"`
	CapabilityTags  []string  `json:"capability_tags,omitempty" db:"-"`
	Discoverable    bool      `json:"discoverable" db:"discoverable"`
	OpenAPIPath     *string   `json:"openapi_path,omitempty" db:"openapi_path"`
}

// HealthyHosts returns the indices of hosts currently Healthy.
func (s *Service) HealthyHosts() []int {
	var out []int
	for i, h := range s.Hosts {
		if h.Health.Kind == HealthHealthy {
			out = append(out, i)
		}
	}
	return out
}

// UnknownHosts returns the indices of hosts never yet probed.
func (s *Service) UnknownHosts() []int {
	var out []int
	for i, h := range s.Hosts {
		if h.Health.Kind == HealthUnknown {
			out = append(out, i)
		}
	}
	return out
}

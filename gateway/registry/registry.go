// Package registry is the in-memory Route/Service Registry (spec.md §4.5):
// read-mostly, behind a reader-writer lock, loaded from a declarative YAML
// file at startup and reloadable on demand. The Gateway Router and the
// Health Dispatcher share one Registry by reference.
package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"gopkg.in/yaml.v3"
)

// Document is the declarative YAML shape the Registry loads at startup,
// following the same unmarshal-then-default convention as config.Config
// (config/loader/loader.go).
type Document struct {
	Services []ServiceSpec `yaml:"services"`
	Routes   []RouteSpec   `yaml:"routes"`
}

// ServiceSpec is a Service as it appears in the registry file; hosts start
// in HealthUnknown until the Health Dispatcher probes them.
type ServiceSpec struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Protocol        string   `yaml:"protocol"`
	Hosts           []string `yaml:"hosts"`
	HealthCheckPath string   `yaml:"health_check_path"`
	CapabilityTags  []string `yaml:"capability_tags"`
	Discoverable    bool     `yaml:"discoverable"`
	OpenAPIPath     *string  `yaml:"openapi_path"`
}

// RouteSpec is a Route as it appears in the registry file.
type RouteSpec struct {
	ID                string            `yaml:"id"`
	PathPattern       string            `yaml:"path_pattern"`
	AllowedMethods    []string          `yaml:"allowed_methods"`
	ServiceID         string            `yaml:"service_id"`
	AllowedSources    []string          `yaml:"allowed_sources"`
	Security          SecurityGroupSpec `yaml:"security"`
	ResponseHeaderKey string            `yaml:"response_header_key"`
}

// SecurityGroupSpec is a models.SecurityGroup as it appears in YAML.
type SecurityGroupSpec struct {
	Kind            string                  `yaml:"kind"`
	Roles           []string                `yaml:"roles"`
	RolePermissions []RolePermissionSpec    `yaml:"role_permissions"`
	Scopes          []string                `yaml:"scopes"`
}

// RolePermissionSpec is a models.RolePermission as it appears in YAML.
type RolePermissionSpec struct {
	Role       string `yaml:"role"`
	Permission string `yaml:"permission"`
}

// Registry holds routes and services in memory behind a reader-writer
// lock. Reads (the hot path) take RLock; reloads and health updates take
// the writer lock for the minimum window possible.
type Registry struct {
	mu sync.RWMutex

	services map[uuid.UUID]*models.Service
	routes   []*models.Route // sorted longest-prefix-first
}

// New builds an empty Registry. Load or LoadFile populates it.
func New() *Registry {
	return &Registry{services: make(map[uuid.UUID]*models.Service)}
}

// LoadFile reads and parses a YAML registry document from path and
// replaces the Registry's contents. Safe to call again later (SIGHUP
// reload); the swap happens under the writer lock so lookups never
// observe a half-loaded state.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read registry file: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse registry file: %w", err)
	}
	return r.Load(doc)
}

// Load replaces the Registry's routes and services from a parsed
// Document.
func (r *Registry) Load(doc Document) error {
	services := make(map[uuid.UUID]*models.Service, len(doc.Services))
	for _, s := range doc.Services {
		id, err := uuid.Parse(s.ID)
		if err != nil {
			return fmt.Errorf("service %q: invalid id: %w", s.Name, err)
		}
		hosts := make([]models.Host, len(s.Hosts))
		for i, addr := range s.Hosts {
			hosts[i] = models.Host{Address: addr, Health: models.HealthStatus{Kind: models.HealthUnknown}}
		}
		services[id] = &models.Service{
			ID:              id,
			Name:            s.Name,
			Protocol:        s.Protocol,
			Hosts:           hosts,
			HealthCheckPath: s.HealthCheckPath,
			CapabilityTags:  s.CapabilityTags,
			Discoverable:    s.Discoverable,
			OpenAPIPath:     s.OpenAPIPath,
		}
	}

	routes := make([]*models.Route, 0, len(doc.Routes))
	for _, rt := range doc.Routes {
		id, err := uuid.Parse(rt.ID)
		if err != nil {
			return fmt.Errorf("route %q: invalid id: %w", rt.PathPattern, err)
		}
		serviceID, err := uuid.Parse(rt.ServiceID)
		if err != nil {
			return fmt.Errorf("route %q: invalid service_id: %w", rt.PathPattern, err)
		}
		security, err := parseSecurityGroup(rt.Security)
		if err != nil {
			return fmt.Errorf("route %q: %w", rt.PathPattern, err)
		}
		routes = append(routes, &models.Route{
			ID:                id,
			PathPattern:       rt.PathPattern,
			AllowedMethods:    rt.AllowedMethods,
			Security:          security,
			ServiceID:         serviceID,
			AllowedSources:    rt.AllowedSources,
			ResponseHeaderKey: rt.ResponseHeaderKey,
		})
	}
	sortLongestPrefixFirst(routes)

	r.mu.Lock()
	r.services = services
	r.routes = routes
	r.mu.Unlock()
	return nil
}

func parseSecurityGroup(spec SecurityGroupSpec) (models.SecurityGroup, error) {
	kind := models.SecurityGroupKind(spec.Kind)
	switch kind {
	case models.SecurityGroupPublic, models.SecurityGroupAuthenticated:
		return models.SecurityGroup{Kind: kind}, nil
	case models.SecurityGroupRoleScoped:
		return models.SecurityGroup{Kind: kind, Roles: spec.Roles}, nil
	case models.SecurityGroupRoleScopedWithPermission:
		rps := make([]models.RolePermission, len(spec.RolePermissions))
		for i, rp := range spec.RolePermissions {
			perm, err := models.ParsePermissionName(rp.Permission)
			if err != nil {
				return models.SecurityGroup{}, fmt.Errorf("role_permission %q: %w", rp.Role, err)
			}
			rps[i] = models.RolePermission{Role: rp.Role, Permission: perm}
		}
		return models.SecurityGroup{Kind: kind, RolePermissions: rps}, nil
	case models.SecurityGroupServiceTokenScoped:
		scopes := make(models.ScopeSet, len(spec.Scopes))
		for i, s := range spec.Scopes {
			scopes[i] = models.ServiceScope(s)
		}
		return models.SecurityGroup{Kind: kind, Scopes: scopes}, nil
	default:
		return models.SecurityGroup{}, fmt.Errorf("unknown security group kind %q", spec.Kind)
	}
}

// sortLongestPrefixFirst orders routes so the first pattern matching a
// path in Lookup is always the most specific one.
func sortLongestPrefixFirst(routes []*models.Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		return len(routes[i].PathPattern) > len(routes[j].PathPattern)
	})
}

// Lookup resolves path to at most one Route. Per spec.md §4.2 step 1: zero
// matches and multiple equally-specific matches are both caller errors
// (404 / 500 respectively) — Lookup reports the count so the Router can
// translate it.
func (r *Registry) Lookup(path string) (*models.Route, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *models.Route
	bestLen := -1
	matches := 0
	for _, route := range r.routes {
		if !pathMatches(route.PathPattern, path) {
			continue
		}
		matches++
		if len(route.PathPattern) > bestLen {
			best = route
			bestLen = len(route.PathPattern)
		}
	}
	if matches == 0 {
		return nil, 0
	}
	// Ambiguity only matters among routes tied for the longest match.
	tied := 0
	for _, route := range r.routes {
		if pathMatches(route.PathPattern, path) && len(route.PathPattern) == bestLen {
			tied++
		}
	}
	if tied > 1 {
		return nil, tied
	}
	return best, 1
}

// pathMatches supports an exact match, a "/*" trailing wildcard, and a
// "/{param}" single-segment wildcard, the three shapes the registry YAML
// is expected to express.
func pathMatches(pattern, path string) bool {
	if pattern == path {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		return strings.HasPrefix(path, prefix+"/") || path == prefix
	}

	patternSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSegs := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternSegs) != len(pathSegs) {
		return false
	}
	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			continue
		}
		if seg != pathSegs[i] {
			return false
		}
	}
	return true
}

// Service returns a point-in-time copy of the Service by id, or false if
// unknown. Copying (rather than returning the stored pointer) lets the
// caller use the result after the lock is released without racing
// UpdateHostHealth, which mutates Hosts in place under the writer lock.
func (r *Registry) Service(id uuid.UUID) (*models.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[id]
	if !ok {
		return nil, false
	}
	cp := *s
	cp.Hosts = append([]models.Host(nil), s.Hosts...)
	return &cp, true
}

// AllServiceHosts returns a flattened (serviceID, hostIndex) list across
// every service, for the Health Dispatcher's worker pool to iterate
// without holding the lock for the duration of probing.
func (r *Registry) AllServiceHosts() []ServiceHost {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ServiceHost
	for id, svc := range r.services {
		for i := range svc.Hosts {
			out = append(out, ServiceHost{ServiceID: id, HostIndex: i})
		}
	}
	return out
}

// ServiceHost addresses one host of one service for the Health
// Dispatcher's flattened probe list.
type ServiceHost struct {
	ServiceID uuid.UUID
	HostIndex int
}

// UpdateHostHealth writes a host's health status through the Registry.
// Takes the writer lock only for the duration of the map/slice mutation —
// never while performing network I/O.
func (r *Registry) UpdateHostHealth(serviceID uuid.UUID, hostIndex int, health models.HealthStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[serviceID]
	if !ok {
		return fmt.Errorf("unknown service %s", serviceID)
	}
	if hostIndex < 0 || hostIndex >= len(svc.Hosts) {
		return fmt.Errorf("service %s: host index %d out of range", serviceID, hostIndex)
	}
	svc.Hosts[hostIndex].Health = health
	return nil
}

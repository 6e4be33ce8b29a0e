// Package router is the Gateway Router (spec.md §4.2): the single
// catch-all HTTP entry point that resolves a request to a Route, enforces
// its security group, injects identity headers, and reverse-proxies to a
// healthy host of the owning Service. Built on the standard
// httputil.ReverseProxy Director-override idiom, generalized to a dynamic
// per-request host pick instead of one fixed target per service.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/auth/identityprovider"
	"github.com/lepista-tech/mycelium/auth/token"
	"github.com/lepista-tech/mycelium/config"
	"github.com/lepista-tech/mycelium/gateway/registry"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/identity/profile"
	"github.com/lepista-tech/mycelium/internal/errs"
	"go.uber.org/zap"
)

// Router owns the full request pipeline. It shares its Registry by
// reference with the Health Dispatcher, so host health observed there is
// immediately visible to the next forwarded request.
type Router struct {
	registry    *registry.Registry
	identity    *identityprovider.Chain
	evaluator   *profile.Evaluator
	connStrings *token.ConnectionStringService
	cfg         config.GatewayConfig
	serviceName string
	logger      *zap.Logger
	transport   http.RoundTripper
}

// NewRouter builds a Router. serviceName is this gateway's own identity,
// injected as x-mycelium-service for downstream loop detection (spec.md
// §6).
func NewRouter(
	reg *registry.Registry,
	identity *identityprovider.Chain,
	evaluator *profile.Evaluator,
	connStrings *token.ConnectionStringService,
	cfg config.GatewayConfig,
	serviceName string,
	logger *zap.Logger,
) *Router {
	return &Router{
		registry:    reg,
		identity:    identity,
		evaluator:   evaluator,
		connStrings: connStrings,
		cfg:         cfg,
		serviceName: serviceName,
		logger:      logger,
		transport:   &http.Transport{},
	}
}

// Handler returns the gin.HandlerFunc to register as the catch-all route
// (e.g. engine.NoRoute(router.Handler())).
func (rt *Router) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rt.serve(c)
	}
}

func (rt *Router) serve(c *gin.Context) {
	start := time.Now()
	requestID := uuid.New().String()

	// Step 1: registry lookup.
	route, matches := rt.registry.Lookup(c.Request.URL.Path)
	if route == nil {
		if matches == 0 {
			rt.fail(c, requestID, errs.NotFound("no route matches this path"))
			return
		}
		rt.fail(c, requestID, errs.Wrap(errs.KindInternal, "ambiguous route configuration",
			fmt.Errorf("%d routes tie for path %q", matches, c.Request.URL.Path)))
		return
	}

	// Step 2: method check.
	if !route.AllowsMethod(c.Request.Method) {
		rt.fail(c, requestID, errs.MethodNotAllowed(fmt.Sprintf("method %s is not allowed on this route", c.Request.Method)))
		return
	}

	svc, ok := rt.registry.Service(route.ServiceID)
	if !ok {
		rt.fail(c, requestID, errs.Wrap(errs.KindInternal, "route references an unknown service",
			fmt.Errorf("service %s", route.ServiceID)))
		return
	}

	// Step 3: source reliability.
	if len(route.AllowedSources) > 0 {
		if !anySourceMatches(route.AllowedSources, c.Request.Host) {
			rt.fail(c, requestID, errs.Unauthenticated("request source is not on this route's allow-list"))
			return
		}
	}

	// Step 4: security-group enforcement. The resolved scope (if any) is
	// only meaningful during enforcement itself; nothing downstream of
	// step 5 needs it.
	principal, _, err := rt.enforceSecurity(c, route)
	if err != nil {
		rt.fail(c, requestID, err)
		return
	}

	// Step 5: identity header injection (anti-spoofing strip first).
	stripSpoofableHeaders(c.Request.Header)
	c.Request.Header.Set(headerRequestID, requestID)
	c.Request.Header.Set(headerService, rt.serviceName)
	if principal != nil {
		c.Request.Header.Set(headerEmail, principal.Email)
		encoded, err := json.Marshal(principal)
		if err != nil {
			rt.fail(c, requestID, errs.Wrap(errs.KindInternal, "failed to serialize profile", err))
			return
		}
		c.Request.Header.Set(headerProfile, string(encoded))
	}

	// Step 6: host selection + forward.
	hostIdx, fellBack, ok := selectHost(svc)
	if !ok {
		rt.fail(c, requestID, errs.ServiceUnavailable("no healthy or unprobed host is available for this service"))
		return
	}
	if fellBack && rt.logger != nil {
		rt.logger.Warn("gateway: forwarding to an unprobed host",
			zap.String("service", svc.Name),
			zap.String("host", svc.Hosts[hostIdx].Address),
		)
	}

	rt.forward(c, requestID, route, svc, svc.Hosts[hostIdx].Address, start)
}

// enforceSecurity runs step 4 of the pipeline, returning the resolved
// Profile (Authenticated/RoleScoped variants) or ConnectionStringScope
// (ServiceTokenScoped) — at most one is non-nil.
func (rt *Router) enforceSecurity(c *gin.Context, route *models.Route) (*models.Profile, *models.ConnectionStringScope, error) {
	switch route.Security.Kind {
	case models.SecurityGroupPublic:
		return nil, nil, nil

	case models.SecurityGroupAuthenticated:
		bearer, ok := extractBearer(c)
		if !ok {
			return nil, nil, errs.Unauthenticated("a bearer credential is required for this route")
		}
		result, err := rt.identity.Authenticate(c.Request.Context(), bearer)
		if err != nil {
			return nil, nil, errs.Wrap(errs.KindUnauthenticated, "bearer credential was rejected", err)
		}
		return &models.Profile{Email: result.Email}, result.Scope, nil

	case models.SecurityGroupRoleScoped, models.SecurityGroupRoleScopedWithPermission:
		bearer, ok := extractBearer(c)
		if !ok {
			return nil, nil, errs.Unauthenticated("a bearer credential is required for this route")
		}
		result, err := rt.identity.Authenticate(c.Request.Context(), bearer)
		if err != nil {
			return nil, nil, errs.Wrap(errs.KindUnauthenticated, "bearer credential was rejected", err)
		}
		tenantID, err := tenantIDFromHeader(c)
		if err != nil {
			return nil, nil, err
		}
		if tenantID == nil {
			return nil, nil, errs.InvalidTenantBinding("x-mycelium-tenant-id is required for this route")
		}
		p, err := rt.evaluator.Evaluate(c.Request.Context(), result.Email, tenantID)
		if err != nil {
			return nil, nil, err
		}
		if err := checkRoleAccess(p, route.Security, *tenantID); err != nil {
			return nil, nil, err
		}
		return p, nil, nil

	case models.SecurityGroupServiceTokenScoped:
		presented := c.GetHeader(headerConnString)
		if presented == "" {
			return nil, nil, errs.Unauthenticated("a connection string is required for this route")
		}
		scope, err := rt.connStrings.Validate(c.Request.Context(), presented)
		if err != nil {
			return nil, nil, errs.Wrap(errs.KindUnauthenticated, "connection string was rejected", err)
		}
		if !scope.HasScopes(route.Security.Scopes) {
			return nil, nil, errs.InsufficientPrivileges("connection string does not cover this route's declared scopes")
		}
		return nil, scope, nil

	default:
		return nil, nil, errs.Wrap(errs.KindInternal, "unknown security group kind",
			fmt.Errorf("%q", route.Security.Kind))
	}
}

// checkRoleAccess resolves the RoleScoped / RoleScopedWithPermission
// branches of step 4 against the already-built Profile, reusing the
// fluent CapabilityChain from the Profile Evaluator (spec.md §4.1) instead
// of a bespoke role-matching routine.
func checkRoleAccess(p *models.Profile, sg models.SecurityGroup, tenantID uuid.UUID) error {
	switch sg.Kind {
	case models.SecurityGroupRoleScoped:
		return profile.Chain(p).OnTenant(tenantID).WithRoles(sg.Roles).
			GetTenantWidePermissionOrError(tenantID, models.PermissionRead)

	case models.SecurityGroupRoleScopedWithPermission:
		var lastErr error
		for _, rp := range sg.RolePermissions {
			lastErr = profile.Chain(p).OnTenant(tenantID).WithRoles([]string{rp.Role}).
				GetTenantWidePermissionOrError(tenantID, rp.Permission)
			if lastErr == nil {
				return nil
			}
		}
		if lastErr == nil {
			lastErr = errs.InsufficientPrivileges("route declares no role/permission pairs")
		}
		return lastErr
	}
	return nil
}

// forward performs step 6 (the pass-through proxy), step 7 (response
// header filtering), and step 8 (observability) in one pass.
func (rt *Router) forward(c *gin.Context, requestID string, route *models.Route, svc *models.Service, hostAddr string, start time.Time) {
	targetURL, err := url.Parse(svc.Protocol + "://" + hostAddr)
	if err != nil {
		rt.fail(c, requestID, errs.Wrap(errs.KindInternal, "invalid host address", err))
		return
	}

	timeout := rt.cfg.ProxyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()
	req := c.Request.Clone(ctx)

	proxy := httputil.NewSingleHostReverseProxy(targetURL)
	proxy.Transport = rt.transport
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = targetURL.Host
	}
	proxy.ModifyResponse = func(resp *http.Response) error {
		filterResponseHeaders(resp.Header, route.ResponseHeaderKey)
		return nil
	}
	var proxyErr error
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		proxyErr = err
	}

	proxy.ServeHTTP(c.Writer, req)
	latency := time.Since(start)

	if proxyErr != nil {
		kind := errs.KindUpstream
		if errors.Is(proxyErr, context.DeadlineExceeded) {
			kind = errs.KindTimeout
		}
		rt.fail(c, requestID, errs.Wrap(kind, "downstream request failed", proxyErr))
		return
	}

	if rt.logger != nil {
		rt.logger.Info("gateway request forwarded",
			zap.String("request_id", requestID),
			zap.String("service", svc.Name),
			zap.String("host", hostAddr),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
		)
	}
}

// fail writes the gateway's standard error envelope and logs per errs'
// Expected convention: user-visible errors at info, system failures at
// error. The request id doubles as the correlation id the timeout
// contract (spec.md §4.2 "Timeouts") requires in the body.
func (rt *Router) fail(c *gin.Context, requestID string, err error) {
	e := errs.As(err)
	status := errs.HTTPStatus(e.Kind)
	c.JSON(status, gin.H{
		"error":          string(e.Kind),
		"message":        e.Message,
		"request_id":     requestID,
		"correlation_id": requestID,
	})
	c.Abort()

	if rt.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.String("kind", string(e.Kind)),
	}
	if e.Expected {
		rt.logger.Info("gateway request rejected", fields...)
	} else {
		rt.logger.Error("gateway request failed", append(fields, zap.Error(e))...)
	}
}

func extractBearer(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}

func tenantIDFromHeader(c *gin.Context) (*uuid.UUID, error) {
	raw := c.GetHeader(headerTenantID)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.New(errs.KindBadRequest, "x-mycelium-tenant-id is not a valid uuid")
	}
	return &id, nil
}

func anySourceMatches(patterns []string, host string) bool {
	for _, pattern := range patterns {
		if matchesGlob(pattern, host) {
			return true
		}
	}
	return false
}

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/auth/identityprovider"
	"github.com/lepista-tech/mycelium/auth/token"
	"github.com/lepista-tech/mycelium/config"
	"github.com/lepista-tech/mycelium/gateway/registry"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/identity/profile"
	"github.com/lepista-tech/mycelium/storage/interfaces"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubIdentityProvider satisfies identityprovider.Provider for router
// pipeline tests, avoiding real JWT/OIDC machinery.
type stubIdentityProvider struct {
	email string
	err   error
}

func (p *stubIdentityProvider) Name() string { return "stub" }

func (p *stubIdentityProvider) Authenticate(ctx context.Context, bearer string) (*identityprovider.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &identityprovider.Result{Email: p.email}, nil
}

type stubBaselines struct {
	baseline *profile.Baseline
}

func (s *stubBaselines) FetchBaseline(ctx context.Context, email string) (*profile.Baseline, error) {
	return s.baseline, nil
}

type stubLicenses struct {
	resources []models.LicensedResource
}

func (s *stubLicenses) FetchLicensedResources(ctx context.Context, email string, tenantID *uuid.UUID) ([]models.LicensedResource, error) {
	return s.resources, nil
}

// noopTokenRepo is never exercised by the Public/Authenticated/RoleScoped
// pipeline tests; it backs the ConnectionStringService dependency every
// Router needs wired regardless of whether a given test's route uses it.
type noopTokenRepo struct{}

func (noopTokenRepo) Create(ctx context.Context, t *models.Token) error          { return nil }
func (noopTokenRepo) GetByID(ctx context.Context, id int64) (*models.Token, error) { return nil, nil }
func (noopTokenRepo) Revoke(ctx context.Context, id int64) error                 { return nil }

var _ interfaces.TokenRepository = noopTokenRepo{}

func newTestRegistry(t *testing.T, backend *httptest.Server, security models.SecurityGroup, methods []string) (*registry.Registry, uuid.UUID) {
	t.Helper()
	reg := registry.New()
	serviceID := uuid.New()
	routeID := uuid.New()
	if methods == nil {
		methods = []string{http.MethodGet}
	}
	err := reg.Load(registry.Document{
		Services: []registry.ServiceSpec{{
			ID:       serviceID.String(),
			Name:     "backend",
			Protocol: "http",
			Hosts:    []string{backend.Listener.Addr().String()},
		}},
		Routes: []registry.RouteSpec{{
			ID:             routeID.String(),
			PathPattern:    "/widgets",
			AllowedMethods: methods,
			ServiceID:      serviceID.String(),
			Security:       toSecuritySpec(security),
		}},
	})
	require.NoError(t, err)
	return reg, serviceID
}

func toSecuritySpec(sg models.SecurityGroup) registry.SecurityGroupSpec {
	spec := registry.SecurityGroupSpec{Kind: string(sg.Kind), Roles: sg.Roles}
	for _, rp := range sg.RolePermissions {
		spec.RolePermissions = append(spec.RolePermissions, registry.RolePermissionSpec{
			Role: rp.Role, Permission: rp.Permission.String(),
		})
	}
	for _, s := range sg.Scopes {
		spec.Scopes = append(spec.Scopes, string(s))
	}
	return spec
}

func markHealthy(t *testing.T, reg *registry.Registry, serviceID uuid.UUID) {
	t.Helper()
	require.NoError(t, reg.UpdateHostHealth(serviceID, 0, models.HealthStatus{Kind: models.HealthHealthy}))
}

func newTestEngine(rt *Router) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.NoRoute(rt.Handler())
	return engine
}

func newTestRouter(reg *registry.Registry, chain *identityprovider.Chain) *Router {
	evaluator := profile.NewEvaluator(&stubBaselines{baseline: &profile.Baseline{}}, &stubLicenses{})
	connStrings := token.NewConnectionStringService(noopTokenRepo{})
	return NewRouter(reg, chain, evaluator, connStrings, config.GatewayConfig{}, "mycelium-gateway-test", zap.NewNop())
}

func TestRouter_PublicRoute_ForwardsAndInjectsHeaders(t *testing.T) {
	var gotRequestID, gotService, gotEmail string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(headerRequestID)
		gotService = r.Header.Get(headerService)
		gotEmail = r.Header.Get(headerEmail)
		w.Header().Set("Connection", "close")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer backend.Close()

	reg, serviceID := newTestRegistry(t, backend, models.SecurityGroup{Kind: models.SecurityGroupPublic}, nil)
	markHealthy(t, reg, serviceID)

	rt := newTestRouter(reg, identityprovider.NewChain(zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	rec := httptest.NewRecorder()
	engine := newTestEngine(rt)
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, gotRequestID)
	require.Equal(t, "mycelium-gateway-test", gotService)
	require.Empty(t, gotEmail, "a Public route has no authenticated principal to inject")
	require.Empty(t, rec.Header().Get("Connection"), "hop-by-hop headers must be stripped from the response")
}

func TestRouter_AuthenticatedRoute_MissingBearer_Is401(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should never be reached without a bearer")
	}))
	defer backend.Close()

	reg, serviceID := newTestRegistry(t, backend, models.SecurityGroup{Kind: models.SecurityGroupAuthenticated}, nil)
	markHealthy(t, reg, serviceID)
	rt := newTestRouter(reg, identityprovider.NewChain(zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	rec := httptest.NewRecorder()
	newTestEngine(rt).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AuthenticatedRoute_ValidBearer_InjectsEmail(t *testing.T) {
	var gotEmail string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = r.Header.Get(headerEmail)
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	reg, serviceID := newTestRegistry(t, backend, models.SecurityGroup{Kind: models.SecurityGroupAuthenticated}, nil)
	markHealthy(t, reg, serviceID)
	chain := identityprovider.NewChain(zap.NewNop(), &stubIdentityProvider{email: "alice@example.com"})
	rt := newTestRouter(reg, chain)

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	// a client attempting to spoof the injected identity headers directly
	req.Header.Set(headerEmail, "attacker@example.com")
	rec := httptest.NewRecorder()
	newTestEngine(rt).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice@example.com", gotEmail)
}

func TestRouter_UnknownPath_Is404(t *testing.T) {
	reg := registry.New()
	rt := newTestRouter(reg, identityprovider.NewChain(zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	rec := httptest.NewRecorder()
	newTestEngine(rt).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DisallowedMethod_Is405(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should never be reached on a disallowed method")
	}))
	defer backend.Close()

	reg, serviceID := newTestRegistry(t, backend, models.SecurityGroup{Kind: models.SecurityGroupPublic}, []string{http.MethodGet})
	markHealthy(t, reg, serviceID)
	rt := newTestRouter(reg, identityprovider.NewChain(zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/widgets", nil)
	rec := httptest.NewRecorder()
	newTestEngine(rt).ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_NoHealthyHost_Is503(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // closed immediately: never reachable, and never marked healthy below

	reg, serviceID := newTestRegistry(t, backend, models.SecurityGroup{Kind: models.SecurityGroupPublic}, nil)
	require.NoError(t, reg.UpdateHostHealth(serviceID, 0, models.HealthStatus{Kind: models.HealthUnhealthy}))
	rt := newTestRouter(reg, identityprovider.NewChain(zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	rec := httptest.NewRecorder()
	newTestEngine(rt).ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_RoleScoped_RequiresTenantHeader(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should never be reached without a tenant header")
	}))
	defer backend.Close()

	sg := models.SecurityGroup{Kind: models.SecurityGroupRoleScoped, Roles: []string{"Manager"}}
	reg, serviceID := newTestRegistry(t, backend, sg, nil)
	markHealthy(t, reg, serviceID)
	chain := identityprovider.NewChain(zap.NewNop(), &stubIdentityProvider{email: "alice@example.com"})
	rt := newTestRouter(reg, chain)

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	newTestEngine(rt).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RoleScoped_StaffBypassesRoleCheck(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	sg := models.SecurityGroup{Kind: models.SecurityGroupRoleScoped, Roles: []string{"Manager"}}
	reg, serviceID := newTestRegistry(t, backend, sg, nil)
	markHealthy(t, reg, serviceID)
	chain := identityprovider.NewChain(zap.NewNop(), &stubIdentityProvider{email: "staff@example.com"})

	evaluator := profile.NewEvaluator(&stubBaselines{baseline: &profile.Baseline{IsStaff: true}}, &stubLicenses{})
	connStrings := token.NewConnectionStringService(noopTokenRepo{})
	rt := NewRouter(reg, chain, evaluator, connStrings, config.GatewayConfig{}, "mycelium-gateway-test", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	req.Header.Set(headerTenantID, uuid.New().String())
	rec := httptest.NewRecorder()
	newTestEngine(rt).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RoleScopedWithPermission_VerifiedGrantForwards(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	tenantID := uuid.New()
	accountID := uuid.New()
	sg := models.SecurityGroup{
		Kind: models.SecurityGroupRoleScopedWithPermission,
		RolePermissions: []models.RolePermission{
			{Role: "Manager", Permission: models.PermissionWrite},
		},
	}
	reg, serviceID := newTestRegistry(t, backend, sg, nil)
	markHealthy(t, reg, serviceID)
	chain := identityprovider.NewChain(zap.NewNop(), &stubIdentityProvider{email: "guest@example.com"})

	evaluator := profile.NewEvaluator(&stubBaselines{baseline: &profile.Baseline{}}, &stubLicenses{
		resources: []models.LicensedResource{
			{TenantID: tenantID, AccountID: accountID, GuestRole: "Manager", Permission: models.PermissionWrite, Verified: true},
		},
	})
	connStrings := token.NewConnectionStringService(noopTokenRepo{})
	rt := NewRouter(reg, chain, evaluator, connStrings, config.GatewayConfig{}, "mycelium-gateway-test", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	req.Header.Set(headerTenantID, tenantID.String())
	rec := httptest.NewRecorder()
	newTestEngine(rt).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RoleScopedWithPermission_InsufficientPermissionIs403(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should never be reached when the grant doesn't cover the route's declared permission")
	}))
	defer backend.Close()

	tenantID := uuid.New()
	accountID := uuid.New()
	sg := models.SecurityGroup{
		Kind: models.SecurityGroupRoleScopedWithPermission,
		RolePermissions: []models.RolePermission{
			{Role: "Manager", Permission: models.PermissionWrite},
		},
	}
	reg, serviceID := newTestRegistry(t, backend, sg, nil)
	markHealthy(t, reg, serviceID)
	chain := identityprovider.NewChain(zap.NewNop(), &stubIdentityProvider{email: "guest@example.com"})

	// Verified, but only for Read — the route requires Write.
	evaluator := profile.NewEvaluator(&stubBaselines{baseline: &profile.Baseline{}}, &stubLicenses{
		resources: []models.LicensedResource{
			{TenantID: tenantID, AccountID: accountID, GuestRole: "Manager", Permission: models.PermissionRead, Verified: true},
		},
	})
	connStrings := token.NewConnectionStringService(noopTokenRepo{})
	rt := NewRouter(reg, chain, evaluator, connStrings, config.GatewayConfig{}, "mycelium-gateway-test", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	req.Header.Set(headerTenantID, tenantID.String())
	rec := httptest.NewRecorder()
	newTestEngine(rt).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

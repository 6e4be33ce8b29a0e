package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/auth/identityprovider"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/identity/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeProvider struct {
	name   string
	result *identityprovider.Result
	err    error
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) Authenticate(ctx context.Context, bearer string) (*identityprovider.Result, error) {
	return p.result, p.err
}

type mockBaselines struct{ mock.Mock }

func (m *mockBaselines) FetchBaseline(ctx context.Context, email string) (*profile.Baseline, error) {
	args := m.Called(ctx, email)
	if b, ok := args.Get(0).(*profile.Baseline); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLicenses struct{ mock.Mock }

func (m *mockLicenses) FetchLicensedResources(ctx context.Context, email string, tenantID *uuid.UUID) ([]models.LicensedResource, error) {
	args := m.Called(ctx, email, tenantID)
	if lrs, ok := args.Get(0).([]models.LicensedResource); ok {
		return lrs, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestRouter(t *testing.T, isStaff bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	provider := &fakeProvider{name: "fake", result: &identityprovider.Result{Email: "staffer@example.com"}}
	chain := identityprovider.NewChain(zaptest.NewLogger(t), provider)

	baselines := &mockBaselines{}
	baselines.On("FetchBaseline", mock.Anything, "staffer@example.com").
		Return(&profile.Baseline{AccountID: uuid.New(), IsStaff: isStaff}, nil)
	licenses := &mockLicenses{}
	licenses.On("FetchLicensedResources", mock.Anything, "staffer@example.com", (*uuid.UUID)(nil)).
		Return([]models.LicensedResource{}, nil)
	evaluator := profile.NewEvaluator(baselines, licenses)

	router := gin.New()
	router.Use(RequireStaff(chain, evaluator, nil))
	router.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return router
}

func TestRequireStaff_RejectsMissingBearer(t *testing.T) {
	router := newTestRouter(t, true)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireStaff_AllowsStaffProfile(t *testing.T) {
	router := newTestRouter(t, true)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireStaff_RejectsNonStaffProfile(t *testing.T) {
	router := newTestRouter(t, false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireStaff_RejectsFailedAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider := &fakeProvider{name: "fake", err: require.AnError}
	chain := identityprovider.NewChain(zaptest.NewLogger(t), provider)
	evaluator := profile.NewEvaluator(&mockBaselines{}, &mockLicenses{})

	router := gin.New()
	router.Use(RequireStaff(chain, evaluator, nil))
	router.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

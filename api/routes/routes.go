package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lepista-tech/mycelium/api/handlers"
	"github.com/lepista-tech/mycelium/api/middleware"
	"github.com/lepista-tech/mycelium/auth/identityprovider"
	"github.com/lepista-tech/mycelium/identity/profile"
	"github.com/lepista-tech/mycelium/identity/ratelimit"
	"github.com/lepista-tech/mycelium/internal/cache"
	"github.com/lepista-tech/mycelium/observability/security_events"
)

// SetupRoutes wires the process's own HTTP surface: process health/metrics
// (ambient, unauthenticated) and the thin staff-only admin API over the
// webhook subscriber registry and Route/Service Registry (spec.md §7 "admin
// endpoint" requirement). This is distinct from — and does not replace —
// the Gateway Router, which is mounted separately as router.NoRoute on the
// same gin.Engine by cmd/server and owns all proxied tenant/service traffic.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	db *sql.DB,
	redisClient *redis.Client,
	cacheClient *cache.Cache,
	authChain *identityprovider.Chain,
	evaluator *profile.Evaluator,
	limiter ratelimit.Limiter,
	eventLogger security_events.Logger,
	webhookHandler *handlers.WebhookHandler,
	registryHandler *handlers.RegistryHandler,
	tenantHandler *handlers.TenantHandler,
	userHandler *handlers.UserHandler,
	guestRoleHandler *handlers.GuestRoleHandler,
	invitationHandler *handlers.InvitationHandler,
) {
	router.Use(middleware.CORS())
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RateLimit(limiter))

	healthHandler := handlers.NewHealthHandlerWithDeps(db, cacheClient, redisClient)
	router.GET("/health", healthHandler.Check)
	router.GET("/health/live", healthHandler.Liveness)
	router.GET("/health/ready", healthHandler.Readiness)

	SetupMetricsRoutes(router)

	admin := router.Group("/admin")
	admin.Use(middleware.RequireStaff(authChain, evaluator, eventLogger))
	admin.Use(middleware.StaffRateLimit(limiter))
	{
		webhooks := admin.Group("/webhooks")
		{
			webhooks.POST("", webhookHandler.CreateWebhook)
			webhooks.GET("", webhookHandler.ListWebhooks)
			webhooks.GET("/:id", webhookHandler.GetWebhook)
			webhooks.PUT("/:id", webhookHandler.UpdateWebhook)
			webhooks.DELETE("/:id", webhookHandler.DeleteWebhook)
			webhooks.GET("/artifacts/:id", webhookHandler.GetArtifact)
			webhooks.GET("/artifacts/:id/responses", webhookHandler.GetArtifactResponses)
		}

		registryGroup := admin.Group("/registry")
		{
			registryGroup.POST("/reload", registryHandler.Reload)
		}

		tenants := admin.Group("/tenants")
		{
			tenants.POST("", tenantHandler.CreateTenant)
			tenants.GET("", tenantHandler.ListTenants)
			tenants.GET("/:id", tenantHandler.GetTenant)
			tenants.PUT("/:id", tenantHandler.UpdateTenant)
			tenants.POST("/:id/status", tenantHandler.ChangeTenantStatus)
		}

		users := admin.Group("/users")
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		guestRoles := admin.Group("/guest-roles")
		{
			guestRoles.POST("", guestRoleHandler.CreateGuestRole)
			guestRoles.GET("", guestRoleHandler.ListGuestRoles)
			guestRoles.GET("/:id", guestRoleHandler.GetGuestRole)
			guestRoles.DELETE("/:id", guestRoleHandler.DeleteGuestRole)
			guestRoles.POST("/:id/children", guestRoleHandler.AddChild)
			guestRoles.DELETE("/:id/children/:childId", guestRoleHandler.RemoveChild)
		}

		invitations := admin.Group("/invitations")
		{
			invitations.POST("", invitationHandler.CreateInvitation)
			invitations.GET("/:id", invitationHandler.GetInvitation)
			invitations.POST("/:id/accept", invitationHandler.AcceptInvitation)
			invitations.DELETE("/:id", invitationHandler.DeleteInvitation)
		}
		admin.GET("/accounts/:accountId/invitations", invitationHandler.ListInvitations)
	}
}

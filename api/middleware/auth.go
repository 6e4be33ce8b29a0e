package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lepista-tech/mycelium/auth/identityprovider"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/identity/profile"
	"github.com/lepista-tech/mycelium/observability/security_events"
)

const profileContextKey = "profile"

// RequireStaff authenticates the bearer credential through the same
// multi-provider chain and Profile Evaluator the Gateway Router runs on the
// proxied path (spec.md §4.1, §4.4), then rejects anyone whose resulting
// Profile isn't staff. These admin endpoints sit outside the registry's
// routed traffic, but they reuse its authentication stack rather than a
// parallel one.
func RequireStaff(chain *identityprovider.Chain, evaluator *profile.Evaluator, eventLogger security_events.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := extractBearer(c)
		if bearer == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Authorization header is required"})
			c.Abort()
			return
		}

		result, err := chain.Authenticate(c.Request.Context(), bearer)
		if err != nil {
			logAuthFailure(c, eventLogger, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Invalid credential"})
			c.Abort()
			return
		}

		prof, err := evaluator.Evaluate(c.Request.Context(), result.Email, nil)
		if err != nil {
			logAuthFailure(c, eventLogger, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Profile could not be resolved"})
			c.Abort()
			return
		}

		if !prof.IsStaff {
			if eventLogger != nil {
				eventLogger.LogEvent(c.Request.Context(), security_events.NewSecurityEvent(
					security_events.EventPermissionDenied, security_events.SeverityWarning,
				).WithIP(c.ClientIP()).WithResource(c.Request.URL.Path).WithAction(c.Request.Method).WithResult("denied"))
			}
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "Staff access required"})
			c.Abort()
			return
		}

		c.Set(profileContextKey, prof)
		c.Next()
	}
}

// GetProfile returns the authenticated Profile a prior RequireStaff call
// attached to the request context.
func GetProfile(c *gin.Context) (*models.Profile, bool) {
	v, exists := c.Get(profileContextKey)
	if !exists {
		return nil, false
	}
	prof, ok := v.(*models.Profile)
	return prof, ok
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

func logAuthFailure(c *gin.Context, eventLogger security_events.Logger, err error) {
	if eventLogger == nil {
		return
	}
	event := security_events.NewSecurityEvent(security_events.EventAuthFailure, security_events.SeverityWarning).
		WithIP(c.ClientIP()).
		WithResource(c.Request.URL.Path).
		WithAction(c.Request.Method).
		WithResult("failure").
		WithDetail("reason", err.Error())
	eventLogger.LogEvent(c.Request.Context(), event)
}

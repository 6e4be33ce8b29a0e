package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lepista-tech/mycelium/internal/cache"
	"github.com/redis/go-redis/v9"
)

// HealthHandler serves the process-level liveness/readiness surface,
// distinct from the Gateway Router's per-route Health Dispatcher (spec.md
// §4.6), which tracks downstream service hosts rather than this process.
type HealthHandler struct {
	db          *sql.DB
	cacheClient *cache.Cache
	redisClient *redis.Client
}

// NewHealthHandler creates a health handler with no dependencies, useful
// for a bare liveness probe.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// NewHealthHandlerWithDeps creates a health handler that also reports on
// the Postgres and Redis connections it's handed.
func NewHealthHandlerWithDeps(db *sql.DB, cacheClient *cache.Cache, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, cacheClient: cacheClient, redisClient: redisClient}
}

// HealthResponse is the body returned by Check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health.
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			response.Status = "unhealthy"
			response.Checks["database"] = "unhealthy: " + err.Error()
		} else {
			response.Checks["database"] = "healthy"
		}
	} else {
		response.Checks["database"] = "not_configured"
	}

	if h.redisClient != nil {
		if err := h.redisClient.Ping(c.Request.Context()).Err(); err != nil {
			response.Status = "unhealthy"
			response.Checks["redis"] = "unhealthy: " + err.Error()
		} else {
			response.Checks["redis"] = "healthy"
		}
	} else {
		response.Checks["redis"] = "not_configured"
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

// Liveness handles GET /health/live, a dependency-free process check for
// the Kubernetes liveness probe.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness handles GET /health/ready. Redis is treated as degraded, not
// fatal, since the Gateway Router falls back to direct DB reads when the
// cache is unavailable; Postgres is not.
func (h *HealthHandler) Readiness(c *gin.Context) {
	response := gin.H{"status": "ready"}

	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			response["status"] = "not_ready"
			response["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response["database"] = "ready"
	}

	if h.redisClient != nil {
		if err := h.redisClient.Ping(c.Request.Context()).Err(); err != nil {
			response["redis"] = "degraded"
		} else {
			response["redis"] = "ready"
		}
	}

	c.JSON(http.StatusOK, response)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lepista-tech/mycelium/config"
	"github.com/lepista-tech/mycelium/gateway/registry"
)

// RegistryHandler exposes a staff-only admin reload for the Route/Service
// Registry (spec.md §4.5), so an operator can push a new registry.yaml
// without restarting the process.
type RegistryHandler struct {
	registry *registry.Registry
	cfg      config.GatewayConfig
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(reg *registry.Registry, cfg config.GatewayConfig) *RegistryHandler {
	return &RegistryHandler{registry: reg, cfg: cfg}
}

// Reload handles POST /admin/registry/reload, re-reading the configured
// registry file and swapping it in under the Registry's writer lock.
func (h *RegistryHandler) Reload(c *gin.Context) {
	if err := h.registry.LoadFile(h.cfg.RegistryPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

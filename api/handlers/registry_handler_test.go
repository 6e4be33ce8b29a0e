package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lepista-tech/mycelium/config"
	"github.com/lepista-tech/mycelium/gateway/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegistryYAML = `
services:
  - id: "11111111-1111-1111-1111-111111111111"
    name: billing
    protocol: http
    hosts: ["billing-1:8080"]
    health_check_path: /healthz
    discoverable: true
routes:
  - id: "22222222-2222-2222-2222-222222222222"
    path_pattern: /billing/*
    allowed_methods: ["GET"]
    service_id: "11111111-1111-1111-1111-111111111111"
    security:
      kind: public
`

func TestRegistryHandler_ReloadSucceeds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRegistryYAML), 0o644))

	reg := registry.New()
	h := NewRegistryHandler(reg, config.GatewayConfig{RegistryPath: path})

	router := gin.New()
	router.POST("/admin/registry/reload", h.Reload)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/admin/registry/reload", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reloaded")

	_, matches := reg.Lookup("/billing/invoices")
	assert.Equal(t, 1, matches)
}

func TestRegistryHandler_ReloadFailsOnMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := registry.New()
	h := NewRegistryHandler(reg, config.GatewayConfig{RegistryPath: "/nonexistent/registry.yaml"})

	router := gin.New()
	router.POST("/admin/registry/reload", h.Reload)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/admin/registry/reload", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/api/middleware"
	"github.com/lepista-tech/mycelium/identity/webhook"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// WebhookHandler exposes the thin staff-only admin surface over the
// webhook subscriber registry and the artifact/hook-response evidence the
// Webhook Dispatcher leaves behind (spec.md §4.3, §7 "admin endpoint"
// requirement for observing partial fan-out failures).
type WebhookHandler struct {
	webhooks  webhook.ServiceInterface
	artifacts interfaces.ArtifactRepository
	responses interfaces.HookResponseRepository
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(webhooks webhook.ServiceInterface, artifacts interfaces.ArtifactRepository, responses interfaces.HookResponseRepository) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, artifacts: artifacts, responses: responses}
}

// CreateWebhook handles POST /admin/webhooks.
func (h *WebhookHandler) CreateWebhook(c *gin.Context) {
	var req webhook.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	w, err := h.webhooks.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creation_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, w)
}

// GetWebhook handles GET /admin/webhooks/:id.
func (h *WebhookHandler) GetWebhook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid webhook ID"})
		return
	}

	w, err := h.webhooks.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Webhook not found"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// ListWebhooks handles GET /admin/webhooks.
func (h *WebhookHandler) ListWebhooks(c *gin.Context) {
	webhooks, err := h.webhooks.List(c.Request.Context(), &interfaces.WebhookFilters{Page: 1, PageSize: 100})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, webhooks)
}

// UpdateWebhook handles PUT /admin/webhooks/:id.
func (h *WebhookHandler) UpdateWebhook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid webhook ID"})
		return
	}

	var req webhook.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	w, err := h.webhooks.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeleteWebhook handles DELETE /admin/webhooks/:id.
func (h *WebhookHandler) DeleteWebhook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid webhook ID"})
		return
	}

	if err := h.webhooks.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed", "message": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetArtifact handles GET /admin/webhooks/artifacts/:id, surfacing a
// payload artifact's delivery status and attempt count.
func (h *WebhookHandler) GetArtifact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid artifact ID"})
		return
	}

	artifact, err := h.artifacts.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Artifact not found"})
		return
	}
	c.JSON(http.StatusOK, artifact)
}

// GetArtifactResponses handles GET /admin/webhooks/artifacts/:id/responses,
// the per-subscriber delivery outcomes recorded for one artifact — the
// evidence a caller inspects to see which subscribers failed a fan-out.
func (h *WebhookHandler) GetArtifactResponses(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid artifact ID"})
		return
	}

	responses, err := h.responses.GetByArtifactID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, responses)
}

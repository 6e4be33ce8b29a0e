package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/api/middleware"
	"github.com/lepista-tech/mycelium/identity/invitation"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/identity/role"
	"github.com/lepista-tech/mycelium/identity/tenant"
	"github.com/lepista-tech/mycelium/identity/user"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// TenantHandler exposes the staff-only admin surface over tenant
// lifecycle management (spec.md §3 Tenant, §7 "admin endpoint"
// requirement), thin over identity/tenant.ServiceInterface.
type TenantHandler struct {
	tenants tenant.ServiceInterface
}

// NewTenantHandler creates a new tenant handler.
func NewTenantHandler(tenants tenant.ServiceInterface) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// CreateTenant handles POST /admin/tenants.
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req tenant.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	t, err := h.tenants.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creation_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetTenant handles GET /admin/tenants/:id.
func (h *TenantHandler) GetTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid tenant ID"})
		return
	}

	t, err := h.tenants.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Tenant not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// ListTenants handles GET /admin/tenants.
func (h *TenantHandler) ListTenants(c *gin.Context) {
	tenants, err := h.tenants.List(c.Request.Context(), &interfaces.TenantFilters{Page: 1, PageSize: 100})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tenants)
}

// UpdateTenant handles PUT /admin/tenants/:id.
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid tenant ID"})
		return
	}

	var req tenant.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	t, err := h.tenants.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// changeTenantStatusRequest is the body for the status-transition endpoint.
type changeTenantStatusRequest struct {
	Status string    `json:"status" binding:"required"`
	By     uuid.UUID `json:"by" binding:"required"`
}

// ChangeTenantStatus handles POST /admin/tenants/:id/status, advancing the
// status timeline (Active -> Verified -> Trashed -> Archived).
func (h *TenantHandler) ChangeTenantStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid tenant ID"})
		return
	}

	var req changeTenantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	t, err := h.tenants.ChangeStatus(c.Request.Context(), id, models.TenantStatusKind(req.Status), req.By)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transition_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// UserHandler exposes the staff-only admin surface over Principal/User
// management, thin over identity/user.ServiceInterface.
type UserHandler struct {
	users user.ServiceInterface
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users user.ServiceInterface) *UserHandler {
	return &UserHandler{users: users}
}

// CreateUser handles POST /admin/users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	u, err := h.users.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creation_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, u)
}

// GetUser handles GET /admin/users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid user ID"})
		return
	}

	u, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// ListUsers handles GET /admin/users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), &interfaces.UserFilters{Page: 1, PageSize: 100})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser handles PUT /admin/users/:id.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid user ID"})
		return
	}

	var req user.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	u, err := h.users.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeleteUser handles DELETE /admin/users/:id.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid user ID"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed", "message": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GuestRoleHandler exposes the staff-only admin surface over the
// GuestRole catalog and its acyclic Children DAG, thin over
// identity/role.ServiceInterface.
type GuestRoleHandler struct {
	roles role.ServiceInterface
}

// NewGuestRoleHandler creates a new guest-role handler.
func NewGuestRoleHandler(roles role.ServiceInterface) *GuestRoleHandler {
	return &GuestRoleHandler{roles: roles}
}

// CreateGuestRole handles POST /admin/guest-roles.
func (h *GuestRoleHandler) CreateGuestRole(c *gin.Context) {
	var req role.CreateGuestRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	r, err := h.roles.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creation_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GetGuestRole handles GET /admin/guest-roles/:id.
func (h *GuestRoleHandler) GetGuestRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid guest role ID"})
		return
	}

	r, err := h.roles.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Guest role not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListGuestRoles handles GET /admin/guest-roles.
func (h *GuestRoleHandler) ListGuestRoles(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context(), &interfaces.GuestRoleFilters{Page: 1, PageSize: 100})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, roles)
}

// DeleteGuestRole handles DELETE /admin/guest-roles/:id.
func (h *GuestRoleHandler) DeleteGuestRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid guest role ID"})
		return
	}

	if err := h.roles.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed", "message": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// addChildRequest is the body for linking a child role into the DAG.
type addChildRequest struct {
	ChildID uuid.UUID `json:"child_id" binding:"required"`
}

// AddChild handles POST /admin/guest-roles/:id/children, rejecting the
// link if it would close a cycle in the Children DAG.
func (h *GuestRoleHandler) AddChild(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid guest role ID"})
		return
	}

	var req addChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	if err := h.roles.AddChild(c.Request.Context(), id, req.ChildID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "link_rejected", "message": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveChild handles DELETE /admin/guest-roles/:id/children/:childId.
func (h *GuestRoleHandler) RemoveChild(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid guest role ID"})
		return
	}
	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid child role ID"})
		return
	}

	if err := h.roles.RemoveChild(c.Request.Context(), id, childID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unlink_failed", "message": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// InvitationHandler exposes the staff-only admin surface over guest
// invitations: an email licensed to a GuestRole on an Account, pending
// acceptance (spec.md §4.1 rule 5), thin over
// identity/invitation.ServiceInterface.
type InvitationHandler struct {
	invitations invitation.ServiceInterface
}

// NewInvitationHandler creates a new invitation handler.
func NewInvitationHandler(invitations invitation.ServiceInterface) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// CreateInvitation handles POST /admin/invitations.
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	var req invitation.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	inv, err := h.invitations.CreateInvitation(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creation_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// GetInvitation handles GET /admin/invitations/:id.
func (h *InvitationHandler) GetInvitation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid invitation ID"})
		return
	}

	inv, err := h.invitations.GetInvitation(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Invitation not found"})
		return
	}
	c.JSON(http.StatusOK, inv)
}

// ListInvitations handles GET /admin/accounts/:accountId/invitations.
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid account ID"})
		return
	}

	invitations, total, err := h.invitations.ListInvitations(c.Request.Context(), accountID, &invitation.ListInvitationsFilters{Page: 1, PageSize: 100})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations, "total": total})
}

// acceptInvitationRequest is the body for the acceptance endpoint.
type acceptInvitationRequest struct {
	AcceptedBy uuid.UUID `json:"accepted_by" binding:"required"`
	RoleName   string    `json:"role_name" binding:"required"`
}

// AcceptInvitation handles POST /admin/invitations/:id/accept.
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid invitation ID"})
		return
	}

	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid_request",
			"Request validation failed", middleware.FormatValidationErrors(err))
		return
	}

	inv, err := h.invitations.AcceptInvitation(c.Request.Context(), id, req.AcceptedBy, req.RoleName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "acceptance_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, inv)
}

// DeleteInvitation handles DELETE /admin/invitations/:id.
func (h *InvitationHandler) DeleteInvitation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "message": "Invalid invitation ID"})
		return
	}

	if err := h.invitations.DeleteInvitation(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed", "message": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-auth/internal/http/response"
	"github.com/yungbote/neurobridge-auth/internal/services"
)

type RoleHandler struct {
	roleService services.RoleService
}

func NewRoleHandler(roleService services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (rh *RoleHandler) List(c *gin.Context) {
	roles, err := rh.roleService.List(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"roles": roles})
}

func (rh *RoleHandler) Create(c *gin.Context) {
	var req struct {
		Role        string `json:"role"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, err)
		return
	}
	created, err := rh.roleService.Create(c.Request.Context(), req.Role, req.Description)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, created)
}

// Delete reports what actually happened instead of a fixed message, so
// a client can tell a removal from a no-op.
func (rh *RoleHandler) Delete(c *gin.Context) {
	name := c.Param("role_name")
	deleted, err := rh.roleService.Delete(c.Request.Context(), name)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	msg := "The provided role does not exist"
	if deleted {
		msg = "Role deleted"
	}
	response.RespondOK(c, gin.H{"deleted": deleted, "message": msg})
}

// AddRole is the collaborator demo that stamps the configured demo
// account with the base Roles claim.
func (rh *RoleHandler) AddRole(c *gin.Context) {
	if err := rh.roleService.GrantDemoRoles(c.Request.Context()); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Role added"})
}

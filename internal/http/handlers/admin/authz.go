package admin

import (
	"errors"
	"strings"

	"github.com/hostdesk/internal/authz"
	"github.com/hostdesk/internal/constants"
	handlershared "github.com/hostdesk/internal/http/handlers/shared"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/models"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetUserRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 获取当前员工权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	role := handlershared.GetUserRole(c)
	roles, err := h.AuthzService.GetUserRoles(operatorID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	policies, err := h.AuthzService.GetEffectivePolicies(operatorID, role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"user_id":      operatorID,
		"account_role": role,
		"roles":        roles,
		"policies":     policies,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	operatorID, _ := handlershared.GetUserID(c)
	requestLog(c).Infow("admin_authz_role_created", "operator_id", operatorID, "role", role)
	h.recordAudit(c, constants.AuditActionRoleCreated, constants.AuditTargetRole, 0, models.JSON{"role": role})
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除角色
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		if errors.Is(err, authz.ErrRoleImmutable) {
			respondError(c, response.CodeForbidden, "error.role_immutable", err)
			return
		}
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	operatorID, _ := handlershared.GetUserID(c)
	requestLog(c).Infow("admin_authz_role_deleted", "operator_id", operatorID, "role", role)
	h.recordAudit(c, constants.AuditActionRoleDeleted, constants.AuditTargetRole, 0, models.JSON{"role": role})
	response.Success(c, nil)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	operatorID, _ := handlershared.GetUserID(c)
	requestLog(c).Infow("admin_authz_policy_granted",
		"operator_id", operatorID,
		"role", req.Role,
		"object", authz.NormalizeObject(req.Object),
		"action", authz.NormalizeAction(req.Action),
	)
	h.recordAudit(c, constants.AuditActionPolicyGranted, constants.AuditTargetRole, 0, policyAuditDetail(req))
	response.Success(c, nil)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	operatorID, _ := handlershared.GetUserID(c)
	requestLog(c).Infow("admin_authz_policy_revoked",
		"operator_id", operatorID,
		"role", req.Role,
		"object", authz.NormalizeObject(req.Object),
		"action", authz.NormalizeAction(req.Action),
	)
	h.recordAudit(c, constants.AuditActionPolicyRevoked, constants.AuditTargetRole, 0, policyAuditDetail(req))
	response.Success(c, nil)
}

// GetAuthzUserRoles 获取员工的附加角色
func (h *Handler) GetAuthzUserRoles(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}
	roles, err := h.AuthzService.GetUserRoles(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzUserRoles 覆盖员工附加角色
func (h *Handler) SetAuthzUserRoles(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}
	var req authzSetUserRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserService.Get(userID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.user_fetch_failed")
		return
	}
	if !isStaffRole(user.Role) {
		respondError(c, response.CodeBadRequest, "error.user_role_invalid", nil)
		return
	}
	if err := h.AuthzService.SetUserRoles(userID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	operatorID, _ := handlershared.GetUserID(c)
	requestLog(c).Infow("admin_authz_user_roles_updated",
		"operator_id", operatorID,
		"user_id", userID,
		"roles", strings.Join(req.Roles, ","),
	)
	h.recordAudit(c, constants.AuditActionUserRolesSet, constants.AuditTargetUser, userID, models.JSON{"roles": req.Roles})
	roles, err := h.AuthzService.GetUserRoles(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

func policyAuditDetail(req authzPolicyPayload) models.JSON {
	return models.JSON{
		"role":   req.Role,
		"object": authz.NormalizeObject(req.Object),
		"action": authz.NormalizeAction(req.Action),
	}
}

package admin

import (
	"strconv"
	"strings"

	"github.com/hostdesk/internal/constants"
	handlershared "github.com/hostdesk/internal/http/handlers/shared"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateAdminUserRequest 后台更新用户请求
type UpdateAdminUserRequest struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

// ListUsers 后台用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	users, total, err := h.UserService.List(repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Role:        strings.TrimSpace(c.Query("role")),
		Status:      strings.TrimSpace(c.Query("status")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, handlershared.BuildPagination(page, pageSize, total))
}

// GetUser 后台用户详情（附推广概览）
func (h *Handler) GetUser(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}
	user, err := h.UserService.Get(userID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.user_fetch_failed")
		return
	}
	dashboard, err := h.AffiliateService.GetDashboard(userID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.affiliate_fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"user":      user,
		"affiliate": dashboard,
	})
}

// UpdateUser 后台修改用户角色或状态
func (h *Handler) UpdateUser(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}
	var req UpdateAdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserService.Update(operatorID, userID, service.AdminUpdateUserInput{
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.user_update_failed")
		return
	}
	requestLog(c).Infow("admin_user_updated", "operator_id", operatorID, "user_id", userID)
	h.recordAudit(c, constants.AuditActionUserUpdated, constants.AuditTargetUser, userID, models.JSON{
		"role":   user.Role,
		"status": user.Status,
	})
	response.Success(c, user)
}

// GetUserReferrals 后台查看用户推荐树
func (h *Handler) GetUserReferrals(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}
	level, _ := strconv.Atoi(c.DefaultQuery("level", "0"))
	page, pageSize := handlershared.ParsePagination(c)
	tree, total, err := h.ReferralService.GetTree(userID, level, page, pageSize)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.referral_fetch_failed")
		return
	}
	response.SuccessWithPage(c, tree, handlershared.BuildPagination(page, pageSize, total))
}

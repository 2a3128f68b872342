package admin

import (
	"strings"

	handlershared "github.com/hostdesk/internal/http/handlers/shared"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// ListLoginLogs 后台登录日志列表
func (h *Handler) ListLoginLogs(c *gin.Context) {
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
	logs, total, err := h.UserLoginLogService.ListForAdmin(repository.UserLoginLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      handlershared.ParseUintQuery(c, "user_id"),
		Email:       strings.TrimSpace(c.Query("email")),
		Status:      strings.TrimSpace(c.Query("status")),
		FailReason:  strings.TrimSpace(c.Query("fail_reason")),
		ClientIP:    strings.TrimSpace(c.Query("client_ip")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.login_log_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, logs, handlershared.BuildPagination(page, pageSize, total))
}

// ListAuditLogs 后台员工操作审计列表
func (h *Handler) ListAuditLogs(c *gin.Context) {
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
	logs, total, err := h.StaffAuditService.ListForAdmin(repository.StaffAuditLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		OperatorID:  handlershared.ParseUintQuery(c, "operator_id"),
		Action:      c.Query("action"),
		TargetType:  c.Query("target_type"),
		TargetID:    handlershared.ParseUintQuery(c, "target_id"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.audit_log_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, logs, handlershared.BuildPagination(page, pageSize, total))
}

// recordAudit 写入员工操作审计；失败只记日志
func (h *Handler) recordAudit(c *gin.Context, action, targetType string, targetID uint, detail models.JSON) {
	if h == nil || h.StaffAuditService == nil {
		return
	}
	operatorID, _ := c.Get("user_id")
	id, _ := operatorID.(uint)
	if err := h.StaffAuditService.Record(service.StaffAuditRecordInput{
		OperatorID: id,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		RequestID:  handlershared.GetRequestID(c),
		Detail:     detail,
	}); err != nil {
		requestLog(c).Warnw("admin_audit_record_failed", "action", action, "error", err)
	}
}

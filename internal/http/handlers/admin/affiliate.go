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

// ActivateAffiliateRequest 后台开通推广资格请求
type ActivateAffiliateRequest struct {
	Lifetime bool `json:"lifetime"`
	Days     int  `json:"days"`
}

// CancelCommissionRequest 取消佣金请求
type CancelCommissionRequest struct {
	Reason string `json:"reason"`
}

// ReviewPayoutRequest 提现审核请求
type ReviewPayoutRequest struct {
	Action            string `json:"action" binding:"required"`
	AdminNote         string `json:"admin_note"`
	TransferReference string `json:"transfer_reference"`
}

// ListAffiliates 推广资格列表
func (h *Handler) ListAffiliates(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	rows, total, err := h.AffiliateService.ListSubscriptions(repository.SubscriptionListFilter{
		Page:     page,
		PageSize: pageSize,
		IsActive: parseBoolNullable(c.Query("is_active")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.affiliate_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, handlershared.BuildPagination(page, pageSize, total))
}

// ActivateAffiliate 后台手动开通推广资格
func (h *Handler) ActivateAffiliate(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}
	var req ActivateAffiliateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	sub, err := h.AffiliateService.AdminActivate(userID, service.AdminActivateInput{
		Lifetime: req.Lifetime,
		Days:     req.Days,
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.affiliate_update_failed")
		return
	}
	operatorID, _ := handlershared.GetUserID(c)
	requestLog(c).Infow("admin_affiliate_activated", "operator_id", operatorID, "user_id", userID, "lifetime", req.Lifetime, "days", req.Days)
	h.recordAudit(c, constants.AuditActionAffiliateActivated, constants.AuditTargetUser, userID, models.JSON{
		"lifetime": req.Lifetime,
		"days":     req.Days,
	})
	response.Success(c, sub)
}

// DeactivateAffiliate 后台停用推广资格
func (h *Handler) DeactivateAffiliate(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}
	sub, err := h.AffiliateService.AdminDeactivate(userID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.affiliate_update_failed")
		return
	}
	operatorID, _ := handlershared.GetUserID(c)
	requestLog(c).Infow("admin_affiliate_deactivated", "operator_id", operatorID, "user_id", userID)
	h.recordAudit(c, constants.AuditActionAffiliateDeactivated, constants.AuditTargetUser, userID, nil)
	response.Success(c, sub)
}

// ListCommissions 后台佣金列表
func (h *Handler) ListCommissions(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	level, _ := strconv.Atoi(c.DefaultQuery("level", "0"))
	rows, total, err := h.CommissionService.ListAdmin(repository.CommissionListFilter{
		Page:       page,
		PageSize:   pageSize,
		ReferrerID: handlershared.ParseUintQuery(c, "referrer_id"),
		OrderID:    handlershared.ParseUintQuery(c, "order_id"),
		Level:      level,
		Status:     strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, handlershared.BuildPagination(page, pageSize, total))
}

// ApproveCommission 手动审核通过佣金
func (h *Handler) ApproveCommission(c *gin.Context) {
	commissionID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.commission_id_invalid", nil)
		return
	}
	row, err := h.CommissionService.AdminApprove(commissionID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.commission_update_failed")
		return
	}
	h.recordAudit(c, constants.AuditActionCommissionApproved, constants.AuditTargetCommission, commissionID, nil)
	response.Success(c, row)
}

// CancelCommission 取消佣金
func (h *Handler) CancelCommission(c *gin.Context) {
	commissionID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.commission_id_invalid", nil)
		return
	}
	var req CancelCommissionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	row, err := h.CommissionService.AdminCancel(commissionID, req.Reason)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.commission_update_failed")
		return
	}
	h.recordAudit(c, constants.AuditActionCommissionCancelled, constants.AuditTargetCommission, commissionID, models.JSON{"reason": req.Reason})
	response.Success(c, row)
}

// ListPayouts 后台提现列表
func (h *Handler) ListPayouts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	rows, total, err := h.PayoutService.ListAdmin(repository.PayoutListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   handlershared.ParseUintQuery(c, "user_id"),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.payout_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, handlershared.BuildPagination(page, pageSize, total))
}

// GetPayout 后台提现详情
func (h *Handler) GetPayout(c *gin.Context) {
	payoutID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.payout_id_invalid", nil)
		return
	}
	payout, err := h.PayoutService.GetForAdmin(payoutID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.payout_fetch_failed")
		return
	}
	response.Success(c, payout)
}

// ReviewPayout 审核提现（approve / reject / complete）
func (h *Handler) ReviewPayout(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	payoutID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.payout_id_invalid", nil)
		return
	}
	var req ReviewPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	payout, err := h.PayoutService.Review(operatorID, payoutID, service.PayoutReviewInput{
		Action:            req.Action,
		AdminNote:         req.AdminNote,
		TransferReference: req.TransferReference,
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.payout_update_failed")
		return
	}
	h.recordAudit(c, constants.AuditActionPayoutReviewed, constants.AuditTargetPayout, payoutID, models.JSON{
		"action":             req.Action,
		"status":             payout.Status,
		"transfer_reference": req.TransferReference,
	})
	response.Success(c, payout)
}

// GetAffiliateSetting 获取推广计划设置
func (h *Handler) GetAffiliateSetting(c *gin.Context) {
	setting, err := h.SettingService.GetAffiliateSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateAffiliateSetting 更新推广计划设置
func (h *Handler) UpdateAffiliateSetting(c *gin.Context) {
	var req service.AffiliateSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	setting, err := h.SettingService.UpdateAffiliateSetting(req)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.config_save_failed")
		return
	}
	operatorID, _ := handlershared.GetUserID(c)
	requestLog(c).Infow("admin_affiliate_setting_updated", "operator_id", operatorID, "enabled", setting.Enabled)
	h.recordAudit(c, constants.AuditActionSettingUpdated, constants.AuditTargetSetting, 0, models.JSON{
		"key":     constants.SettingKeyAffiliateConfig,
		"setting": service.AffiliateSettingToMap(setting),
	})
	response.Success(c, setting)
}

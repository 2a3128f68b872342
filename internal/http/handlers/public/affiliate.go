package public

import (
	"strconv"
	"strings"

	handlershared "github.com/hostdesk/internal/http/handlers/shared"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PayoutCreateRequest 提现申请请求
type PayoutCreateRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method" binding:"required"`
	Account string          `json:"account" binding:"required"`
}

// GetAffiliateDashboard 推广中心概览
func (h *Handler) GetAffiliateDashboard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	dashboard, err := h.AffiliateService.GetDashboard(userID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.affiliate_fetch_failed")
		return
	}
	response.Success(c, dashboard)
}

// ActivateAffiliate 创建推广权限开通订单
func (h *Handler) ActivateAffiliate(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.CreateAffiliateOrder(userID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.order_create_failed")
		return
	}
	response.Success(c, order)
}

// GetReferralTree 下级推广关系（可按层级筛选）
func (h *Handler) GetReferralTree(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	level := 0
	if raw := strings.TrimSpace(c.Query("level")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.referral_level_invalid", err)
			return
		}
		level = parsed
	}
	page, pageSize := handlershared.ParsePagination(c)
	tree, total, err := h.ReferralService.GetTree(userID, level, page, pageSize)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.referral_fetch_failed")
		return
	}
	response.SuccessWithPage(c, tree, handlershared.BuildPagination(page, pageSize, total))
}

// ListMyCommissions 我的佣金明细
func (h *Handler) ListMyCommissions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	rows, total, err := h.CommissionService.ListForUser(userID, strings.TrimSpace(c.Query("status")), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, handlershared.BuildPagination(page, pageSize, total))
}

// ListMyPayouts 我的提现记录
func (h *Handler) ListMyPayouts(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	rows, total, err := h.PayoutService.ListForUser(userID, strings.TrimSpace(c.Query("status")), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.payout_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, handlershared.BuildPagination(page, pageSize, total))
}

// RequestPayout 申请提现
func (h *Handler) RequestPayout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req PayoutCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	payout, err := h.PayoutService.Request(userID, service.PayoutRequestInput{
		Amount:  req.Amount,
		Method:  req.Method,
		Account: req.Account,
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.payout_create_failed")
		return
	}
	response.Success(c, payout)
}

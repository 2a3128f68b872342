package public

import (
	"strings"

	handlershared "github.com/hostdesk/internal/http/handlers/shared"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateServerOrderRequest 服务器下单请求
type CreateServerOrderRequest struct {
	PlanID       uint   `json:"plan_id" binding:"required"`
	BillingCycle string `json:"billing_cycle" binding:"required"`
	Hostname     string `json:"hostname" binding:"required"`
	Region       string `json:"region"`
	OSImage      string `json:"os_image"`
}

// CreateServerOrder 创建服务器购买订单
func (h *Handler) CreateServerOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateServerOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.CreateServerOrder(userID, service.CreateServerOrderInput{
		PlanID:       req.PlanID,
		BillingCycle: req.BillingCycle,
		Hostname:     req.Hostname,
		Region:       req.Region,
		OSImage:      req.OSImage,
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.order_create_failed")
		return
	}
	response.Success(c, order)
}

// ListOrders 我的订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	orders, total, err := h.OrderService.ListForUser(
		userID,
		strings.TrimSpace(c.Query("order_type")),
		strings.TrimSpace(c.Query("status")),
		page,
		pageSize,
	)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrder 我的订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", nil)
		return
	}
	order, err := h.OrderService.GetForUser(userID, orderID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消待支付订单
func (h *Handler) CancelOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", nil)
		return
	}
	order, err := h.OrderService.CancelForUser(userID, orderID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.order_cancel_failed")
		return
	}
	response.Success(c, order)
}

// ListInvoices 我的发票列表
func (h *Handler) ListInvoices(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	invoices, total, err := h.InvoiceService.ListForUser(userID, strings.TrimSpace(c.Query("status")), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.invoice_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, invoices, handlershared.BuildPagination(page, pageSize, total))
}

// GetInvoice 我的发票详情
func (h *Handler) GetInvoice(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	invoiceID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invoice_id_invalid", nil)
		return
	}
	invoice, err := h.InvoiceService.GetForUser(userID, invoiceID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.invoice_fetch_failed")
		return
	}
	response.Success(c, invoice)
}

// ListServers 我的服务器列表
func (h *Handler) ListServers(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	servers, total, err := h.ServerService.ListForUser(userID, strings.TrimSpace(c.Query("status")), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.server_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, servers, handlershared.BuildPagination(page, pageSize, total))
}

// GetServer 我的服务器详情
func (h *Handler) GetServer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	serverID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.server_id_invalid", nil)
		return
	}
	server, err := h.ServerService.GetForUser(userID, serverID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.server_fetch_failed")
		return
	}
	response.Success(c, server)
}

package admin

import (
	"strings"

	"github.com/hostdesk/internal/constants"
	handlershared "github.com/hostdesk/internal/http/handlers/shared"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateServerRequest 后台更新服务器请求
type UpdateServerRequest struct {
	Status    *string `json:"status"`
	IPAddress *string `json:"ip_address"`
	Hostname  *string `json:"hostname"`
}

// ListServers 后台服务器列表
func (h *Handler) ListServers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	servers, total, err := h.ServerService.ListAdmin(repository.ServerListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   handlershared.ParseUintQuery(c, "user_id"),
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.server_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, servers, handlershared.BuildPagination(page, pageSize, total))
}

// GetServer 后台服务器详情
func (h *Handler) GetServer(c *gin.Context) {
	serverID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.server_id_invalid", nil)
		return
	}
	server, err := h.ServerService.GetForAdmin(serverID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.server_fetch_failed")
		return
	}
	response.Success(c, server)
}

// UpdateServer 后台更新服务器状态/网络信息
func (h *Handler) UpdateServer(c *gin.Context) {
	serverID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.server_id_invalid", nil)
		return
	}
	var req UpdateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	server, err := h.ServerService.AdminUpdate(serverID, service.AdminUpdateServerInput{
		Status:    req.Status,
		IPAddress: req.IPAddress,
		Hostname:  req.Hostname,
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.server_update_failed")
		return
	}
	h.recordAudit(c, constants.AuditActionServerUpdated, constants.AuditTargetServer, serverID, models.JSON{
		"status":     server.Status,
		"ip_address": server.IPAddress,
		"hostname":   server.Hostname,
	})
	response.Success(c, server)
}

// ListOrders 后台订单列表
func (h *Handler) ListOrders(c *gin.Context) {
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
	orders, total, err := h.OrderService.ListAdmin(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      handlershared.ParseUintQuery(c, "user_id"),
		OrderType:   strings.TrimSpace(c.Query("order_type")),
		Status:      strings.TrimSpace(c.Query("status")),
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrder 后台订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", nil)
		return
	}
	order, err := h.OrderService.GetForAdmin(orderID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// CancelOrder 后台取消待支付订单
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", nil)
		return
	}
	order, err := h.OrderService.CancelForAdmin(orderID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.order_cancel_failed")
		return
	}
	operatorID, _ := handlershared.GetUserID(c)
	requestLog(c).Infow("admin_order_cancelled", "operator_id", operatorID, "order_id", orderID)
	h.recordAudit(c, constants.AuditActionOrderCancelled, constants.AuditTargetOrder, orderID, models.JSON{"order_no": order.OrderNo})
	response.Success(c, order)
}

// ListInvoices 后台发票列表
func (h *Handler) ListInvoices(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	invoices, total, err := h.InvoiceService.ListAdmin(repository.InvoiceListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   handlershared.ParseUintQuery(c, "user_id"),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.invoice_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, invoices, handlershared.BuildPagination(page, pageSize, total))
}

// GetInvoice 后台发票详情
func (h *Handler) GetInvoice(c *gin.Context) {
	invoiceID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invoice_id_invalid", nil)
		return
	}
	invoice, err := h.InvoiceService.GetForAdmin(invoiceID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.invoice_fetch_failed")
		return
	}
	response.Success(c, invoice)
}

// ListPayments 后台支付流水列表
func (h *Handler) ListPayments(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	payments, total, err := h.PaymentService.ListAdmin(repository.PaymentListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   handlershared.ParseUintQuery(c, "user_id"),
		OrderID:  handlershared.ParseUintQuery(c, "order_id"),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.payment_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, payments, handlershared.BuildPagination(page, pageSize, total))
}

// GetPayment 后台支付流水详情
func (h *Handler) GetPayment(c *gin.Context) {
	paymentID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.payment_id_invalid", nil)
		return
	}
	payment, err := h.PaymentService.GetForAdmin(paymentID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.payment_fetch_failed")
		return
	}
	response.Success(c, payment)
}

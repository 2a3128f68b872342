package public

import (
	"strings"

	handlershared "github.com/hostdesk/internal/http/handlers/shared"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// OpenTicketRequest 创建工单请求
type OpenTicketRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Body     string `json:"body" binding:"required"`
}

// TicketReplyRequest 工单回复请求
type TicketReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

func supportActor(c *gin.Context) (service.SupportActor, bool) {
	userID, ok := getUserID(c)
	if !ok {
		return service.SupportActor{}, false
	}
	return service.SupportActor{UserID: userID, Role: handlershared.GetUserRole(c)}, true
}

// OpenTicket 创建工单
func (h *Handler) OpenTicket(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req OpenTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	ticket, err := h.SupportService.OpenTicket(userID, service.OpenTicketInput{
		Subject:  req.Subject,
		Category: req.Category,
		Priority: req.Priority,
		Body:     req.Body,
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.ticket_create_failed")
		return
	}
	response.Success(c, ticket)
}

// ListMyTickets 我的工单列表
func (h *Handler) ListMyTickets(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	tickets, total, err := h.SupportService.ListForUser(userID, strings.TrimSpace(c.Query("status")), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.ticket_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, tickets, handlershared.BuildPagination(page, pageSize, total))
}

// GetMyTicket 工单详情（不含内部备注）
func (h *Handler) GetMyTicket(c *gin.Context) {
	actor, ok := supportActor(c)
	if !ok {
		return
	}
	ticketID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.ticket_id_invalid", nil)
		return
	}
	ticket, err := h.SupportService.GetTicket(actor, ticketID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.ticket_fetch_failed")
		return
	}
	response.Success(c, ticket)
}

// ReplyMyTicket 客户回复工单
func (h *Handler) ReplyMyTicket(c *gin.Context) {
	actor, ok := supportActor(c)
	if !ok {
		return
	}
	ticketID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.ticket_id_invalid", nil)
		return
	}
	var req TicketReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	message, err := h.SupportService.Reply(actor, ticketID, req.Body, false)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.ticket_reply_failed")
		return
	}
	response.Success(c, message)
}

// CloseMyTicket 客户关闭工单
func (h *Handler) CloseMyTicket(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	ticketID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.ticket_id_invalid", nil)
		return
	}
	ticket, err := h.SupportService.CloseForUser(userID, ticketID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.ticket_update_failed")
		return
	}
	response.Success(c, ticket)
}

// UploadMyTicketAttachment 上传工单附件（multipart 字段 file）
func (h *Handler) UploadMyTicketAttachment(c *gin.Context) {
	actor, ok := supportActor(c)
	if !ok {
		return
	}
	ticketID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.ticket_id_invalid", nil)
		return
	}
	uploadTicketAttachment(c, h.SupportService, actor, ticketID, h.Config.Upload.MaxSize)
}

// DownloadMyAttachment 下载工单附件
func (h *Handler) DownloadMyAttachment(c *gin.Context) {
	actor, ok := supportActor(c)
	if !ok {
		return
	}
	attachmentID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.attachment_id_invalid", nil)
		return
	}
	attachment, data, err := h.SupportService.DownloadAttachment(actor, attachmentID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.attachment_fetch_failed")
		return
	}
	handlershared.WriteAttachment(c, attachment, data)
}

func uploadTicketAttachment(c *gin.Context, svc *service.SupportService, actor service.SupportActor, ticketID uint, maxSize int64) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.attachment_empty", err)
		return
	}
	if maxSize > 0 && file.Size > maxSize {
		respondError(c, response.CodeBadRequest, "error.attachment_too_large", nil)
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.attachment_empty", err)
		return
	}
	defer src.Close()

	attachment, err := svc.AddAttachment(actor, ticketID, service.AddAttachmentInput{
		Filename:  file.Filename,
		Content:   src,
		MessageID: handlershared.ParseUintForm(c, "message_id"),
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.attachment_upload_failed")
		return
	}
	response.Success(c, attachment)
}

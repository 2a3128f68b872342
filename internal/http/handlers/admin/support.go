package admin

import (
	"strings"

	handlershared "github.com/hostdesk/internal/http/handlers/shared"
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/repository"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateTicketRequest 后台更新工单状态/优先级
type UpdateTicketRequest struct {
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
}

// StaffReplyRequest 员工回复请求
type StaffReplyRequest struct {
	Body     string `json:"body" binding:"required"`
	Internal bool   `json:"internal"`
}

// AssignTicketRequest 指派工单请求
type AssignTicketRequest struct {
	AssigneeID uint `json:"assignee_id"`
}

// ListTickets 后台工单列表
func (h *Handler) ListTickets(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	tickets, total, err := h.SupportService.ListAdmin(repository.TicketListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     handlershared.ParseUintQuery(c, "user_id"),
		AssigneeID: handlershared.ParseUintQuery(c, "assignee_id"),
		Status:     strings.TrimSpace(c.Query("status")),
		Priority:   strings.TrimSpace(c.Query("priority")),
		Keyword:    strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.ticket_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, tickets, handlershared.BuildPagination(page, pageSize, total))
}

// GetTicket 后台工单详情（含内部备注）
func (h *Handler) GetTicket(c *gin.Context) {
	actor, ok := currentActor(c)
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

// UpdateTicket 后台修改工单状态或优先级
func (h *Handler) UpdateTicket(c *gin.Context) {
	ticketID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.ticket_id_invalid", nil)
		return
	}
	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Status == nil && req.Priority == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if req.Priority != nil {
		if _, err := h.SupportService.UpdatePriority(ticketID, *req.Priority); err != nil {
			respondServiceError(c, err, response.CodeInternal, "error.ticket_update_failed")
			return
		}
	}
	if req.Status != nil {
		if _, err := h.SupportService.UpdateStatus(ticketID, *req.Status); err != nil {
			respondServiceError(c, err, response.CodeInternal, "error.ticket_update_failed")
			return
		}
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ticket, err := h.SupportService.GetTicket(actor, ticketID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.ticket_fetch_failed")
		return
	}
	response.Success(c, ticket)
}

// ReplyTicket 员工回复或添加内部备注
func (h *Handler) ReplyTicket(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ticketID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.ticket_id_invalid", nil)
		return
	}
	var req StaffReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	message, err := h.SupportService.Reply(actor, ticketID, req.Body, req.Internal)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.ticket_reply_failed")
		return
	}
	response.Success(c, message)
}

// AssignTicket 指派工单（assignee_id 为 0 表示取消指派）
func (h *Handler) AssignTicket(c *gin.Context) {
	ticketID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.ticket_id_invalid", nil)
		return
	}
	var req AssignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	ticket, err := h.SupportService.Assign(ticketID, req.AssigneeID)
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.ticket_update_failed")
		return
	}
	response.Success(c, ticket)
}

// UploadTicketAttachment 员工上传工单附件
func (h *Handler) UploadTicketAttachment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ticketID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.ticket_id_invalid", nil)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.attachment_empty", err)
		return
	}
	if maxSize := h.Config.Upload.MaxSize; maxSize > 0 && file.Size > maxSize {
		respondError(c, response.CodeBadRequest, "error.attachment_too_large", nil)
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.attachment_empty", err)
		return
	}
	defer src.Close()

	attachment, err := h.SupportService.AddAttachment(actor, ticketID, service.AddAttachmentInput{
		Filename:  file.Filename,
		Content:   src,
		MessageID: handlershared.ParseUintForm(c, "message_id"),
		Internal:  parseBoolFlag(c.PostForm("internal")),
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.attachment_upload_failed")
		return
	}
	response.Success(c, attachment)
}

// DownloadAttachment 员工下载附件
func (h *Handler) DownloadAttachment(c *gin.Context) {
	actor, ok := currentActor(c)
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

package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/queue"
	"github.com/hostdesk/internal/repository"

	"gorm.io/gorm"
)

const (
	ticketSubjectMaxLength = 255
	ticketBodyMaxLength    = 20000
	ticketCategoryDefault  = "general"
)

var ticketCategories = map[string]struct{}{
	"general":   {},
	"billing":   {},
	"technical": {},
	"affiliate": {},
	"abuse":     {},
}

// SupportActor 工单操作人
type SupportActor struct {
	UserID uint
	Role   string
}

// IsStaff 是否客服/管理员
func (a SupportActor) IsStaff() bool {
	return a.Role == constants.UserRoleAdmin || a.Role == constants.UserRoleSupport
}

// OpenTicketInput 新建工单输入
type OpenTicketInput struct {
	Subject  string
	Category string
	Priority string
	Body     string
}

// AddAttachmentInput 上传附件输入
type AddAttachmentInput struct {
	Filename  string
	Content   io.Reader
	MessageID uint // 关联消息，0 表示直接挂在工单上
	Internal  bool // 仅员工可见；关联内部备注时强制为 true
}

// SupportService 工单服务
type SupportService struct {
	repo          repository.SupportRepository
	userRepo      repository.UserRepository
	uploadService *UploadService
	queueClient   *queue.Client
}

// NewSupportService 创建工单服务
func NewSupportService(repo repository.SupportRepository, userRepo repository.UserRepository, uploadService *UploadService, queueClient *queue.Client) *SupportService {
	return &SupportService{
		repo:          repo,
		userRepo:      userRepo,
		uploadService: uploadService,
		queueClient:   queueClient,
	}
}

// OpenTicket 客户新建工单（含首条消息）
func (s *SupportService) OpenTicket(userID uint, input OpenTicketInput) (*models.SupportTicket, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, ErrTicketSubjectRequired
	}
	if len(subject) > ticketSubjectMaxLength {
		return nil, fmt.Errorf("%w: subject too long", ErrInvalidInput)
	}
	body, err := normalizeTicketBody(input.Body)
	if err != nil {
		return nil, err
	}
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		category = ticketCategoryDefault
	}
	if _, ok := ticketCategories[category]; !ok {
		return nil, fmt.Errorf("%w: category", ErrInvalidInput)
	}
	priority := strings.ToLower(strings.TrimSpace(input.Priority))
	if priority == "" {
		priority = constants.TicketPriorityNormal
	}
	if !isValidTicketPriority(priority) {
		return nil, ErrTicketPriorityInvalid
	}

	now := time.Now()
	ticket := &models.SupportTicket{
		TicketNo:    generateTicketNo(),
		UserID:      userID,
		Subject:     subject,
		Category:    category,
		Priority:    priority,
		Status:      constants.TicketStatusOpen,
		LastReplyAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		if err := repoTx.CreateTicket(ticket); err != nil {
			return err
		}
		message := models.TicketMessage{
			TicketID:   ticket.ID,
			AuthorID:   userID,
			AuthorRole: constants.UserRoleCustomer,
			Body:       body,
			CreatedAt:  now,
		}
		if err := repoTx.CreateMessage(&message); err != nil {
			return err
		}
		ticket.Messages = []models.TicketMessage{message}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("ticket_opened", "ticket_id", ticket.ID, "ticket_no", ticket.TicketNo, "user_id", userID, "priority", priority)
	return ticket, nil
}

// ListForUser 客户工单列表
func (s *SupportService) ListForUser(userID uint, status string, page, pageSize int) ([]models.SupportTicket, int64, error) {
	if userID == 0 {
		return []models.SupportTicket{}, 0, nil
	}
	return s.repo.ListTickets(repository.TicketListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   strings.TrimSpace(status),
	})
}

// ListAdmin 客服工单列表
func (s *SupportService) ListAdmin(filter repository.TicketListFilter) ([]models.SupportTicket, int64, error) {
	filter.Status = strings.TrimSpace(filter.Status)
	filter.Priority = strings.TrimSpace(filter.Priority)
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return s.repo.ListTickets(filter)
}

// GetTicket 工单详情；客户只能看自己的工单且看不到内部备注
func (s *SupportService) GetTicket(actor SupportActor, ticketID uint) (*models.SupportTicket, error) {
	ticket, err := s.repo.GetTicketWithMessages(ticketID, actor.IsStaff())
	if err != nil {
		return nil, err
	}
	if ticket == nil || (!actor.IsStaff() && ticket.UserID != actor.UserID) {
		return nil, ErrNotFound
	}
	if !actor.IsStaff() {
		ticket.Attachments = visibleAttachments(ticket)
	}
	return ticket, nil
}

// Reply 回复工单并按角色推进状态
func (s *SupportService) Reply(actor SupportActor, ticketID uint, rawBody string, internal bool) (*models.TicketMessage, error) {
	body, err := normalizeTicketBody(rawBody)
	if err != nil {
		return nil, err
	}
	if internal && !actor.IsStaff() {
		return nil, ErrForbidden
	}
	ticket, err := s.loadForActor(actor, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == constants.TicketStatusClosed {
		return nil, ErrTicketClosed
	}

	now := time.Now()
	nextStatus := nextTicketStatusOnReply(ticket.Status, actor.IsStaff(), internal)
	authorRole := constants.UserRoleCustomer
	if actor.IsStaff() {
		authorRole = actor.Role
	}
	message := &models.TicketMessage{
		TicketID:   ticket.ID,
		AuthorID:   actor.UserID,
		AuthorRole: authorRole,
		Body:       body,
		Internal:   internal,
		CreatedAt:  now,
	}
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		if err := repoTx.CreateMessage(message); err != nil {
			return err
		}
		updates := map[string]interface{}{"updated_at": now}
		if !internal {
			updates["last_reply_at"] = now
		}
		if nextStatus != ticket.Status {
			updates["status"] = nextStatus
		}
		return repoTx.UpdateTicketFields(ticket.ID, updates)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("ticket_replied",
		"ticket_id", ticket.ID,
		"author_id", actor.UserID,
		"author_role", authorRole,
		"internal", internal,
		"status", nextStatus,
	)
	if actor.IsStaff() && !internal && s.queueClient != nil {
		payload := queue.NotificationEmailPayload{
			Event:  constants.NotifyEventTicketReplied,
			UserID: ticket.UserID,
			RefID:  ticket.ID,
			Status: nextStatus,
		}
		if err := s.queueClient.EnqueueNotificationEmail(payload); err != nil {
			logger.Warnw("ticket_notification_enqueue_failed", "ticket_id", ticket.ID, "error", err)
		}
	}
	return message, nil
}

// CloseForUser 客户关闭自己的工单
func (s *SupportService) CloseForUser(userID, ticketID uint) (*models.SupportTicket, error) {
	actor := SupportActor{UserID: userID, Role: constants.UserRoleCustomer}
	if _, err := s.loadForActor(actor, ticketID); err != nil {
		return nil, err
	}
	return s.UpdateStatus(ticketID, constants.TicketStatusClosed)
}

// UpdateStatus 客服修改工单状态
func (s *SupportService) UpdateStatus(ticketID uint, status string) (*models.SupportTicket, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !isValidTicketStatus(status) {
		return nil, ErrTicketStatusInvalid
	}
	ticket, err := s.repo.GetTicketByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrNotFound
	}
	if ticket.Status == status {
		return ticket, nil
	}
	now := time.Now()
	updates := map[string]interface{}{"status": status, "updated_at": now}
	if status == constants.TicketStatusClosed {
		updates["closed_at"] = now
		ticket.ClosedAt = &now
	} else if ticket.ClosedAt != nil {
		updates["closed_at"] = nil
		ticket.ClosedAt = nil
	}
	if err := s.repo.UpdateTicketFields(ticket.ID, updates); err != nil {
		return nil, err
	}
	logger.Infow("ticket_status_changed", "ticket_id", ticket.ID, "from", ticket.Status, "to", status)
	ticket.Status = status
	ticket.UpdatedAt = now
	return ticket, nil
}

// UpdatePriority 客服修改优先级
func (s *SupportService) UpdatePriority(ticketID uint, priority string) (*models.SupportTicket, error) {
	priority = strings.ToLower(strings.TrimSpace(priority))
	if !isValidTicketPriority(priority) {
		return nil, ErrTicketPriorityInvalid
	}
	ticket, err := s.repo.GetTicketByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrNotFound
	}
	now := time.Now()
	if err := s.repo.UpdateTicketFields(ticket.ID, map[string]interface{}{"priority": priority, "updated_at": now}); err != nil {
		return nil, err
	}
	ticket.Priority = priority
	ticket.UpdatedAt = now
	return ticket, nil
}

// Assign 指派处理人（须为客服或管理员），assigneeID 为 0 表示取消指派
func (s *SupportService) Assign(ticketID, assigneeID uint) (*models.SupportTicket, error) {
	ticket, err := s.repo.GetTicketByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrNotFound
	}
	var assignee *uint
	if assigneeID != 0 {
		user, err := s.userRepo.GetByID(assigneeID)
		if err != nil {
			return nil, err
		}
		if user == nil || !user.IsStaff() || user.Status != constants.UserStatusActive {
			return nil, ErrTicketAssigneeInvalid
		}
		assignee = &assigneeID
	}
	now := time.Now()
	if err := s.repo.UpdateTicketFields(ticket.ID, map[string]interface{}{"assignee_id": assignee, "updated_at": now}); err != nil {
		return nil, err
	}
	ticket.AssigneeID = assignee
	ticket.UpdatedAt = now
	logger.Infow("ticket_assigned", "ticket_id", ticket.ID, "assignee_id", assigneeID)
	return ticket, nil
}

// AddAttachment 上传附件到工单
func (s *SupportService) AddAttachment(actor SupportActor, ticketID uint, input AddAttachmentInput) (*models.TicketAttachment, error) {
	if input.Internal && !actor.IsStaff() {
		return nil, ErrForbidden
	}
	ticket, err := s.loadForActor(actor, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == constants.TicketStatusClosed {
		return nil, ErrTicketClosed
	}
	internal := input.Internal
	var messageID *uint
	if input.MessageID != 0 {
		message, err := s.repo.GetMessageByID(input.MessageID)
		if err != nil {
			return nil, err
		}
		if message == nil || message.TicketID != ticket.ID || (message.Internal && !actor.IsStaff()) {
			return nil, ErrNotFound
		}
		internal = internal || message.Internal
		messageID = &message.ID
	}
	stored, err := s.uploadService.SaveAttachment(input.Filename, input.Content)
	if err != nil {
		return nil, err
	}
	attachment := &models.TicketAttachment{
		TicketID:     ticket.ID,
		MessageID:    messageID,
		Internal:     internal,
		UploaderID:   actor.UserID,
		OriginalName: stored.OriginalName,
		ContentType:  stored.ContentType,
		Size:         stored.Size,
		StorageKey:   stored.StorageKey,
		Checksum:     stored.Checksum,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateAttachment(attachment); err != nil {
		if rmErr := s.uploadService.RemoveAttachment(stored.StorageKey); rmErr != nil {
			logger.Warnw("ticket_attachment_cleanup_failed", "storage_key", stored.StorageKey, "error", rmErr)
		}
		return nil, err
	}
	logger.Infow("ticket_attachment_uploaded",
		"ticket_id", ticket.ID,
		"attachment_id", attachment.ID,
		"uploader_id", actor.UserID,
		"internal", internal,
		"content_type", attachment.ContentType,
		"size", attachment.Size,
	)
	return attachment, nil
}

// DownloadAttachment 下载附件（解密并校验）
func (s *SupportService) DownloadAttachment(actor SupportActor, attachmentID uint) (*models.TicketAttachment, []byte, error) {
	attachment, err := s.repo.GetAttachmentByID(attachmentID)
	if err != nil {
		return nil, nil, err
	}
	if attachment == nil {
		return nil, nil, ErrNotFound
	}
	if attachment.Internal && !actor.IsStaff() {
		return nil, nil, ErrNotFound
	}
	if _, err := s.loadForActor(actor, attachment.TicketID); err != nil {
		return nil, nil, err
	}
	data, err := s.uploadService.ReadAttachment(attachment.StorageKey, attachment.Checksum)
	if err != nil {
		logger.Warnw("ticket_attachment_read_failed", "attachment_id", attachment.ID, "error", err)
		return nil, nil, err
	}
	return attachment, data, nil
}

func (s *SupportService) loadForActor(actor SupportActor, ticketID uint) (*models.SupportTicket, error) {
	ticket, err := s.repo.GetTicketByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || (!actor.IsStaff() && ticket.UserID != actor.UserID) {
		return nil, ErrNotFound
	}
	return ticket, nil
}

// nextTicketStatusOnReply 客户回复重新打开已解决/待客户工单；客服公开回复使工单进入待客户
func nextTicketStatusOnReply(current string, staff, internal bool) string {
	if internal {
		return current
	}
	if staff {
		if current == constants.TicketStatusOpen || current == constants.TicketStatusInProgress {
			return constants.TicketStatusAwaitingCustomer
		}
		return current
	}
	if current == constants.TicketStatusResolved || current == constants.TicketStatusAwaitingCustomer {
		return constants.TicketStatusOpen
	}
	return current
}

// visibleAttachments 过滤内部附件及挂在内部备注上的附件
func visibleAttachments(ticket *models.SupportTicket) []models.TicketAttachment {
	visible := make(map[uint]struct{}, len(ticket.Messages))
	for _, msg := range ticket.Messages {
		if !msg.Internal {
			visible[msg.ID] = struct{}{}
		}
	}
	result := make([]models.TicketAttachment, 0, len(ticket.Attachments))
	for _, att := range ticket.Attachments {
		if att.Internal {
			continue
		}
		if att.MessageID != nil {
			if _, ok := visible[*att.MessageID]; !ok {
				continue
			}
		}
		result = append(result, att)
	}
	return result
}

func normalizeTicketBody(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return "", ErrTicketMessageRequired
	}
	if len(body) > ticketBodyMaxLength {
		return "", fmt.Errorf("%w: message too long", ErrInvalidInput)
	}
	return body, nil
}

func isValidTicketStatus(status string) bool {
	switch status {
	case constants.TicketStatusOpen,
		constants.TicketStatusInProgress,
		constants.TicketStatusAwaitingCustomer,
		constants.TicketStatusResolved,
		constants.TicketStatusClosed:
		return true
	default:
		return false
	}
}

func isValidTicketPriority(priority string) bool {
	switch priority {
	case constants.TicketPriorityLow,
		constants.TicketPriorityNormal,
		constants.TicketPriorityHigh,
		constants.TicketPriorityUrgent:
		return true
	default:
		return false
	}
}

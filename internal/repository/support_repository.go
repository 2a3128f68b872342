package repository

import (
	"strings"

	"github.com/hostdesk/internal/models"

	"gorm.io/gorm"
)

// SupportRepository 工单数据访问接口
type SupportRepository interface {
	WithTx(tx *gorm.DB) SupportRepository
	Transaction(fn func(tx *gorm.DB) error) error
	GetTicketByID(id uint) (*models.SupportTicket, error)
	GetTicketWithMessages(id uint, includeInternal bool) (*models.SupportTicket, error)
	CreateTicket(ticket *models.SupportTicket) error
	UpdateTicketFields(id uint, updates map[string]interface{}) error
	ListTickets(filter TicketListFilter) ([]models.SupportTicket, int64, error)
	CreateMessage(message *models.TicketMessage) error
	GetMessageByID(id uint) (*models.TicketMessage, error)
	CreateAttachment(attachment *models.TicketAttachment) error
	GetAttachmentByID(id uint) (*models.TicketAttachment, error)
}

// GormSupportRepository GORM 实现
type GormSupportRepository struct {
	db *gorm.DB
}

// NewSupportRepository 创建工单仓库
func NewSupportRepository(db *gorm.DB) *GormSupportRepository {
	return &GormSupportRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSupportRepository) WithTx(tx *gorm.DB) SupportRepository {
	if tx == nil {
		return r
	}
	return &GormSupportRepository{db: tx}
}

// Transaction 执行事务
func (r *GormSupportRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetTicketByID 获取工单（不含消息）
func (r *GormSupportRepository) GetTicketByID(id uint) (*models.SupportTicket, error) {
	if id == 0 {
		return nil, nil
	}
	var ticket models.SupportTicket
	found, err := firstOrNil(r.db.Where("id = ?", id), &ticket)
	if err != nil || !found {
		return nil, err
	}
	return &ticket, nil
}

// GetTicketWithMessages 获取工单及消息、附件；客户视角过滤内部备注
func (r *GormSupportRepository) GetTicketWithMessages(id uint, includeInternal bool) (*models.SupportTicket, error) {
	if id == 0 {
		return nil, nil
	}
	scope := func(db *gorm.DB) *gorm.DB {
		if !includeInternal {
			db = db.Where("internal = ?", false)
		}
		return db.Order("id ASC")
	}
	query := r.db.Preload("Attachments", scope).Preload("Messages", scope)
	var ticket models.SupportTicket
	found, err := firstOrNil(query.Where("id = ?", id), &ticket)
	if err != nil || !found {
		return nil, err
	}
	return &ticket, nil
}

// CreateTicket 创建工单
func (r *GormSupportRepository) CreateTicket(ticket *models.SupportTicket) error {
	return r.db.Omit("Messages", "Attachments").Create(ticket).Error
}

// UpdateTicketFields 按字段更新工单
func (r *GormSupportRepository) UpdateTicketFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.SupportTicket{}).Where("id = ?", id).Updates(updates).Error
}

// ListTickets 工单列表
func (r *GormSupportRepository) ListTickets(filter TicketListFilter) ([]models.SupportTicket, int64, error) {
	query := r.db.Model(&models.SupportTicket{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.AssigneeID != 0 {
		query = query.Where("assignee_id = ?", filter.AssigneeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		query = query.Where(buildLikeCondition(r.db, "subject", "ticket_no"), repeatArgs(likePattern(keyword), 2)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var tickets []models.SupportTicket
	if err := query.Order("updated_at DESC, id DESC").Find(&tickets).Error; err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// CreateMessage 写入工单消息
func (r *GormSupportRepository) CreateMessage(message *models.TicketMessage) error {
	return r.db.Create(message).Error
}

// GetMessageByID 获取工单消息
func (r *GormSupportRepository) GetMessageByID(id uint) (*models.TicketMessage, error) {
	if id == 0 {
		return nil, nil
	}
	var message models.TicketMessage
	found, err := firstOrNil(r.db.Where("id = ?", id), &message)
	if err != nil || !found {
		return nil, err
	}
	return &message, nil
}

// CreateAttachment 写入附件元数据
func (r *GormSupportRepository) CreateAttachment(attachment *models.TicketAttachment) error {
	return r.db.Create(attachment).Error
}

// GetAttachmentByID 获取附件元数据
func (r *GormSupportRepository) GetAttachmentByID(id uint) (*models.TicketAttachment, error) {
	if id == 0 {
		return nil, nil
	}
	var attachment models.TicketAttachment
	found, err := firstOrNil(r.db.Where("id = ?", id), &attachment)
	if err != nil || !found {
		return nil, err
	}
	return &attachment, nil
}

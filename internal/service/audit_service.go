package service

import (
	"strings"
	"time"

	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"
)

// StaffAuditRecordInput 员工审计记录输入
type StaffAuditRecordInput struct {
	OperatorID uint
	Action     string
	TargetType string
	TargetID   uint
	RequestID  string
	Detail     models.JSON
}

// StaffAuditService 员工操作审计服务
type StaffAuditService struct {
	repo repository.StaffAuditLogRepository
}

// NewStaffAuditService 创建员工审计服务
func NewStaffAuditService(repo repository.StaffAuditLogRepository) *StaffAuditService {
	return &StaffAuditService{repo: repo}
}

// Record 记录员工操作；缺少操作人或动作时忽略
func (s *StaffAuditService) Record(input StaffAuditRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if input.OperatorID == 0 {
		return nil
	}
	action := strings.TrimSpace(input.Action)
	if action == "" {
		return nil
	}

	return s.repo.Create(&models.StaffAuditLog{
		OperatorID: input.OperatorID,
		Action:     action,
		TargetType: strings.TrimSpace(input.TargetType),
		TargetID:   input.TargetID,
		RequestID:  strings.TrimSpace(input.RequestID),
		DetailJSON: input.Detail,
		CreatedAt:  time.Now(),
	})
}

// ListForAdmin 后台查询审计日志
func (s *StaffAuditService) ListForAdmin(filter repository.StaffAuditLogListFilter) ([]models.StaffAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.StaffAuditLog{}, 0, nil
	}
	filter.Action = strings.TrimSpace(filter.Action)
	filter.TargetType = strings.TrimSpace(filter.TargetType)
	return s.repo.ListAdmin(filter)
}
